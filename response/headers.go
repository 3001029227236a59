package response

import "strings"

// Headers is a case-insensitive header multimap. Set-Cookie is the only
// header allowed to accumulate multiple values; every other Set overwrites.
type Headers struct {
	values map[string][]string
	// order preserves first-insertion order so the wire format is stable
	// and deterministic, matching what a reader would expect from a
	// hand-rolled response writer.
	order []string
}

func NewHeaders() *Headers {
	return &Headers{values: map[string][]string{}}
}

func canonicalKey(name string) string {
	parts := strings.Split(name, "-")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + strings.ToLower(p[1:])
	}
	return strings.Join(parts, "-")
}

// Set overwrites any existing value(s) for name, except for Set-Cookie,
// which always accumulates (see Add).
func (h *Headers) Set(name, value string) {
	key := canonicalKey(name)
	if strings.EqualFold(key, "Set-Cookie") {
		h.Add(name, value)
		return
	}
	if _, ok := h.values[key]; !ok {
		h.order = append(h.order, key)
	}
	h.values[key] = []string{value}
}

// Add appends a value for name without clearing existing ones.
func (h *Headers) Add(name, value string) {
	key := canonicalKey(name)
	if _, ok := h.values[key]; !ok {
		h.order = append(h.order, key)
	}
	h.values[key] = append(h.values[key], value)
}

func (h *Headers) Get(name string) (string, bool) {
	vals, ok := h.values[canonicalKey(name)]
	if !ok || len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

func (h *Headers) Del(name string) {
	key := canonicalKey(name)
	if _, ok := h.values[key]; !ok {
		return
	}
	delete(h.values, key)
	for i, k := range h.order {
		if k == key {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
}

// Each calls fn once per (name, value) pair in insertion order, with
// Set-Cookie emitting one call per accumulated value.
func (h *Headers) Each(fn func(name, value string)) {
	for _, key := range h.order {
		for _, v := range h.values[key] {
			fn(key, v)
		}
	}
}
