package response

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeadersCaseInsensitiveSetAndGet(t *testing.T) {
	h := NewHeaders()
	h.Set("content-type", "text/plain")
	v, ok := h.Get("Content-Type")
	assert.True(t, ok)
	assert.Equal(t, "text/plain", v)
}

func TestHeadersSetOverwrites(t *testing.T) {
	h := NewHeaders()
	h.Set("X-Foo", "one")
	h.Set("X-Foo", "two")
	v, ok := h.Get("x-foo")
	assert.True(t, ok)
	assert.Equal(t, "two", v)
}

func TestHeadersSetCookieAccumulates(t *testing.T) {
	h := NewHeaders()
	h.Set("Set-Cookie", "a=1")
	h.Set("Set-Cookie", "b=2")

	var values []string
	h.Each(func(name, value string) {
		if name == "Set-Cookie" {
			values = append(values, value)
		}
	})
	assert.Equal(t, []string{"a=1", "b=2"}, values)
}

func TestHeadersInsertionOrderPreserved(t *testing.T) {
	h := NewHeaders()
	h.Set("B", "2")
	h.Set("A", "1")
	h.Set("C", "3")

	var names []string
	h.Each(func(name, value string) { names = append(names, name) })
	assert.Equal(t, []string{"B", "A", "C"}, names)
}

func TestHeadersDelRemovesFromOrder(t *testing.T) {
	h := NewHeaders()
	h.Set("A", "1")
	h.Set("B", "2")
	h.Del("A")

	_, ok := h.Get("A")
	assert.False(t, ok)

	var names []string
	h.Each(func(name, value string) { names = append(names, name) })
	assert.Equal(t, []string{"B"}, names)
}

func TestHeadersGetMissingReturnsFalse(t *testing.T) {
	h := NewHeaders()
	_, ok := h.Get("Nope")
	assert.False(t, ok)
}
