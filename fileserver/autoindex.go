package fileserver

import (
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/flosch/pongo2/v6"
)

var autoindexTemplate = pongo2.Must(pongo2.FromString(`<html>
<head><title>Index of {{ uri }}</title></head>
<body>
<h1>Index of {{ uri }}</h1>
<ul>
{% for e in entries %}
<li><a href="{{ e.href }}">{{ e.name }}</a>{% if e.allow_delete %} <a href="#" onclick="return del('{{ e.href }}')">[delete]</a>{% endif %}</li>
{% endfor %}
</ul>
{% if allow_delete %}
<script>
function del(href) {
  var xhr = new XMLHttpRequest();
  xhr.open('DELETE', href, true);
  xhr.onload = function() { location.reload(); };
  xhr.send();
  return false;
}
</script>
{% endif %}
</body>
</html>
`))

type listingEntry struct {
	Name        string
	Href        string
	AllowDelete bool
}

// context returns the pongo2.Context view of the entry with explicit
// lowercase keys, avoiding any reliance on pongo2's field-name guessing.
func (e listingEntry) context() pongo2.Context {
	return pongo2.Context{"name": e.Name, "href": e.Href, "allow_delete": e.AllowDelete}
}

type cacheKey struct {
	dir         string
	mtime       int64
	uri         string
	allowDelete bool
}

// listingCache caches rendered autoindex HTML keyed by (directory, mtime,
// request URI, allowDelete) so a hot directory isn't re-walked and
// re-templated on every request.
// Grounded on the teacher's domainproxy/tls_controller.go certsLRU usage.
var listingCache *lru.Cache[cacheKey, []byte]

func init() {
	c, err := lru.New[cacheKey, []byte](256)
	if err != nil {
		panic(err)
	}
	listingCache = c
}

// renderAutoindex builds the directory listing HTML for dir, reachable at
// requestURI, honoring allowDelete (whether the matched location permits
// DELETE, so the generated delete links never point at a method the
// location would reject — see DESIGN.md open question 5).
func renderAutoindex(dir, requestURI string, allowDelete bool) ([]byte, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	key := cacheKey{dir: dir, mtime: info.ModTime().UnixNano(), uri: requestURI, allowDelete: allowDelete}
	if cached, ok := listingCache.Get(key); ok {
		return cached, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	base := strings.TrimSuffix(requestURI, "/")
	listing := make([]listingEntry, 0, len(entries)+1)
	listing = append(listing, listingEntry{Name: "..", Href: path.Dir(base) + "/"})
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		name := e.Name()
		href := base + "/" + name
		if e.IsDir() {
			name += "/"
			href += "/"
		}
		listing = append(listing, listingEntry{
			Name:        name,
			Href:        href,
			AllowDelete: allowDelete && !e.IsDir(),
		})
	}

	// entries are passed as explicit pongo2.Context maps, not bare structs,
	// so the template's snake_case e.allow_delete always resolves.
	rows := make([]pongo2.Context, len(listing))
	for i, e := range listing {
		rows[i] = e.context()
	}

	out, err := autoindexTemplate.Execute(pongo2.Context{
		"uri":          requestURI,
		"entries":      rows,
		"allow_delete": allowDelete,
	})
	if err != nil {
		return nil, fmt.Errorf("render autoindex: %w", err)
	}

	body := []byte(out)
	listingCache.Add(key, body)
	return body, nil
}
