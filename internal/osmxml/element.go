// Package osmxml reads and writes OpenStreetMap XML extracts.
//
// Two access paths are provided. Scanner streams node and way records one
// subtree at a time, so memory stays proportional to the largest record.
// ReadTree and WriteTree load and serialise the whole document and cost
// memory proportional to the file size; only fix mode uses them.
package osmxml

import "sort"

// Element and attribute names used by OSM extracts.
const (
	KindNode     = "node"
	KindWay      = "way"
	KindTag      = "tag"
	KindRelation = "relation"

	AttrID    = "id"
	AttrKey   = "k"
	AttrValue = "v"
)

// Attr is a single element attribute.
type Attr struct {
	Key   string
	Value string
}

// Element is one node of the source tree. Attribute order is kept for
// serialisation only; lookups treat the attributes as a set.
type Element struct {
	Name  string
	Attrs []Attr
	// Text is the character data before the first child. HasText reports
	// whether any was present, which distinguishes <a></a> from <a>\n</a>.
	Text     string
	HasText  bool
	Tail     string
	Children []*Element
}

// Kind returns the element name (node, way, tag, ...).
func (e *Element) Kind() string {
	return e.Name
}

// Attr returns the value of the named attribute.
func (e *Element) Attr(key string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// Get returns the named attribute or "" when absent.
func (e *Element) Get(key string) string {
	v, _ := e.Attr(key)
	return v
}

// SetAttr replaces the named attribute or appends it.
func (e *Element) SetAttr(key, value string) {
	for i := range e.Attrs {
		if e.Attrs[i].Key == key {
			e.Attrs[i].Value = value
			return
		}
	}
	e.Attrs = append(e.Attrs, Attr{Key: key, Value: value})
}

// AttrKeys returns the attribute names in sorted order.
func (e *Element) AttrKeys() []string {
	keys := make([]string, 0, len(e.Attrs))
	for _, a := range e.Attrs {
		keys = append(keys, a.Key)
	}
	sort.Strings(keys)
	return keys
}

// ID returns the id attribute.
func (e *Element) ID() string {
	return e.Get(AttrID)
}

// Descendants returns every descendant element with the given name in
// document order. Nested matches are included, not just direct children.
func (e *Element) Descendants(name string) []*Element {
	var out []*Element
	var walk func(*Element)
	walk = func(el *Element) {
		for _, c := range el.Children {
			if c.Name == name {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(e)
	return out
}

// Clear removes the attributes, text and children of e. The element itself
// and its tail stay in place, so it serialises as an empty tag.
func (e *Element) Clear() {
	e.Attrs = nil
	e.Text = ""
	e.HasText = false
	e.Children = nil
}

// appendText attaches character data to the element text or, once a child
// exists, to the tail of the last child.
func (e *Element) appendText(s string) {
	if len(e.Children) == 0 {
		e.Text += s
		e.HasText = true
		return
	}
	last := e.Children[len(e.Children)-1]
	last.Tail += s
}
