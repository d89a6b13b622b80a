// Package document converts OSM records into nested documents and writes
// them as newline-delimited JSON.
package document

import "github.com/sells-group/osm-audit/internal/osmxml"

// Reserved document keys.
const (
	KeyTagType = "xml_tag_type"
	KeyText    = "text"
	// KeyChildPrefix prefixes the group key of children without a k
	// attribute, keeping them apart from tags whose k matches an element name.
	KeyChildPrefix = "xml_"
)

// Document is the associative form of one element and its subtree.
type Document map[string]any

// FromElement converts el and its subtree. Children are grouped by their k
// attribute; a group with one member holds that document directly, larger
// groups hold a []Document in document order. Children without a k
// attribute (way node refs, for example) are grouped under
// KeyChildPrefix plus the element name, so <nd> refs land in "xml_nd".
//
// Keys are applied in order: xml_tag_type, text, attributes, child groups.
// Later keys overwrite earlier ones.
func FromElement(el *osmxml.Element) Document {
	doc := Document{KeyTagType: el.Name}
	if el.HasText {
		doc[KeyText] = el.Text
	}
	for _, a := range el.Attrs {
		doc[a.Key] = a.Value
	}

	if len(el.Children) == 0 {
		return doc
	}

	var order []string
	groups := make(map[string][]Document)
	for _, child := range el.Children {
		key := groupKey(child)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], FromElement(child))
	}

	for _, key := range order {
		members := groups[key]
		if len(members) == 1 {
			doc[key] = members[0]
			continue
		}
		doc[key] = members
	}
	return doc
}

func groupKey(el *osmxml.Element) string {
	if k, ok := el.Attr(osmxml.AttrKey); ok {
		return k
	}
	return KeyChildPrefix + el.Name
}
