package osmxml

import (
	"bufio"
	"encoding/xml"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer(
		"&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;",
		"\n", "&#10;", "\r", "&#13;", "\t", "&#9;",
	)
)

// ReadTree parses the entire document and returns its root element. Memory
// use is proportional to the document size.
func ReadTree(r io.Reader) (*Element, error) {
	dec := newDecoder(r)

	var root *Element
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, newParseError(dec, err)
		}

		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if root != nil {
			return nil, newParseError(dec, eris.Errorf("junk after document element: <%s>", se.Name.Local))
		}
		root, err = buildElement(dec, se)
		if err != nil {
			return nil, newParseError(dec, err)
		}
	}

	if root == nil {
		return nil, newParseError(dec, eris.New("no element found"))
	}
	return root, nil
}

// WriteTree serialises root with a UTF-8 declaration. Attribute order, text
// and tail whitespace are written as stored.
func WriteTree(w io.Writer, root *Element) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(xmlHeader); err != nil {
		return eris.Wrap(err, "osmxml: write header")
	}
	writeElement(bw, root)
	if err := bw.WriteByte('\n'); err != nil {
		return eris.Wrap(err, "osmxml: write tree")
	}
	return eris.Wrap(bw.Flush(), "osmxml: flush tree")
}

// writeElement relies on bufio.Writer keeping the first error; Flush
// reports it.
func writeElement(bw *bufio.Writer, el *Element) {
	bw.WriteString("<")
	bw.WriteString(el.Name)
	for _, a := range el.Attrs {
		bw.WriteString(" ")
		bw.WriteString(a.Key)
		bw.WriteString(`="`)
		attrEscaper.WriteString(bw, a.Value) //nolint:errcheck
		bw.WriteString(`"`)
	}

	if len(el.Children) == 0 && !el.HasText {
		bw.WriteString(" />")
	} else {
		bw.WriteString(">")
		textEscaper.WriteString(bw, el.Text) //nolint:errcheck
		for _, c := range el.Children {
			writeElement(bw, c)
		}
		bw.WriteString("</")
		bw.WriteString(el.Name)
		bw.WriteString(">")
	}

	if el.Tail != "" {
		textEscaper.WriteString(bw, el.Tail) //nolint:errcheck
	}
}
