package osmxml

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

// ParseError reports input that is not well-formed XML. It is fatal for the
// run that encountered it.
type ParseError struct {
	Line   int
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("osmxml: parse error at line %d, column %d: %v", e.Line, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Scanner streams node and way records from an OSM extract. Each record is
// returned with its full subtree; relation subtrees are skipped. A Scanner
// is single-pass.
type Scanner struct {
	dec     *xml.Decoder
	cur     *Element
	err     error
	done    bool
	sawRoot bool
}

// NewScanner returns a Scanner reading from r.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{dec: newDecoder(r)}
}

// Open opens the extract at path. The caller must close the returned file.
func Open(path string) (*Scanner, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "osmxml: open %s", path)
	}
	return NewScanner(f), f, nil
}

func newDecoder(r io.Reader) *xml.Decoder {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, eris.Wrapf(err, "osmxml: unsupported charset %q", charset)
		}
		return enc.NewDecoder().Reader(input), nil
	}
	return dec
}

// Scan advances to the next record. It returns false at the end of input or
// on error; check Err afterwards.
func (s *Scanner) Scan() bool {
	if s.done {
		return false
	}
	for {
		tok, err := s.dec.Token()
		if err == io.EOF {
			if !s.sawRoot {
				s.fail(eris.New("no element found"))
				return false
			}
			s.done = true
			s.cur = nil
			return false
		}
		if err != nil {
			s.fail(err)
			return false
		}

		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		s.sawRoot = true

		switch se.Name.Local {
		case KindNode, KindWay:
			el, err := buildElement(s.dec, se)
			if err != nil {
				s.fail(err)
				return false
			}
			s.cur = el
			return true
		case KindRelation:
			if err := s.dec.Skip(); err != nil {
				s.fail(err)
				return false
			}
		}
	}
}

// Element returns the record produced by the last successful Scan.
func (s *Scanner) Element() *Element {
	return s.cur
}

// Err returns the first error encountered, always a *ParseError.
func (s *Scanner) Err() error {
	return s.err
}

func (s *Scanner) fail(err error) {
	s.err = newParseError(s.dec, err)
	s.cur = nil
	s.done = true
}

func newParseError(dec *xml.Decoder, err error) *ParseError {
	line, col := dec.InputPos()
	return &ParseError{Line: line, Column: col, Err: err}
}

// buildElement reads the subtree opened by start, up to and including its
// end tag.
func buildElement(dec *xml.Decoder, start xml.StartElement) (*Element, error) {
	el := &Element{Name: start.Name.Local}
	if len(start.Attr) > 0 {
		el.Attrs = make([]Attr, 0, len(start.Attr))
		for _, a := range start.Attr {
			el.Attrs = append(el.Attrs, Attr{Key: attrName(a.Name), Value: a.Value})
		}
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			child, err := buildElement(dec, t)
			if err != nil {
				return nil, err
			}
			el.Children = append(el.Children, child)
		case xml.CharData:
			el.appendText(string(t))
		case xml.EndElement:
			return el, nil
		}
	}
}

func attrName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}
