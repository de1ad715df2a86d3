// Package xmlfield extracts attribute values from the repeating elements
// of an XML document without building a document tree.
//
// FRED responses are flat sequences of one element repeated under a root,
// for example:
//
//	<observations>
//	  <observation date="1929-01-01" value="1202.659"/>
//	  <observation date="1930-01-01" value="1100.670"/>
//	</observations>
//
// A Scanner walks such a document lazily and yields one row of attribute
// values per occurrence:
//
//	sc := xmlfield.NewScanner(data, "observation", []string{"date", "value"})
//	for sc.Scan() {
//		row := sc.Row() // ["1929-01-01", "1202.659"]
//	}
//	if err := sc.Err(); err != nil {
//		// the scan stopped on malformed markup or a bad attribute
//	}
//
// The first failure latches: Scan keeps returning false afterwards even
// when later input is well formed, and Err keeps returning that first
// failure. Running out of input is not a failure.
package xmlfield

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Kind classifies extraction failures.
type Kind string

const (
	// KindMissingAttribute means a requested attribute is not present on
	// an occurrence of the element.
	KindMissingAttribute Kind = "missing_attribute"

	// KindEmptyAttribute means a requested attribute decoded to the empty
	// string.
	KindEmptyAttribute Kind = "empty_attribute"

	// KindDecode means the input contains bytes that do not decode as
	// text under the document encoding. The tokenizer validates text
	// while it scans, so the failure carries the offending line rather
	// than an attribute name.
	KindDecode Kind = "decode"

	// KindMalformed means the markup itself could not be tokenized.
	KindMalformed Kind = "malformed"
)

// Error describes why a scan stopped early.
type Error struct {
	Kind  Kind
	Tag   string
	Field string
	Err   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch e.Kind {
	case KindMissingAttribute:
		return fmt.Sprintf("attribute %q not found on element <%s>", e.Field, e.Tag)
	case KindEmptyAttribute:
		return fmt.Sprintf("attribute %q on element <%s> is empty", e.Field, e.Tag)
	case KindDecode:
		return fmt.Sprintf("undecodable text: %v", e.Err)
	default:
		return fmt.Sprintf("malformed markup: %v", e.Err)
	}
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Scanner yields one row of attribute values for every occurrence of a
// single repeating element. Construct with NewScanner; a Scanner always
// starts at the beginning of its input and is not safe for concurrent
// use.
type Scanner struct {
	dec    *xml.Decoder
	tag    string
	fields []string
	row    []string
	err    error
	done   bool
}

// NewScanner returns a Scanner positioned before the first occurrence of
// tag in data. fields names the attributes to extract; rows align with
// their order. The input bytes are never modified.
func NewScanner(data []byte, tag string, fields []string) *Scanner {
	return &Scanner{
		dec:    xml.NewDecoder(bytes.NewReader(data)),
		tag:    tag,
		fields: fields,
	}
}

// Scan advances to the next occurrence of the element, skipping prolog,
// comments, character data and non-matching elements. It returns false
// when the input is exhausted or when a scan has failed; Err tells the
// two apart.
func (s *Scanner) Scan() bool {
	if s.done {
		return false
	}

	for {
		tok, err := s.dec.Token()
		if err == io.EOF {
			s.done = true
			return false
		}
		if err != nil {
			s.err = classifyTokenError(err)
			s.done = true
			return false
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != s.tag {
			continue
		}

		row, err := s.extract(start)
		if err != nil {
			s.err = err
			s.done = true
			return false
		}
		s.row = row
		return true
	}
}

// Row returns the values extracted by the most recent successful Scan.
// The slice is fresh per row; the Scanner keeps no reference to it.
func (s *Scanner) Row() []string {
	return s.row
}

// Err returns the failure that stopped the scan, or nil after a clean end
// of input.
func (s *Scanner) Err() error {
	return s.err
}

// extract pulls the requested attributes off one element occurrence. The
// tokenizer has already entity-decoded and validated the values.
func (s *Scanner) extract(el xml.StartElement) ([]string, error) {
	row := make([]string, 0, len(s.fields))
	for _, field := range s.fields {
		val, found := attrValue(el, field)
		if !found {
			return nil, &Error{Kind: KindMissingAttribute, Tag: s.tag, Field: field}
		}
		if val == "" {
			return nil, &Error{Kind: KindEmptyAttribute, Tag: s.tag, Field: field}
		}
		row = append(row, val)
	}
	return row, nil
}

// classifyTokenError separates undecodable text from structural damage.
// The tokenizer reports both as *xml.SyntaxError; the invalid UTF-8
// message is the only signal it gives for encoding failures.
func classifyTokenError(err error) error {
	var syn *xml.SyntaxError
	if errors.As(err, &syn) && strings.Contains(syn.Msg, "invalid UTF-8") {
		return &Error{Kind: KindDecode, Err: err}
	}
	return &Error{Kind: KindMalformed, Err: err}
}

// First returns the first row extracted from data. A nil row with a nil
// error means the input holds no occurrence of the element.
func First(data []byte, tag string, fields ...string) ([]string, error) {
	s := NewScanner(data, tag, fields)
	if s.Scan() {
		return s.Row(), nil
	}
	return nil, s.Err()
}

func attrValue(el xml.StartElement, name string) (string, bool) {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}
