package xmlfield

import (
	"bytes"
	"encoding/xml"
	"errors"
	"reflect"
	"testing"
)

const observationsDoc = `<?xml version="1.0" encoding="utf-8"?>
<!-- seasonally adjusted, annual -->
<observations realtime_start="2021-04-06" count="3">
  <note>units: Billions of Chained 2012 Dollars</note>
  <observation realtime_start="2021-04-06" date="1929-01-01" value="1202.659"/>
  <observation realtime_start="2021-04-06" date="1930-01-01" value="1100.67"/>
  <observation realtime_start="2021-04-06" date="1931-01-01" value="1029.038"/>
</observations>`

func collect(t *testing.T, sc *Scanner) [][]string {
	t.Helper()

	var rows [][]string
	for sc.Scan() {
		rows = append(rows, sc.Row())
	}
	return rows
}

func TestScan_SingleObservation(t *testing.T) {
	data := []byte(`<observation date="1971-04-01" value="0.850603488248666"/>`)

	sc := NewScanner(data, "observation", []string{"date", "value"})

	if !sc.Scan() {
		t.Fatalf("Scan() = false, want one row (err: %v)", sc.Err())
	}
	want := []string{"1971-04-01", "0.850603488248666"}
	if !reflect.DeepEqual(sc.Row(), want) {
		t.Errorf("Row() = %v, want %v", sc.Row(), want)
	}

	if sc.Scan() {
		t.Error("Scan() = true after last row, want false")
	}
	if err := sc.Err(); err != nil {
		t.Errorf("Err() = %v, want nil at end of input", err)
	}
}

func TestScan_WalksWholeDocument(t *testing.T) {
	sc := NewScanner([]byte(observationsDoc), "observation", []string{"date", "value"})

	rows := collect(t, sc)
	if err := sc.Err(); err != nil {
		t.Fatalf("Err() = %v, want nil", err)
	}

	want := [][]string{
		{"1929-01-01", "1202.659"},
		{"1930-01-01", "1100.67"},
		{"1931-01-01", "1029.038"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %v, want %v", rows, want)
	}
}

func TestScan_FieldOrderFollowsCaller(t *testing.T) {
	sc := NewScanner([]byte(observationsDoc), "observation", []string{"value", "date"})

	if !sc.Scan() {
		t.Fatalf("Scan() = false, want a row (err: %v)", sc.Err())
	}
	want := []string{"1202.659", "1929-01-01"}
	if !reflect.DeepEqual(sc.Row(), want) {
		t.Errorf("Row() = %v, want %v", sc.Row(), want)
	}
}

func TestScan_DecodeErrorLatches(t *testing.T) {
	var doc bytes.Buffer
	doc.WriteString(`<observations>`)
	doc.WriteString(`<observation date="1971-01-01" value="1.1"/>`)
	doc.WriteString(`<observation date="1971-`)
	doc.WriteByte(0xFF)
	doc.WriteString(`" value="2.2"/>`)
	doc.WriteString(`<observation date="1971-03-01" value="3.3"/>`)
	doc.WriteString(`</observations>`)

	sc := NewScanner(doc.Bytes(), "observation", []string{"date", "value"})

	if !sc.Scan() {
		t.Fatalf("Scan() = false, want first row (err: %v)", sc.Err())
	}
	if got := sc.Row(); got[0] != "1971-01-01" {
		t.Errorf("Row()[0] = %q, want first observation", got[0])
	}

	if sc.Scan() {
		t.Fatal("Scan() = true on undecodable attribute, want false")
	}

	var xerr *Error
	if !errors.As(sc.Err(), &xerr) {
		t.Fatalf("Err() = %T, want *Error", sc.Err())
	}
	if xerr.Kind != KindDecode {
		t.Errorf("Kind = %q, want %q", xerr.Kind, KindDecode)
	}

	var syn *xml.SyntaxError
	if !errors.As(sc.Err(), &syn) {
		t.Error("Err() does not unwrap to the tokenizer cause")
	}

	// The failure latches: the valid third observation is never reached
	// and the error is stable across calls.
	for i := 0; i < 3; i++ {
		if sc.Scan() {
			t.Fatal("Scan() = true after failure, want false forever")
		}
	}
	if !errors.As(sc.Err(), &xerr) || xerr.Kind != KindDecode {
		t.Errorf("Err() changed after repeated Scan calls: %v", sc.Err())
	}
}

func TestScan_UndecodableTextBetweenElements(t *testing.T) {
	var doc bytes.Buffer
	doc.WriteString(`<observations>`)
	doc.WriteString(`<observation date="1971-01-01" value="1.1"/>`)
	doc.WriteString("stray ")
	doc.WriteByte(0xC3) // truncated two-byte sequence
	doc.WriteString(` text`)
	doc.WriteString(`<observation date="1971-04-01" value="2.2"/>`)
	doc.WriteString(`</observations>`)

	sc := NewScanner(doc.Bytes(), "observation", []string{"date", "value"})

	if !sc.Scan() {
		t.Fatalf("Scan() = false, want first row (err: %v)", sc.Err())
	}
	if sc.Scan() {
		t.Fatal("Scan() = true, want false on undecodable text")
	}

	var xerr *Error
	if !errors.As(sc.Err(), &xerr) {
		t.Fatalf("Err() = %T, want *Error", sc.Err())
	}
	if xerr.Kind != KindDecode {
		t.Errorf("Kind = %q, want %q", xerr.Kind, KindDecode)
	}
}

func TestScan_MissingAttribute(t *testing.T) {
	doc := `<observations>
	<observation date="1929-01-01"/>
	<observation date="1930-01-01" value="1100.67"/>
</observations>`

	sc := NewScanner([]byte(doc), "observation", []string{"date", "value"})

	if sc.Scan() {
		t.Fatal("Scan() = true, want false on missing attribute")
	}

	var xerr *Error
	if !errors.As(sc.Err(), &xerr) {
		t.Fatalf("Err() = %T, want *Error", sc.Err())
	}
	if xerr.Kind != KindMissingAttribute {
		t.Errorf("Kind = %q, want %q", xerr.Kind, KindMissingAttribute)
	}
	if xerr.Field != "value" || xerr.Tag != "observation" {
		t.Errorf("Field/Tag = %q/%q, want value/observation", xerr.Field, xerr.Tag)
	}

	if sc.Scan() {
		t.Error("Scan() = true after failure, want false")
	}
}

func TestScan_EmptyAttribute(t *testing.T) {
	doc := `<observation date="1929-01-01" value=""/>`

	sc := NewScanner([]byte(doc), "observation", []string{"date", "value"})

	if sc.Scan() {
		t.Fatal("Scan() = true, want false on empty attribute")
	}

	var xerr *Error
	if !errors.As(sc.Err(), &xerr) {
		t.Fatalf("Err() = %T, want *Error", sc.Err())
	}
	if xerr.Kind != KindEmptyAttribute {
		t.Errorf("Kind = %q, want %q", xerr.Kind, KindEmptyAttribute)
	}
	if xerr.Field != "value" {
		t.Errorf("Field = %q, want %q", xerr.Field, "value")
	}
}

func TestScan_MalformedMarkup(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		rows int
	}{
		{"unquoted attribute", `<observations><observation date=1929></observations>`, 0},
		{"truncated document", `<observations><observation date="1929-01-01" value="1.0"/>`, 1},
		{"stray close tag", `<observations></wrong>`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := NewScanner([]byte(tt.doc), "observation", []string{"date"})

			rows := collect(t, sc)
			if len(rows) != tt.rows {
				t.Errorf("rows = %d, want %d", len(rows), tt.rows)
			}

			var xerr *Error
			if !errors.As(sc.Err(), &xerr) {
				t.Fatalf("Err() = %v, want *Error", sc.Err())
			}
			if xerr.Kind != KindMalformed {
				t.Errorf("Kind = %q, want %q", xerr.Kind, KindMalformed)
			}
			if xerr.Err == nil {
				t.Error("Err field = nil, want the tokenizer cause")
			}
		})
	}
}

func TestScan_NoOccurrences(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"different element", `<releases><release id="53" name="Gross National Product"/></releases>`},
		{"case mismatch", `<Observations><Observation date="1929-01-01" value="1.0"/></Observations>`},
		{"empty root", `<observations/>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := NewScanner([]byte(tt.doc), "observation", []string{"date", "value"})

			if sc.Scan() {
				t.Error("Scan() = true, want false for zero occurrences")
			}
			if err := sc.Err(); err != nil {
				t.Errorf("Err() = %v, want nil (empty sequence is valid)", err)
			}
		})
	}
}

func TestScan_DecodesEntities(t *testing.T) {
	doc := `<observation date="1929-01-01" value="1&amp;202"/>`

	sc := NewScanner([]byte(doc), "observation", []string{"value"})

	if !sc.Scan() {
		t.Fatalf("Scan() = false, want a row (err: %v)", sc.Err())
	}
	if got := sc.Row()[0]; got != "1&202" {
		t.Errorf("Row()[0] = %q, want entity-decoded %q", got, "1&202")
	}
}

func TestScan_RestartablePerConstruction(t *testing.T) {
	data := []byte(observationsDoc)

	first := NewScanner(data, "observation", []string{"date"})
	rows := collect(t, first)
	if len(rows) != 3 {
		t.Fatalf("first pass rows = %d, want 3", len(rows))
	}

	second := NewScanner(data, "observation", []string{"date"})
	if !second.Scan() {
		t.Fatalf("fresh scanner Scan() = false, want to start over (err: %v)", second.Err())
	}
	if got := second.Row()[0]; got != "1929-01-01" {
		t.Errorf("fresh scanner Row()[0] = %q, want the first observation", got)
	}
}

func TestScan_RowsAreIndependent(t *testing.T) {
	sc := NewScanner([]byte(observationsDoc), "observation", []string{"date"})

	if !sc.Scan() {
		t.Fatalf("Scan() = false (err: %v)", sc.Err())
	}
	row := sc.Row()
	row[0] = "scribbled"

	if !sc.Scan() {
		t.Fatalf("Scan() = false (err: %v)", sc.Err())
	}
	if got := sc.Row()[0]; got != "1930-01-01" {
		t.Errorf("Row()[0] = %q, want %q after mutating a prior row", got, "1930-01-01")
	}
}

func TestFirst(t *testing.T) {
	errorBody := `<?xml version="1.0" encoding="utf-8"?>
<error code="400" message="Bad Request. Variable api_key has not been set."/>`

	row, err := First([]byte(errorBody), "error", "message")
	if err != nil {
		t.Fatalf("First() error = %v", err)
	}
	if row == nil || row[0] != "Bad Request. Variable api_key has not been set." {
		t.Errorf("First() = %v, want the message attribute", row)
	}

	row, err = First([]byte(`<html>not xml at all`), "error", "message")
	if row != nil {
		t.Errorf("First() = %v on malformed input, want nil", row)
	}
	var xerr *Error
	if !errors.As(err, &xerr) || xerr.Kind != KindMalformed {
		t.Errorf("First() error = %v, want Kind %q", err, KindMalformed)
	}

	row, err = First([]byte(`<ok/>`), "error", "message")
	if row != nil || err != nil {
		t.Errorf("First() = %v, %v with no occurrence, want nil, nil", row, err)
	}
}
