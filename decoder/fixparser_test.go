/*
fixcat — FIX tag-value stream codec tools
Copyright (C) 2025 Steve Clarke <stephenlclarke@mac.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.

In accordance with section 13 of the AGPL, if you modify this program,
your modified version must prominently offer all users interacting with it
remotely through a computer network an opportunity to receive the source
code of your version.
*/
package decoder

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/stephenlclarke/fixcat/fix"
)

func TestGetFieldEmptyBuffer(t *testing.T) {
	field, ok := GetField([]byte{}, fix.SOH)
	if len(field) != 0 || ok {
		t.Errorf("GetField(empty) = %v, %v; want empty, false", field, ok)
	}
}

func TestGetFieldOnlySeparator(t *testing.T) {
	field, ok := GetField([]byte{fix.SOH}, fix.SOH)
	if len(field) != 0 || !ok {
		t.Errorf("GetField(SOH) = %v, %v; want empty, true", field, ok)
	}
}

func TestGetFieldSimple(t *testing.T) {
	field, ok := GetField([]byte{12, 13, 15, fix.SOH, 56, 78, fix.SOH}, fix.SOH)
	if !ok || !bytes.Equal(field, []byte{12, 13, 15}) {
		t.Errorf("GetField() = %v, %v; want [12 13 15], true", field, ok)
	}
}

func TestGetFieldNoSeparator(t *testing.T) {
	field, ok := GetField([]byte{12, 13, 14, 15}, fix.SOH)
	if len(field) != 0 || ok {
		t.Errorf("GetField(no separator) = %v, %v; want empty, false", field, ok)
	}
}

func TestGetFieldPipe(t *testing.T) {
	field, ok := GetField([]byte("35=A|49=X|"), fix.Pipe)
	if !ok || string(field) != "35=A" {
		t.Errorf("GetField(pipe) = %q, %v", field, ok)
	}
}

func TestFieldToTagValueMalformed(t *testing.T) {
	cases := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"no delimiter", "123"},
		{"empty value", "123="},
		{"empty tag", "=abc"},
		{"non-numeric tag", "ab=1"},
	}

	for _, c := range cases {
		_, _, err := FieldToTagValue([]byte(c.token))
		if !errors.Is(err, fix.ErrMalformedField) {
			t.Errorf("%s: FieldToTagValue(%q) error = %v, want ErrMalformedField", c.name, c.token, err)
		}
	}
}

func TestFieldToTagValue(t *testing.T) {
	tag, value, err := FieldToTagValue([]byte("123=56=7"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(tag) != "123" || string(value) != "56=7" {
		t.Errorf("FieldToTagValue() = %q, %q", tag, value)
	}

	tag, value, err = FieldToTagValue([]byte("1=5"))
	if err != nil || string(tag) != "1" || string(value) != "5" {
		t.Errorf("FieldToTagValue(short) = %q, %q, %v", tag, value, err)
	}
}

func TestSplitThenRejoinReproducesInput(t *testing.T) {
	for _, sep := range []byte{fix.SOH, fix.Pipe} {
		for _, token := range []string{"8=FIX.4.4", "35=W", "270=1000", "52=20250101-12:00:00.000", "58=a=b"} {
			raw := append([]byte(token), sep)

			field, ok := GetField(raw, sep)
			if !ok {
				t.Fatalf("GetField(%q) found no separator", raw)
			}
			tag, value, err := FieldToTagValue(field)
			if err != nil {
				t.Fatalf("FieldToTagValue(%q): %v", field, err)
			}

			var rejoined []byte
			rejoined = append(rejoined, tag...)
			rejoined = append(rejoined, '=')
			rejoined = append(rejoined, value...)
			rejoined = append(rejoined, sep)

			if !bytes.Equal(rejoined, raw) {
				t.Errorf("rejoined %q, want %q", rejoined, raw)
			}
		}
	}
}

func TestParseFields(t *testing.T) {
	got, err := ParseFields([]byte("35=A|49=S|56=T|"), fix.Pipe)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Field{
		{Tag: []byte("35"), Value: []byte("A")},
		{Tag: []byte("49"), Value: []byte("S")},
		{Tag: []byte("56"), Value: []byte("T")},
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseFields() = %q, want %q", got, want)
	}
}

func TestFieldScannerUnterminated(t *testing.T) {
	sc := NewFieldScanner([]byte("35=A|49=S"), fix.Pipe)

	n := 0
	for sc.Scan() {
		n++
	}

	if n != 1 {
		t.Errorf("expected 1 field before the error, got %d", n)
	}

	var fe *fix.FieldError
	if !errors.As(sc.Err(), &fe) || fe.Offset != 5 || !errors.Is(fe, fix.ErrMalformedField) {
		t.Errorf("expected malformed field at offset 5, got %v", sc.Err())
	}
}

func TestFieldScannerOffsets(t *testing.T) {
	sc := NewFieldScanner([]byte("35=A|49=SENDER|56=T|"), fix.Pipe)

	var offsets []int
	for sc.Scan() {
		offsets = append(offsets, sc.Offset())
	}

	if !reflect.DeepEqual(offsets, []int{0, 5, 15}) {
		t.Errorf("offsets = %v", offsets)
	}
}
