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

	"github.com/stephenlclarke/fixcat/fix"
)

// Field is a tag=value pair. Both halves are views into the buffer the
// field was read from and are only valid while that buffer is.
type Field struct {
	Tag   []byte
	Value []byte
}

// GetField returns the bytes before the first sep in buf. ok is false when
// buf holds no separator at all, which means the field is incomplete (or buf
// is empty). An empty field with ok true is a lone separator.
func GetField(buf []byte, sep byte) (field []byte, ok bool) {
	i := bytes.IndexByte(buf, sep)
	if i < 0 {
		return nil, false
	}
	return buf[:i], true
}

// FieldToTagValue splits a token (without its separator) at the first '='.
//
// A field is malformed when it is empty, has no '=', has an empty tag, a
// non-numeric tag or an empty value. Values that embed the separator and
// length-prefixed data fields are not supported.
func FieldToTagValue(token []byte) (tag, value []byte, err error) {
	return splitField(token, 0)
}

func splitField(token []byte, offset int) (tag, value []byte, err error) {
	if len(token) == 0 {
		return nil, nil, fix.NewFieldError(fix.ErrMalformedField, nil, offset, "empty field")
	}

	i := bytes.IndexByte(token, fix.TagDelimiter)
	switch {
	case i < 0:
		return nil, nil, fix.NewFieldError(fix.ErrMalformedField, nil, offset, "missing tag delimiter")
	case i == 0:
		return nil, nil, fix.NewFieldError(fix.ErrMalformedField, nil, offset, "empty tag")
	case i == len(token)-1:
		return nil, nil, fix.NewFieldError(fix.ErrMalformedField, token[:i], offset, "empty value")
	}

	tag = token[:i]
	for _, c := range tag {
		if c < '0' || c > '9' {
			return nil, nil, fix.NewFieldError(fix.ErrMalformedField, tag, offset, "non-numeric tag")
		}
	}

	return tag, token[i+1:], nil
}

// FieldScanner walks the separator-terminated fields of a buffer.
//
//	sc := msg.Fields()
//	for sc.Scan() {
//		f := sc.Field()
//	}
//	if err := sc.Err(); err != nil { ... }
type FieldScanner struct {
	buf    []byte
	sep    byte
	pos    int
	offset int
	field  Field
	err    error
}

// NewFieldScanner returns a scanner over buf.
func NewFieldScanner(buf []byte, sep byte) FieldScanner {
	return FieldScanner{buf: buf, sep: sep}
}

// Scan advances to the next field. It returns false at the end of the
// buffer or on the first malformed field.
func (s *FieldScanner) Scan() bool {
	if s.err != nil || s.pos >= len(s.buf) {
		return false
	}

	token, ok := GetField(s.buf[s.pos:], s.sep)
	if !ok {
		s.err = fix.NewFieldError(fix.ErrMalformedField, nil, s.pos, "field not terminated by separator")
		return false
	}

	tag, value, err := splitField(token, s.pos)
	if err != nil {
		s.err = err
		return false
	}

	s.offset = s.pos
	s.field = Field{Tag: tag, Value: value}
	s.pos += len(token) + 1

	return true
}

// Field returns the field found by the last successful Scan.
func (s *FieldScanner) Field() Field { return s.field }

// Offset is the position of the current field within the scanned buffer.
func (s *FieldScanner) Offset() int { return s.offset }

// Err returns the first error met while scanning.
func (s *FieldScanner) Err() error { return s.err }

// ParseFields collects every field of buf. The returned fields alias buf.
func ParseFields(buf []byte, sep byte) ([]Field, error) {
	sc := NewFieldScanner(buf, sep)
	var out []Field

	for sc.Scan() {
		out = append(out, sc.Field())
	}

	return out, sc.Err()
}
