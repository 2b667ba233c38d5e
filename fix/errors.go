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
package fix

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the codec wraps exactly one of these,
// so callers can branch with errors.Is.
var (
	ErrMalformedField = errors.New("malformed field")
	ErrUnexpectedTag  = errors.New("unexpected tag")
	ErrParse          = errors.New("parse error")
	ErrEncoding       = errors.New("encoding error")
	ErrBufferOverflow = errors.New("buffer overflow")
	ErrTruncated      = errors.New("truncated message")
)

// FieldError carries the position of a framing failure.
type FieldError struct {
	Kind   error
	Tag    string // tag seen on the wire, empty when none could be read
	Offset int    // byte offset of the field within the inspected buffer
	Detail string
}

func (e *FieldError) Error() string {
	msg := e.Kind.Error()
	if e.Tag != "" {
		msg = fmt.Sprintf("%s: tag %s", msg, e.Tag)
	}
	msg = fmt.Sprintf("%s at offset %d", msg, e.Offset)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *FieldError) Unwrap() error { return e.Kind }

// NewFieldError builds a FieldError; tag may be nil.
func NewFieldError(kind error, tag []byte, offset int, detail string) *FieldError {
	return &FieldError{Kind: kind, Tag: string(tag), Offset: offset, Detail: detail}
}
