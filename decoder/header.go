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
	"errors"

	"github.com/stephenlclarke/fixcat/fix"
)

// ErrIncomplete is returned by the framers when buf ends inside a field.
// It is a request for more data, not a protocol error.
var ErrIncomplete = errors.New("incomplete field")

// maxLength bounds BodyLength and the other length fields we parse.
const maxLength = 1<<31 - 1

// StandardHeader holds the framing tags of a message. SecureDataLen and
// MessageEncoding are zero when the message does not carry them.
type StandardHeader struct {
	BeginString     string // 8
	BodyLength      int    // 9
	MsgType         string // 35
	SecureDataLen   int    // 90
	MessageEncoding string // 347
}

// StandardTrailer holds the trailer tags. SignatureLen and Signature are
// zero when absent.
type StandardTrailer struct {
	CheckSum     string // 10
	SignatureLen int    // 93
	Signature    string // 89
}

// ParseStandardHeader reads BeginString(8), BodyLength(9) and MsgType(35)
// from the start of buf.
//
// consumed covers BeginString and BodyLength only. BodyLength counts bytes
// from MsgType onwards, so after discarding consumed bytes the caller reads
// exactly BodyLength bytes and gets MsgType back as the first body field.
func ParseStandardHeader(buf []byte, sep byte) (h StandardHeader, consumed int, err error) {
	tag, value, pos, err := nextField(buf, 0, sep)
	if err != nil {
		return h, 0, err
	}
	if string(tag) != "8" {
		return h, 0, fix.NewFieldError(fix.ErrUnexpectedTag, tag, 0, "expected BeginString(8)")
	}
	if err := checkText(tag, value, 0); err != nil {
		return h, 0, err
	}
	h.BeginString = string(value)

	start := pos
	tag, value, pos, err = nextField(buf, start, sep)
	if err != nil {
		return h, 0, err
	}
	if string(tag) != "9" {
		return h, 0, fix.NewFieldError(fix.ErrUnexpectedTag, tag, start, "expected BodyLength(9)")
	}
	h.BodyLength, err = parseLength(tag, value, start)
	if err != nil {
		return h, 0, err
	}

	consumed = pos

	// MsgType is read ahead and left in the stream.
	tag, value, _, err = nextField(buf, consumed, sep)
	if err != nil {
		return h, 0, err
	}
	if string(tag) != "35" {
		return h, 0, fix.NewFieldError(fix.ErrUnexpectedTag, tag, consumed, "expected MsgType(35)")
	}
	if err := checkText(tag, value, consumed); err != nil {
		return h, 0, err
	}
	h.MsgType = string(value)

	return h, consumed, nil
}

// ParseStandardTrailer reads CheckSum(10) from the start of buf and returns
// the span it occupies, separator included. The checksum is not verified.
func ParseStandardTrailer(buf []byte, sep byte) (t StandardTrailer, consumed int, err error) {
	tag, value, pos, err := nextField(buf, 0, sep)
	if err != nil {
		return t, 0, err
	}
	if string(tag) != "10" {
		return t, 0, fix.NewFieldError(fix.ErrUnexpectedTag, tag, 0, "expected CheckSum(10)")
	}
	if len(value) != 3 || !isDigits(value) {
		return t, 0, fix.NewFieldError(fix.ErrParse, tag, 0, "CheckSum must be three digits")
	}
	t.CheckSum = string(value)

	return t, pos, nil
}

func nextField(buf []byte, start int, sep byte) (tag, value []byte, next int, err error) {
	token, ok := GetField(buf[start:], sep)
	if !ok {
		return nil, nil, start, ErrIncomplete
	}

	tag, value, err = splitField(token, start)
	if err != nil {
		return nil, nil, start, err
	}

	return tag, value, start + len(token) + 1, nil
}

// parseLength parses an unsigned base-10 length field.
func parseLength(tag, value []byte, offset int) (int, error) {
	n := 0
	for _, c := range value {
		if c < '0' || c > '9' {
			return 0, fix.NewFieldError(fix.ErrParse, tag, offset, "non-numeric length "+string(value))
		}
		n = n*10 + int(c-'0')
		if n > maxLength {
			return 0, fix.NewFieldError(fix.ErrParse, tag, offset, "length out of range")
		}
	}
	return n, nil
}

func checkText(tag, value []byte, offset int) error {
	for _, c := range value {
		if c < 0x20 || c > 0x7e {
			return fix.NewFieldError(fix.ErrEncoding, tag, offset, "non-ASCII byte in text value")
		}
	}
	return nil
}

func isDigits(b []byte) bool {
	for _, c := range b {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
