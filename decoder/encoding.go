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
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/stephenlclarke/fixcat/fix"
	"golang.org/x/net/html/charset"
)

// DecodeText converts a field value to a Go string. label is the message's
// MessageEncoding(347); empty means plain ASCII/UTF-8.
func DecodeText(value []byte, label string) (string, error) {
	if label == "" {
		return utf8Text(value)
	}

	enc, name := charset.Lookup(label)
	if enc == nil {
		return "", fmt.Errorf("%w: unknown MessageEncoding %q", fix.ErrEncoding, label)
	}
	if strings.EqualFold(name, "utf-8") {
		return utf8Text(value)
	}

	out, err := enc.NewDecoder().Bytes(value)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", fix.ErrEncoding, name, err)
	}

	return string(out), nil
}

func utf8Text(value []byte) (string, error) {
	if !utf8.Valid(value) {
		return "", fmt.Errorf("%w: invalid UTF-8 in value", fix.ErrEncoding)
	}
	return string(value), nil
}
