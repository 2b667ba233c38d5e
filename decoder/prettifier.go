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
	"io"

	"github.com/stephenlclarke/fixcat/fix"
)

var (
	ColourReset   = "\033[0m"
	ColourLine    = "\033[38;5;244m"
	ColourValue   = "\033[97m"
	ColourMsgType = "\033[38;5;228m"
	ColourTrailer = "\033[32m"
	ColourFile    = "\033[95m"
	ColourError   = "\033[31m"
)

func DisableColours() {
	ColourReset = ""
	ColourLine = ""
	ColourValue = ""
	ColourMsgType = ""
	ColourTrailer = ""
	ColourFile = ""
	ColourError = ""
}

// FieldHandler receives the decoded fields of a message in wire order.
type FieldHandler interface {
	HandleField(tag, value []byte, isMsgType bool) error
	EndMessage(trailer StandardTrailer) error
}

// Dispatch feeds every body field of msg to h, then the trailer.
func Dispatch(msg Message, h FieldHandler) error {
	sc := msg.Fields()

	for sc.Scan() {
		f := sc.Field()
		if err := h.HandleField(f.Tag, f.Value, string(f.Tag) == "35"); err != nil {
			return err
		}
	}

	if err := sc.Err(); err != nil {
		return err
	}

	return h.EndMessage(msg.Trailer)
}

// Renderer prints messages one per line as tag=value| with MsgType
// highlighted and the checksum at the end.
type Renderer struct {
	out        io.Writer
	errOut     io.Writer
	obfuscator *fix.Obfuscator
	encoding   string
}

// NewRenderer writes to out; obfuscation notices go to errOut. obfuscator may be nil.
func NewRenderer(out, errOut io.Writer, obfuscator *fix.Obfuscator) *Renderer {
	return &Renderer{out: out, errOut: errOut, obfuscator: obfuscator}
}

// Render prints one message.
func (r *Renderer) Render(msg Message) error {
	r.encoding = msg.Header.MessageEncoding
	return Dispatch(msg, r)
}

func (r *Renderer) HandleField(tag, value []byte, isMsgType bool) error {
	value = r.obfuscator.Value(tag, value, r.errOut)

	text, err := DecodeText(value, r.encoding)
	if err != nil {
		// Keep going with an escaped rendering; the bytes are still framed correctly.
		text = fmt.Sprintf("%q", value)
	}

	colour := ColourValue
	if isMsgType {
		colour = ColourMsgType
	}

	_, err = fmt.Fprint(r.out, ColourLine, string(tag), "=", colour, text, ColourLine, "|", ColourReset)
	return err
}

func (r *Renderer) EndMessage(trailer StandardTrailer) error {
	_, err := fmt.Fprint(r.out, ColourTrailer, "10=", trailer.CheckSum, ColourReset, "\n")
	return err
}
