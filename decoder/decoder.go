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
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/stephenlclarke/fixcat/fix"
)

const (
	DefaultBufferSize    = 4096
	DefaultMaxBodyLength = 5 * 1024 * 1024 // 5Mb
	initialContentSize   = 1024
)

// Source is a refillable read buffer. *bufio.Reader satisfies it.
type Source interface {
	io.Reader
	Peek(n int) ([]byte, error)
	Buffered() int
	Discard(n int) (int, error)
}

// Message is one decoded message. Body aliases the decoder's content buffer
// and is overwritten by the next call to Next; Generation identifies the
// call that produced it.
type Message struct {
	Header     StandardHeader
	Body       []byte
	Trailer    StandardTrailer
	Generation uint64

	sep byte
}

// Fields returns a scanner over the body fields, MsgType first.
func (m Message) Fields() FieldScanner {
	return NewFieldScanner(m.Body, m.sep)
}

// Decoder frames messages out of a byte stream one at a time. It never
// consumes bytes from the source before they have been validated.
type Decoder struct {
	src        Source
	sep        byte
	maxBody    int
	bufSize    int
	content    []byte
	generation uint64
	offset     int64 // bytes consumed so far
	msgStart   int64
}

type Option func(*Decoder)

// WithSeparator selects the field separator (fix.SOH by default).
func WithSeparator(sep byte) Option {
	return func(d *Decoder) { d.sep = sep }
}

// WithMaxBodyLength caps the BodyLength the decoder will allocate for.
func WithMaxBodyLength(n int) Option {
	return func(d *Decoder) {
		if n > 0 {
			d.maxBody = n
		}
	}
}

// WithBufferSize sets the read buffer size used when r is not already a Source.
func WithBufferSize(n int) Option {
	return func(d *Decoder) { d.bufSize = n }
}

// NewDecoder returns a decoder reading from r. If r is not a Source it is
// wrapped in a bufio.Reader.
func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	d := &Decoder{
		sep:     fix.SOH,
		maxBody: DefaultMaxBodyLength,
		bufSize: DefaultBufferSize,
	}

	for _, opt := range opts {
		opt(d)
	}

	if src, ok := r.(Source); ok {
		d.src = src
	} else {
		d.src = bufio.NewReaderSize(r, d.bufSize)
	}

	d.content = make([]byte, initialContentSize)

	return d
}

// Offset returns the stream offset at which the last message started.
func (d *Decoder) Offset() int64 { return d.msgStart }

// Next decodes the next message. It returns io.EOF when the stream ends on
// a message boundary; a stream ending anywhere else yields fix.ErrTruncated.
// Any other error leaves the stream positioned inside the failed message.
func (d *Decoder) Next() (Message, error) {
	d.generation++

	if err := d.skipLineBreaks(); err != nil {
		return Message{}, err
	}
	d.msgStart = d.offset

	msg := Message{Generation: d.generation, sep: d.sep}

	// Standard header
	var consumed int
	err := d.peekParse(func(buf []byte) (err error) {
		msg.Header, consumed, err = ParseStandardHeader(buf, d.sep)
		return err
	})
	if err != nil {
		return Message{}, err
	}

	bodyLength := msg.Header.BodyLength
	if bodyLength > d.maxBody {
		return Message{}, fix.NewFieldError(fix.ErrParse, []byte("9"), 0,
			fmt.Sprintf("BodyLength %d exceeds limit %d", bodyLength, d.maxBody))
	}

	if err := d.discard(consumed); err != nil {
		return Message{}, err
	}

	// Content
	if len(d.content) < bodyLength {
		d.content = make([]byte, bodyLength)
	}
	msg.Body = d.content[:bodyLength]

	n, err := io.ReadFull(d.src, msg.Body)
	d.offset += int64(n)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Message{}, fmt.Errorf("%w: body has %d of %d bytes", fix.ErrTruncated, n, bodyLength)
		}
		return Message{}, err
	}

	if err := fillOptional(&msg); err != nil {
		return Message{}, err
	}

	// Checksum
	var trailer StandardTrailer
	err = d.peekParse(func(buf []byte) (err error) {
		trailer, consumed, err = ParseStandardTrailer(buf, d.sep)
		return err
	})
	if err != nil {
		return Message{}, err
	}
	msg.Trailer.CheckSum = trailer.CheckSum

	if err := d.discard(consumed); err != nil {
		return Message{}, err
	}

	return msg, nil
}

// skipLineBreaks waits for the first byte of the next message. Pipe
// separated logs usually hold one message per line, so CR and LF are
// dropped there; nothing inside a message is ever skipped.
func (d *Decoder) skipLineBreaks() error {
	for {
		b, err := d.src.Peek(1)
		if err != nil {
			return err
		}
		if d.sep != fix.Pipe || (b[0] != '\n' && b[0] != '\r') {
			return nil
		}
		if err := d.discard(1); err != nil {
			return err
		}
	}
}

// peekParse feeds parse a growing window of buffered bytes until it stops
// asking for more data. Nothing is consumed.
func (d *Decoder) peekParse(parse func([]byte) error) error {
	n := max(d.src.Buffered(), 1)

	for {
		buf, peekErr := d.src.Peek(n)

		err := parse(buf)
		if !errors.Is(err, ErrIncomplete) {
			return err
		}

		switch {
		case peekErr == nil:
		case errors.Is(peekErr, bufio.ErrBufferFull):
			return fix.NewFieldError(fix.ErrMalformedField, nil, len(buf), "field exceeds read buffer")
		case errors.Is(peekErr, io.EOF):
			return fmt.Errorf("%w: stream ended inside a field", fix.ErrTruncated)
		default:
			return peekErr
		}

		n = max(d.src.Buffered(), len(buf)+1)
	}
}

func (d *Decoder) discard(n int) error {
	m, err := d.src.Discard(n)
	d.offset += int64(m)
	return err
}

// fillOptional validates every body field and copies the optional header
// and trailer tags found among them.
func fillOptional(msg *Message) error {
	sc := msg.Fields()
	first := true

	for sc.Scan() {
		f := sc.Field()

		if first {
			if string(f.Tag) != "35" {
				return fix.NewFieldError(fix.ErrUnexpectedTag, f.Tag, 0, "body must start with MsgType(35)")
			}
			first = false
			continue
		}

		var err error
		switch string(f.Tag) {
		case "90":
			msg.Header.SecureDataLen, err = parseLength(f.Tag, f.Value, sc.Offset())
		case "347":
			err = checkText(f.Tag, f.Value, sc.Offset())
			msg.Header.MessageEncoding = string(f.Value)
		case "93":
			msg.Trailer.SignatureLen, err = parseLength(f.Tag, f.Value, sc.Offset())
		case "89":
			msg.Trailer.Signature = string(f.Value)
		}
		if err != nil {
			return err
		}
	}

	if err := sc.Err(); err != nil {
		return err
	}
	if first {
		return fix.NewFieldError(fix.ErrMalformedField, nil, 0, "empty body")
	}

	return nil
}
