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
package encoder

import (
	"fmt"

	"github.com/stephenlclarke/fixcat/fix"
)

// AsciiWriter writes ASCII text into a caller-sized buffer without ever
// allocating. A write that does not fit is dropped whole, the writer
// remembers fix.ErrBufferOverflow and ignores every later write until Clear.
type AsciiWriter struct {
	buf []byte
	idx int
	err error
}

// NewAsciiWriter writes into buf, which must be sized for the largest
// message the caller will produce.
func NewAsciiWriter(buf []byte) *AsciiWriter {
	return &AsciiWriter{buf: buf}
}

// Len is the number of bytes written since the last Clear.
func (w *AsciiWriter) Len() int { return w.idx }

// Cap is the size of the underlying buffer.
func (w *AsciiWriter) Cap() int { return len(w.buf) }

// Bytes returns the written bytes. They alias the writer's buffer.
func (w *AsciiWriter) Bytes() []byte { return w.buf[:w.idx] }

// Err returns the overflow error, if any.
func (w *AsciiWriter) Err() error { return w.err }

// Clear rewinds the cursor. Old bytes are left in place and never read back.
func (w *AsciiWriter) Clear() {
	w.idx = 0
	w.err = nil
}

// WriteRawU8 writes one byte as it is.
func (w *AsciiWriter) WriteRawU8(v byte) {
	if !w.fits(1) {
		return
	}
	w.buf[w.idx] = v
	w.idx++
}

// WriteBuf writes p as it is.
func (w *AsciiWriter) WriteBuf(p []byte) {
	if !w.fits(len(p)) {
		return
	}
	w.idx += copy(w.buf[w.idx:], p)
}

// WriteString writes s as it is.
func (w *AsciiWriter) WriteString(s string) {
	if !w.fits(len(s)) {
		return
	}
	w.idx += copy(w.buf[w.idx:], s)
}

// WriteU32 writes the decimal representation of v.
func (w *AsciiWriter) WriteU32(v uint32) { w.writeUint(uint64(v)) }

// WriteUsize writes the decimal representation of v.
func (w *AsciiWriter) WriteUsize(v uint) { w.writeUint(uint64(v)) }

// writeUint emits digits least significant first and then reverses them in
// place. O(digits), no allocation.
// See also https://github.com/miloyip/itoa-benchmark
func (w *AsciiWriter) writeUint(v uint64) {
	if w.err != nil {
		return
	}

	start := w.idx
	for {
		if w.idx == len(w.buf) {
			w.idx = start
			w.overflow(1)
			return
		}
		w.buf[w.idx] = '0' + byte(v%10)
		w.idx++
		v /= 10
		if v == 0 {
			break
		}
	}

	for i, j := start, w.idx-1; i < j; i, j = i+1, j-1 {
		w.buf[i], w.buf[j] = w.buf[j], w.buf[i]
	}
}

func (w *AsciiWriter) fits(n int) bool {
	if w.err != nil {
		return false
	}
	if len(w.buf)-w.idx < n {
		w.overflow(n)
		return false
	}
	return true
}

func (w *AsciiWriter) overflow(n int) {
	w.err = fmt.Errorf("%w: %d byte write at %d exceeds capacity %d",
		fix.ErrBufferOverflow, n, w.idx, len(w.buf))
}
