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
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/stephenlclarke/fixcat/fix"
)

// Template holds the literal parts of a snapshot message.
type Template struct {
	BeginString     string
	SenderCompID    string
	TargetCompID    string
	SendingTime     string
	Symbol          string
	CheckSum        string // written as is unless ComputeCheckSum is set
	ComputeCheckSum bool
	Separator       byte
}

// DefaultTemplate returns placeholder values for every literal field.
func DefaultTemplate() Template {
	return Template{
		BeginString:  "FIX.4.4",
		SenderCompID: "SENDER_ID",
		TargetCompID: "TARGET_ID",
		SendingTime:  "YYYYMMDD-HH:MM:SS.sss",
		Symbol:       "EURUSD",
		CheckSum:     "000",
		Separator:    fix.SOH,
	}
}

// Validate reports every unusable template value.
func (t Template) Validate() error {
	var result *multierror.Error

	check := func(name, value string) {
		if value == "" {
			result = multierror.Append(result, fmt.Errorf("%s is empty", name))
			return
		}
		for i := 0; i < len(value); i++ {
			if c := value[i]; c < 0x20 || c > 0x7e || c == t.Separator {
				result = multierror.Append(result, fmt.Errorf("%s contains byte 0x%02x", name, c))
				return
			}
		}
	}

	check("BeginString", t.BeginString)
	check("SenderCompID", t.SenderCompID)
	check("TargetCompID", t.TargetCompID)
	check("SendingTime", t.SendingTime)
	check("Symbol", t.Symbol)

	if !t.ComputeCheckSum {
		if len(t.CheckSum) != 3 || strings.Trim(t.CheckSum, "0123456789") != "" {
			result = multierror.Append(result, fmt.Errorf("CheckSum %q must be three digits", t.CheckSum))
		}
	}

	if t.Separator != fix.SOH && t.Separator != fix.Pipe {
		result = multierror.Append(result, fmt.Errorf("unsupported separator 0x%02x", t.Separator))
	}

	return result.ErrorOrNil()
}

const (
	maxDigits = 20 // enough for any uint64
	// "269=0|270=<px>|271=<sz>|"
	levelSize = len("269=0") + len("270=") + len("271=") + 2*maxDigits + 3
)

// SnapshotEncoder assembles MarketDataSnapshotFullRefresh (35=W) messages
// for an OrderBook. Buffers are sized once from the template and reused.
type SnapshotEncoder struct {
	tpl    Template
	header *AsciiWriter
	body   *AsciiWriter

	headerPrefix []byte // 8=<BeginString>|9=
	bodyPrefix   []byte // 35=W|49=..|56=..|34=
	bodySuffix   []byte // |52=..|55=..|
}

// NewSnapshotEncoder validates tpl and pre-sizes the buffers for the
// largest book it can be asked to encode.
func NewSnapshotEncoder(tpl Template) (*SnapshotEncoder, error) {
	if err := tpl.Validate(); err != nil {
		return nil, fmt.Errorf("invalid message template: %w", err)
	}

	sep := string(tpl.Separator)
	e := &SnapshotEncoder{
		tpl:          tpl,
		headerPrefix: []byte("8=" + tpl.BeginString + sep + "9="),
		bodyPrefix: []byte("35=" + fix.MsgTypeMarketDataSnapshot + sep +
			"49=" + tpl.SenderCompID + sep +
			"56=" + tpl.TargetCompID + sep +
			"34="),
		bodySuffix: []byte(sep +
			"52=" + tpl.SendingTime + sep +
			"55=" + tpl.Symbol + sep),
	}

	headerSize := len(e.headerPrefix) + maxDigits + 1
	bodySize := len(e.bodyPrefix) + maxDigits + len(e.bodySuffix) +
		len("268=") + maxDigits + 1 +
		2*MaxLevels*levelSize +
		len("10=000") + 1

	e.header = NewAsciiWriter(make([]byte, headerSize))
	e.body = NewAsciiWriter(make([]byte, bodySize))

	return e, nil
}

// Encode serializes book with the given MsgSeqNum. BodyLength is only
// known once the body is written, so the body goes to one buffer and the
// header, referencing its length, to another. The trailer is appended to
// the body buffer after measuring.
//
// Both slices alias the encoder's buffers and are overwritten by the next
// call. Write header then rest.
func (e *SnapshotEncoder) Encode(book *OrderBook, seqNum uint32) (header, rest []byte, err error) {
	if book.BidNum < 0 || book.BidNum > MaxLevels || book.AskNum < 0 || book.AskNum > MaxLevels {
		return nil, nil, fmt.Errorf("%w: levels must be within 0..%d, got %d bids and %d asks",
			ErrInvalidBook, MaxLevels, book.BidNum, book.AskNum)
	}

	sep := e.tpl.Separator

	e.header.Clear()
	e.body.Clear()

	e.body.WriteBuf(e.bodyPrefix)
	e.body.WriteU32(seqNum)
	e.body.WriteBuf(e.bodySuffix)
	writeOrderBook(e.body, book, sep)

	bodyLength := e.body.Len()

	e.header.WriteBuf(e.headerPrefix)
	e.header.WriteUsize(uint(bodyLength))
	e.header.WriteRawU8(sep)

	// CheckSum(10)
	e.body.WriteString("10=")
	if e.tpl.ComputeCheckSum {
		sum := (CheckSum(e.header.Bytes()) + CheckSum(e.body.Bytes()[:bodyLength])) % 256
		e.body.WriteRawU8('0' + byte(sum/100))
		e.body.WriteRawU8('0' + byte(sum/10%10))
		e.body.WriteRawU8('0' + byte(sum%10))
	} else {
		e.body.WriteString(e.tpl.CheckSum)
	}
	e.body.WriteRawU8(sep)

	if err := e.header.Err(); err != nil {
		return nil, nil, err
	}
	if err := e.body.Err(); err != nil {
		return nil, nil, err
	}

	return e.header.Bytes(), e.body.Bytes(), nil
}

// CheckSum is the FIX modulo-256 byte sum of p.
func CheckSum(p []byte) int {
	sum := 0
	for _, c := range p {
		sum += int(c)
	}
	return sum % 256
}

// writeOrderBook writes NoMDEntries(268) followed by one
// MDEntryType(269)/MDEntryPx(270)/MDEntrySize(271) triple per level.
func writeOrderBook(w *AsciiWriter, book *OrderBook, sep byte) {
	w.WriteString("268=")
	w.WriteUsize(uint(book.BidNum + book.AskNum))
	w.WriteRawU8(sep)

	for _, bid := range book.BidLevels() {
		writeLevel(w, fix.MDEntryBid, bid, sep)
	}

	for _, ask := range book.AskLevels() {
		writeLevel(w, fix.MDEntryOffer, ask, sep)
	}
}

func writeLevel(w *AsciiWriter, entryType byte, level PxSz, sep byte) {
	w.WriteString("269=")
	w.WriteRawU8(entryType)
	w.WriteRawU8(sep)
	w.WriteString("270=")
	w.WriteU32(level.Price)
	w.WriteRawU8(sep)
	w.WriteString("271=")
	w.WriteU32(level.Size)
	w.WriteRawU8(sep)
}
