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

import "strings"

// Field separators and the tag delimiter.
const (
	SOH          byte = 0x01
	Pipe         byte = 0x7c // '|'
	TagDelimiter byte = '='
)

// Tags the codec knows about. Only 8, 9, 35 and 10 are enforced by the
// framer; the rest are filled or written when present.
const (
	TagBeginString     = 8
	TagBodyLength      = 9
	TagCheckSum        = 10
	TagMsgSeqNum       = 34
	TagMsgType         = 35
	TagSenderCompID    = 49
	TagSendingTime     = 52
	TagSymbol          = 55
	TagTargetCompID    = 56
	TagSignature       = 89
	TagSecureDataLen   = 90
	TagSignatureLength = 93
	TagMessageEncoding = 347
	TagNoMDEntries     = 268
	TagMDEntryType     = 269
	TagMDEntryPx       = 270
	TagMDEntrySize     = 271
)

// MsgTypeMarketDataSnapshot is MarketDataSnapshotFullRefresh.
const MsgTypeMarketDataSnapshot = "W"

// MDEntryType values.
const (
	MDEntryBid   = '0'
	MDEntryOffer = '1'
)

var beginStrings = []struct {
	version     string
	beginString string
}{
	{"40", "FIX.4.0"},
	{"41", "FIX.4.1"},
	{"42", "FIX.4.2"},
	{"43", "FIX.4.3"},
	{"44", "FIX.4.4"},
	{"50", "FIXT.1.1"},
	{"50SP1", "FIXT.1.1"},
	{"50SP2", "FIXT.1.1"},
	{"T11", "FIXT.1.1"},
}

// BeginStringFor maps a short version name ("44", "50SP2", ...) to the
// BeginString(8) value carried on the wire. Unknown versions fall back to FIX.4.4.
func BeginStringFor(version string) string {
	for _, b := range beginStrings {
		if b.version == version {
			return b.beginString
		}
	}
	return "FIX.4.4"
}

// IsSupportedFixVersion reports whether version is one of SupportedFixVersions.
func IsSupportedFixVersion(version string) bool {
	for _, b := range beginStrings {
		if b.version == version {
			return true
		}
	}
	return false
}

// SupportedFixVersions lists the accepted short version names.
func SupportedFixVersions() string {
	names := make([]string, 0, len(beginStrings))
	for _, b := range beginStrings {
		names = append(names, b.version)
	}
	return strings.Join(names, ",")
}

// SeparatorByName accepts "soh" or "pipe".
func SeparatorByName(name string) (byte, bool) {
	switch strings.ToLower(name) {
	case "", "soh":
		return SOH, true
	case "pipe", "|":
		return Pipe, true
	}
	return 0, false
}
