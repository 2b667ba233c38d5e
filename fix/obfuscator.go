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
	"fmt"
	"io"
	"maps"
	"strconv"
)

// DefaultSensitiveTags are the identity tags aliased by fixcat -obfuscate.
var DefaultSensitiveTags = map[int]string{
	1:   "Account",
	11:  "ClOrdID",
	37:  "OrderID",
	49:  "SenderCompID",
	50:  "SenderSubID",
	56:  "TargetCompID",
	57:  "TargetSubID",
	109: "ClientID",
	448: "PartyID",
	553: "Username",
	554: "Password",
}

// Obfuscator replaces values of sensitive tags with stable aliases.
// It keeps per-run state and is meant for a single decode loop.
type Obfuscator struct {
	enabled  bool              // global enable/disable flag
	tags     map[int]string    // tag -> name
	aliasMap map[string][]byte // "tag=value" -> alias
	counter  map[int]int       // per-tag, for zero-padded suffixes
}

// CreateObfuscator constructs an Obfuscator using the given tag map.
// If enabled is false, Value returns every value unchanged.
func CreateObfuscator(tags map[int]string, enabled bool) *Obfuscator {
	cp := make(map[int]string, len(tags))
	maps.Copy(cp, tags)

	return &Obfuscator{
		enabled:  enabled,
		tags:     cp,
		aliasMap: make(map[string][]byte),
		counter:  make(map[int]int),
	}
}

// Value returns the alias for a sensitive tag=value pair, or value itself.
// The first time a pair is aliased it is reported on stderr (if non-nil).
func (o *Obfuscator) Value(tag, value []byte, stderr io.Writer) []byte {
	if o == nil || !o.enabled {
		return value
	}

	tagNum, err := strconv.Atoi(string(tag))
	if err != nil {
		return value
	}

	name, sensitive := o.tags[tagNum]
	if !sensitive {
		return value
	}

	key := string(tag) + "=" + string(value)

	alias, exists := o.aliasMap[key]
	if !exists {
		o.counter[tagNum]++
		alias = fmt.Appendf(nil, "%s%04d", name, o.counter[tagNum])
		o.aliasMap[key] = alias

		if stderr != nil {
			fmt.Fprintf(stderr, "first use: tag %d (%s) value [%s] → [%s]\n",
				tagNum, name, value, alias)
		}
	}

	return alias
}
