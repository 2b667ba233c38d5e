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
	"bytes"
	"io"
	"testing"
)

func TestObfuscatorDisabledReturnsUnchanged(t *testing.T) {
	o := CreateObfuscator(DefaultSensitiveTags, false)
	out := o.Value([]byte("49"), []byte("ABC"), nil)
	if string(out) != "ABC" {
		t.Fatalf("disabled obfuscator changed value: got %q", out)
	}
}

func TestObfuscatorNilIsDisabled(t *testing.T) {
	var o *Obfuscator
	if out := o.Value([]byte("49"), []byte("ABC"), nil); string(out) != "ABC" {
		t.Fatalf("nil obfuscator changed value: got %q", out)
	}
}

func TestObfuscatorNoSensitiveTagsReturnsUnchanged(t *testing.T) {
	o := CreateObfuscator(map[int]string{}, true)
	for _, f := range [][2]string{{"11", "OID1"}, {"38", "100"}, {"40", "2"}} {
		if out := o.Value([]byte(f[0]), []byte(f[1]), nil); string(out) != f[1] {
			t.Fatalf("no-sensitive obfuscator changed %s=%s to %q", f[0], f[1], out)
		}
	}
}

func TestObfuscatorStableAliases(t *testing.T) {
	sensitive := map[int]string{
		49: "SenderCompID",
		56: "TargetCompID",
		1:  "Account",
	}
	o := CreateObfuscator(sensitive, true)

	var stderr bytes.Buffer
	cases := []struct {
		tag, value, want string
	}{
		{"49", "ABC", "SenderCompID0001"},
		{"56", "DEF", "TargetCompID0001"},
		{"1", "ACC123", "Account0001"},
		{"11", "OID1", "OID1"},
		{"49", "ABC", "SenderCompID0001"}, // reused
		{"56", "NEWDEF", "TargetCompID0002"},
		{"1", "ACC999", "Account0002"},
	}

	for _, c := range cases {
		got := o.Value([]byte(c.tag), []byte(c.value), &stderr)
		if string(got) != c.want {
			t.Errorf("Value(%s, %s) = %q, want %q", c.tag, c.value, got, c.want)
		}
	}

	if !bytes.Contains(stderr.Bytes(), []byte("first use: tag 49")) {
		t.Errorf("expected first use logged, got %q", stderr.String())
	}
	if n := bytes.Count(stderr.Bytes(), []byte("first use")); n != 5 {
		t.Errorf("expected 5 first-use lines, got %d", n)
	}
}

func TestObfuscatorIgnoresNonNumericTags(t *testing.T) {
	o := CreateObfuscator(map[int]string{49: "SenderCompID"}, true)
	if out := o.Value([]byte("ABC"), []byte("XYZ"), io.Discard); string(out) != "XYZ" {
		t.Fatalf("non-numeric tag altered: %q", out)
	}
}
