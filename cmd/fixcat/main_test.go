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
package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stephenlclarke/fixcat/decoder"
)

func frame(body string) string {
	return "8=FIX.4.4|9=" + strconv.Itoa(len(body)) + "|" + body + "10=000|"
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestProcessDecodesFile(t *testing.T) {
	path := writeTemp(t, "in.fix", frame("35=0|49=ALICE|56=BOB|")+frame("35=W|55=EUR/USD|"))

	var out, errOut bytes.Buffer
	code := Process([]string{"-separator=pipe", "-colour=no", path}, strings.NewReader(""), &out, &errOut)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, errOut.String())
	}

	want := "35=0|49=ALICE|56=BOB|10=000\n35=W|55=EUR/USD|10=000\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestProcessReadsStdin(t *testing.T) {
	var out, errOut bytes.Buffer
	code := Process([]string{"-separator=pipe", "-colour=no"}, strings.NewReader(frame("35=A|98=0|")), &out, &errOut)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, errOut.String())
	}
	if out.String() != "35=A|98=0|10=000\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestProcessDashMeansStdin(t *testing.T) {
	path := writeTemp(t, "a.fix", frame("35=0|"))

	var out, errOut bytes.Buffer
	code := Process([]string{"-separator=pipe", "-colour=no", path, "-"}, strings.NewReader(frame("35=1|112=X|")), &out, &errOut)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, errOut.String())
	}
	if out.String() != "35=0|10=000\n35=1|112=X|10=000\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestProcessInteractiveStdinPrintsUsage(t *testing.T) {
	orig := isTerminal
	isTerminal = func(int) bool { return true }
	defer func() { isTerminal = orig }()

	stdin, err := os.Open(writeTemp(t, "tty", ""))
	if err != nil {
		t.Fatal(err)
	}
	defer stdin.Close()

	var out, errOut bytes.Buffer
	if code := Process([]string{"-colour=no"}, stdin, &out, &errOut); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(errOut.String(), "Usage: fixcat") {
		t.Errorf("expected usage, got %q", errOut.String())
	}
	if out.Len() != 0 {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestProcessMissingFile(t *testing.T) {
	var out, errOut bytes.Buffer
	code := Process([]string{"-colour=no", filepath.Join(t.TempDir(), "nope.fix")}, strings.NewReader(""), &out, &errOut)
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(errOut.String(), "Cannot open file") {
		t.Errorf("stderr = %q", errOut.String())
	}
}

func TestProcessDecodeErrorContinuesWithNextInput(t *testing.T) {
	bad := writeTemp(t, "bad.fix", frame("35=0|")+"8=FIX.4.4|35=0|")
	good := writeTemp(t, "good.fix", frame("35=5|"))

	var out, errOut bytes.Buffer
	code := Process([]string{"-separator=pipe", "-colour=no", bad, good}, strings.NewReader(""), &out, &errOut)
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if out.String() != "35=0|10=000\n35=5|10=000\n" {
		t.Errorf("output = %q", out.String())
	}
	if !strings.Contains(errOut.String(), "Error decoding "+bad+": message 2") {
		t.Errorf("stderr = %q", errOut.String())
	}
}

func TestProcessMaxBody(t *testing.T) {
	var out, errOut bytes.Buffer
	code := Process([]string{"-separator=pipe", "-colour=no", "-max-body=4"}, strings.NewReader(frame("35=0|49=A|")), &out, &errOut)
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if out.Len() != 0 {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestProcessObfuscate(t *testing.T) {
	in := frame("35=0|49=ALICE|56=BOB|") + frame("35=0|49=ALICE|56=CAROL|")

	var out, errOut bytes.Buffer
	code := Process([]string{"-separator=pipe", "-colour=no", "-obfuscate"}, strings.NewReader(in), &out, &errOut)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, errOut.String())
	}

	want := "35=0|49=SenderCompID0001|56=TargetCompID0001|10=000\n" +
		"35=0|49=SenderCompID0001|56=TargetCompID0002|10=000\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
	if got := strings.Count(errOut.String(), "first use:"); got != 3 {
		t.Errorf("first use notices = %d, want 3", got)
	}
}

func TestProcessBadFlags(t *testing.T) {
	for _, args := range [][]string{
		{"-separator=tab"},
		{"-colour=maybe"},
		{"-log-level=chatty", "-colour=no"},
		{"-unknown"},
		{"-pipe=maybe"},
	} {
		var out, errOut bytes.Buffer
		if code := Process(args, strings.NewReader(""), &out, &errOut); code != 2 {
			t.Errorf("%v: exit code = %d, want 2", args, code)
		}
	}
}

func TestCatStreamHookError(t *testing.T) {
	orig := catStreamFunc
	catStreamFunc = func(io.Reader, *decoder.Renderer, CLIOptions) (int, error) {
		return 0, errors.New("boom")
	}
	defer func() { catStreamFunc = orig }()

	var out, errOut bytes.Buffer
	code := Process([]string{"-colour=no", "-"}, strings.NewReader(""), &out, &errOut)
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(errOut.String(), "Error decoding (stdin): boom") {
		t.Errorf("stderr = %q", errOut.String())
	}
}

func TestColourFlag(t *testing.T) {
	cases := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{"", true, false},
		{"yes", true, false},
		{"TRUE", true, false},
		{"no", false, false},
		{"false", false, false},
		{"sometimes", false, true},
	}

	for _, c := range cases {
		var f colourFlag
		err := f.Set(c.in)
		if (err != nil) != c.wantErr {
			t.Errorf("Set(%q) error = %v", c.in, err)
			continue
		}
		if !f.isSet {
			t.Errorf("Set(%q) did not mark flag as set", c.in)
		}
		if err == nil && f.value != c.want {
			t.Errorf("Set(%q) = %v, want %v", c.in, f.value, c.want)
		}
	}
}

func TestSeparatorFlag(t *testing.T) {
	var s separatorFlag
	if err := s.Set("pipe"); err != nil || s.String() != "pipe" {
		t.Fatalf("Set(pipe): %v, %q", err, s.String())
	}
	if err := s.Set("soh"); err != nil || s.String() != "soh" {
		t.Fatalf("Set(soh): %v, %q", err, s.String())
	}
	if err := s.Set("comma"); err == nil {
		t.Fatal("expected error for unknown separator")
	}
}

func TestPipeShorthand(t *testing.T) {
	opts, err := parseFlagsArgs([]string{"-pipe", "a.fix"}, io.Discard)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if opts.Separator.value != '|' || len(opts.Files) != 1 {
		t.Errorf("opts = %+v", opts)
	}

	var out, errOut bytes.Buffer
	code := Process([]string{"-pipe", "-colour=no"}, strings.NewReader(frame("35=0|")), &out, &errOut)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, errOut.String())
	}
	if out.String() != "35=0|10=000\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestErrorKind(t *testing.T) {
	_, err := catStream(strings.NewReader("8=FIX.4.4|9=x|"), decoder.NewRenderer(io.Discard, io.Discard, nil), CLIOptions{Separator: separatorFlag{value: '|'}, MaxBodyLength: 100})
	if got := errorKind(err); got != "parse error" {
		t.Errorf("errorKind(%v) = %q", err, got)
	}
	if got := errorKind(errors.New("disk")); got != "io" {
		t.Errorf("errorKind = %q, want io", got)
	}
}
