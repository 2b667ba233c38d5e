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
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/stephenlclarke/fixcat/decoder"
	"github.com/stephenlclarke/fixcat/fix"
	"go.uber.org/zap"
)

var catStreamFunc = catStream

// catFiles decodes each input in turn. "-" reads stdin. A failure stops the
// current input only; the exit code is 1 if any input failed.
func catFiles(paths []string, stdin io.Reader, out, errOut io.Writer, opts CLIOptions, obfuscator *fix.Obfuscator, logger *zap.Logger) int {
	hadError := false
	renderer := decoder.NewRenderer(out, errOut, obfuscator)

	for _, path := range paths {
		var (
			r   io.Reader
			c   io.Closer // nil when reading stdin
			err error
		)

		if path == "-" {
			r = stdin
		} else {
			var f *os.File
			f, err = os.Open(path)
			if err != nil {
				fmt.Fprintln(errOut, decoder.ColourError+"Cannot open file: "+err.Error()+decoder.ColourReset)
				hadError = true
				continue
			}

			r, c = f, f // will close after streaming
		}

		n, err := catStreamFunc(r, renderer, opts)
		if err != nil {
			fmt.Fprintln(errOut, decoder.ColourError+"Error decoding "+displayName(path)+": "+err.Error()+decoder.ColourReset)
			logger.Debug("decode failed",
				zap.String("input", displayName(path)),
				zap.Int("messages", n),
				zap.String("kind", errorKind(err)),
				zap.Error(err))
			hadError = true
		} else {
			logger.Debug("input done", zap.String("input", displayName(path)), zap.Int("messages", n))
		}

		if c != nil {
			c.Close()
		}
	}

	if hadError {
		return 1
	}

	return 0
}

// catStream renders every message of in and returns how many were decoded.
func catStream(in io.Reader, renderer *decoder.Renderer, opts CLIOptions) (int, error) {
	dec := decoder.NewDecoder(in,
		decoder.WithSeparator(opts.Separator.value),
		decoder.WithMaxBodyLength(opts.MaxBodyLength))

	n := 0
	for {
		msg, err := dec.Next()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("message %d at offset %d: %w", n+1, dec.Offset(), err)
		}

		if err := renderer.Render(msg); err != nil {
			return n, err
		}
		n++
	}
}

func displayName(path string) string {
	if path == "-" {
		return "(stdin)"
	}
	return path
}

func errorKind(err error) string {
	for _, kind := range []error{
		fix.ErrMalformedField,
		fix.ErrUnexpectedTag,
		fix.ErrParse,
		fix.ErrEncoding,
		fix.ErrTruncated,
	} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return "io"
}
