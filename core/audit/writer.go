// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package audit

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// isTerminal returns true if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd())
}

// ConsoleWriter returns a zerolog writer with NoColor set to !isTerminal(f).
func ConsoleWriter(f *os.File) io.Writer {
	noColor := !isTerminal(f)

	w := zerolog.ConsoleWriter{Out: f, NoColor: noColor, TimeFormat: time.DateTime}

	if !noColor {
		w.FormatPrepare = func(m map[string]any) error {
			// Pretty-print diagnostic events emitted by internal/diag.
			if sys, ok := m["sys"]; ok && sys == "diag" {
				m["message"] = fmt.Sprintf("[%s] %s", m["kind"], m["message"])
				delete(m, "sys")
				delete(m, "kind")
			}

			return nil
		}
	}

	return w
}
