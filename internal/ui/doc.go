// Package ui provides styled terminal output for the orbis-ime CLI.
//
// Components follow a "render once" pattern: a Header introduces a
// long-running command and a Result box reports how it ended. A Printer
// renders both to any io.Writer at the current terminal width, which is
// read through golang.org/x/term and clamped to a readable range.
//
// The palette defined here is shared with the interactive dialog host.
//
// Zap logging stays silent unless ORBIS_IME_LOG_LEVEL is set, so the
// curated output is not interleaved with log lines.
package ui
