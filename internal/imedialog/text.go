package imedialog

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// CodeUnits returns the number of Orbis code units s encodes to, the unit
// MaxTextLength is measured in.
func CodeUnits(s string) int {
	return orbisLen(s)
}

// orbisLen returns the number of Orbis code units s encodes to
func orbisLen(s string) int {
	n := 0
	for _, r := range s {
		n += runeUnits(r)
	}
	return n
}

// runeUnits returns how many code units r takes, counting invalid runes as
// one replacement unit.
func runeUnits(r rune) int {
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	return 1
}

// clampHost returns the longest prefix of text, in bytes, whose Orbis length
// fits in limit code units. It never cuts inside a UTF-8 sequence or between
// the halves of a surrogate pair. units is the Orbis length of the prefix.
func clampHost(text []byte, limit int) (n, units int, truncated bool) {
	for n < len(text) {
		r, size := utf8.DecodeRune(text[n:])
		u := runeUnits(r)
		if units+u > limit {
			return n, units, true
		}
		units += u
		n += size
	}
	return n, units, false
}

// clampBytes returns the longest prefix of valid UTF-8 text that fits in
// limit bytes without cutting a sequence.
func clampBytes(text []byte, limit int) (n int, truncated bool) {
	if len(text) <= limit {
		return len(text), false
	}
	n = limit
	for n > 0 && !utf8.RuneStart(text[n]) {
		n--
	}
	return n, true
}

func isHighSurrogate(u uint16) bool {
	return u >= 0xD800 && u < 0xDC00
}

func isLowSurrogate(u uint16) bool {
	return u >= 0xDC00 && u < 0xE000
}

// alignBoundary moves pos forward so it never points at the low half of a
// surrogate pair.
func alignBoundary(units []uint16, pos int) int {
	if pos <= 0 {
		return 0
	}
	if pos >= len(units) {
		return len(units)
	}
	if isLowSurrogate(units[pos]) && isHighSurrogate(units[pos-1]) {
		return pos + 1
	}
	return pos
}

// prevBoundary returns the start of the character before pos
func prevBoundary(units []uint16, pos int) int {
	pos = alignBoundary(units, pos)
	if pos == 0 {
		return 0
	}
	if pos >= 2 && isLowSurrogate(units[pos-1]) && isHighSurrogate(units[pos-2]) {
		return pos - 2
	}
	return pos - 1
}

// nextBoundary returns the end of the character at pos
func nextBoundary(units []uint16, pos int) int {
	pos = alignBoundary(units, pos)
	if pos >= len(units) {
		return len(units)
	}
	if pos+1 < len(units) && isHighSurrogate(units[pos]) && isLowSurrogate(units[pos+1]) {
		return pos + 2
	}
	return pos + 1
}

// hostOffset returns the UTF-8 byte length of units, which is the display
// buffer offset matching an Orbis cursor position.
func hostOffset(units []uint16) int {
	n := 0
	for i := 0; i < len(units); i++ {
		u := units[i]
		if i+1 < len(units) && isHighSurrogate(u) && isLowSurrogate(units[i+1]) {
			n += 4
			i++
			continue
		}
		r := rune(u)
		if utf16.IsSurrogate(r) {
			r = utf8.RuneError
		}
		n += utf8.RuneLen(r)
	}
	return n
}

// isNumericRune reports whether r may be typed into a numeric dialog
func isNumericRune(r rune) bool {
	switch {
	case r >= '0' && r <= '9':
		return true
	case r == '.', r == ',', r == '-', r == '+':
		return true
	}
	return false
}

// modeRune maps r to what a dialog in mode stores, reporting false when the
// dialog cannot hold it. CR becomes LF.
func modeRune(r rune, mode Mode) (rune, bool) {
	if r == '\r' {
		r = '\n'
	}
	if r == '\n' && !mode.MultiLine {
		return r, false
	}
	if mode.Numeric && !isNumericRune(r) {
		return r, false
	}
	return r, true
}

// filterForMode applies modeRune to every rune of s, dropping the ones the
// dialog cannot hold. CR LF counts as a single line break.
func filterForMode(s string, mode Mode) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Map(func(r rune) rune {
		if r, ok := modeRune(r, mode); ok {
			return r
		}
		return -1
	}, s)
}
