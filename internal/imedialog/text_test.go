package imedialog

import (
	"testing"
	"unicode/utf16"
)

func TestCodeUnits(t *testing.T) {
	tests := []struct {
		s    string
		want int
	}{
		{"", 0},
		{"abc", 3},
		{"é", 1},
		{"日本", 2},
		{"🎮", 2},
		{"a🎮b", 4},
		{"\xffabc", 4},
	}
	for _, tt := range tests {
		if got := CodeUnits(tt.s); got != tt.want {
			t.Errorf("CodeUnits(%q) = %d, want %d", tt.s, got, tt.want)
		}
	}
}

func TestClampHost(t *testing.T) {
	tests := []struct {
		text      string
		limit     int
		wantBytes int
		wantUnits int
		truncated bool
	}{
		{"hello", 10, 5, 5, false},
		{"hello", 5, 5, 5, false},
		{"hello", 3, 3, 3, true},
		{"日本語", 2, 6, 2, true},
		{"a🎮", 2, 1, 1, true},
		{"a🎮", 3, 5, 3, false},
		{"🎮", 1, 0, 0, true},
		{"", 0, 0, 0, false},
	}
	for _, tt := range tests {
		n, units, truncated := clampHost([]byte(tt.text), tt.limit)
		if n != tt.wantBytes || units != tt.wantUnits || truncated != tt.truncated {
			t.Errorf("clampHost(%q, %d) = %d, %d, %v, want %d, %d, %v",
				tt.text, tt.limit, n, units, truncated, tt.wantBytes, tt.wantUnits, tt.truncated)
		}
	}
}

func TestClampBytes(t *testing.T) {
	tests := []struct {
		text      string
		limit     int
		want      int
		truncated bool
	}{
		{"abc", 3, 3, false},
		{"abcd", 3, 3, true},
		{"aé", 2, 1, true},
		{"日本", 5, 3, true},
		{"🎮x", 3, 0, true},
	}
	for _, tt := range tests {
		n, truncated := clampBytes([]byte(tt.text), tt.limit)
		if n != tt.want || truncated != tt.truncated {
			t.Errorf("clampBytes(%q, %d) = %d, %v, want %d, %v",
				tt.text, tt.limit, n, truncated, tt.want, tt.truncated)
		}
	}
}

func TestBoundaries(t *testing.T) {
	// a, high, low, b
	units := utf16.Encode([]rune("a🎮b"))

	tests := []struct {
		pos             int
		align, prev, nx int
	}{
		{0, 0, 0, 1},
		{1, 1, 0, 3},
		{2, 3, 1, 4},
		{3, 3, 1, 4},
		{4, 4, 3, 4},
		{-1, 0, 0, 1},
		{10, 4, 3, 4},
	}
	for _, tt := range tests {
		if got := alignBoundary(units, tt.pos); got != tt.align {
			t.Errorf("alignBoundary(%d) = %d, want %d", tt.pos, got, tt.align)
		}
		if got := prevBoundary(units, tt.pos); got != tt.prev {
			t.Errorf("prevBoundary(%d) = %d, want %d", tt.pos, got, tt.prev)
		}
		if got := nextBoundary(units, tt.pos); got != tt.nx {
			t.Errorf("nextBoundary(%d) = %d, want %d", tt.pos, got, tt.nx)
		}
	}
}

func TestHostOffsetUnits(t *testing.T) {
	tests := []struct {
		units []uint16
		want  int
	}{
		{nil, 0},
		{utf16.Encode([]rune("abc")), 3},
		{utf16.Encode([]rune("é日")), 5},
		{utf16.Encode([]rune("🎮")), 4},
		{[]uint16{0xD800}, 3},
		{[]uint16{'a', 0xDC00}, 4},
	}
	for _, tt := range tests {
		if got := hostOffset(tt.units); got != tt.want {
			t.Errorf("hostOffset(%v) = %d, want %d", tt.units, got, tt.want)
		}
	}
}

func TestIsNumericRune(t *testing.T) {
	for _, r := range "0123456789.,-+" {
		if !isNumericRune(r) {
			t.Errorf("isNumericRune(%q) = false", r)
		}
	}
	for _, r := range "aZ e٣" {
		if isNumericRune(r) {
			t.Errorf("isNumericRune(%q) = true", r)
		}
	}
}

func TestFilterForMode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		mode Mode
		want string
	}{
		{name: "free text untouched", in: "héllo, 世界", want: "héllo, 世界"},
		{name: "single-line strips breaks", in: "a\nb\r\nc\rd", want: "abcd"},
		{name: "multi-line normalizes breaks", in: "a\r\nb\rc", mode: Mode{MultiLine: true}, want: "a\nb\nc"},
		{name: "numeric keeps digits and signs", in: "-1,5e3+", mode: Mode{Numeric: true}, want: "-1,53+"},
		{name: "numeric drops line breaks", in: "1\n2", mode: Mode{Numeric: true}, want: "12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := filterForMode(tt.in, tt.mode); got != tt.want {
				t.Errorf("filterForMode(%q, %+v) = %q, want %q", tt.in, tt.mode, got, tt.want)
			}
		})
	}
}
