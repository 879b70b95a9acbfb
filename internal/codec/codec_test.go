package codec

import (
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		encoding string
		text     string
	}{
		{"ascii little endian", "UTF-16LE", "hello world"},
		{"ascii big endian", "UTF-16BE", "hello world"},
		{"empty", "", ""},
		{"latin accents", "UTF-16LE", "café déjà vu"},
		{"cjk", "UTF-16LE", "日本語の入力"},
		{"supplementary plane", "UTF-16LE", "go 🎮 play 𝄞"},
		{"newlines", "UTF-16BE", "line one\nline two"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.encoding)
			orbis := utf16.Encode([]rune(tt.text))

			host := make([]byte, len(orbis)*4+1)
			n, err := c.OrbisToHost(orbis, host)
			require.NoError(t, err)
			assert.Equal(t, tt.text, string(host[:n]))

			back := make([]uint16, len(orbis))
			m, err := c.HostToOrbis(host[:n], back)
			require.NoError(t, err)
			assert.Equal(t, orbis, back[:m])
		})
	}
}

func TestNewDefaultsEncoding(t *testing.T) {
	assert.Equal(t, DefaultEncoding, New("").Name())
}

func TestLazyEstablishment(t *testing.T) {
	c := New("UTF-16LE")
	assert.False(t, c.Established(ToHost))
	assert.False(t, c.Established(ToOrbis))

	_, err := c.OrbisToHost([]uint16{'a'}, make([]byte, 8))
	require.NoError(t, err)
	assert.True(t, c.Established(ToHost))
	assert.False(t, c.Established(ToOrbis), "host->orbis must stay unestablished until used")

	_, err = c.HostToOrbis([]byte("a"), make([]uint16, 4))
	require.NoError(t, err)
	assert.True(t, c.Established(ToOrbis))
}

func TestUnavailableIsSticky(t *testing.T) {
	tests := []struct {
		name     string
		encoding string
	}{
		{"unknown name", "X-NOT-AN-ENCODING"},
		{"single byte encoding", "ISO-8859-1"},
		{"utf-8 is not fixed width", "UTF-8"},
		{"utf-32 is wider than the Orbis buffer", "UTF-32"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.encoding)

			_, err := c.HostToOrbis([]byte("abc"), make([]uint16, 8))
			require.ErrorIs(t, err, ErrUnavailable)

			_, err = c.OrbisToHost([]uint16{'a'}, make([]byte, 8))
			require.ErrorIs(t, err, ErrUnavailable)
			assert.ErrorIs(t, c.Err(), ErrUnavailable)
			assert.False(t, c.Established(ToHost))
		})
	}
}

func TestMalformedInput(t *testing.T) {
	c := New("UTF-16LE")

	_, err := c.OrbisToHost([]uint16{'a', 0xD800}, make([]byte, 16))
	assert.ErrorIs(t, err, ErrMalformed, "trailing high surrogate")

	_, err = c.OrbisToHost([]uint16{0xDC00, 'a'}, make([]byte, 16))
	assert.ErrorIs(t, err, ErrMalformed, "leading low surrogate")

	_, err = c.OrbisToHost([]uint16{0xD800, 'a'}, make([]byte, 16))
	assert.ErrorIs(t, err, ErrMalformed, "high surrogate followed by BMP unit")

	_, err = c.HostToOrbis([]byte{'a', 0xFF, 'b'}, make([]uint16, 8))
	assert.ErrorIs(t, err, ErrMalformed, "invalid UTF-8")

	// Per-call failures do not poison the codec
	n, err := c.OrbisToHost([]uint16{'o', 'k'}, make([]byte, 8))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, c.Err())
}

func TestShortDestination(t *testing.T) {
	c := New("UTF-16LE")

	_, err := c.OrbisToHost(utf16.Encode([]rune("hello")), make([]byte, 3))
	assert.ErrorIs(t, err, ErrShortBuffer)

	_, err = c.HostToOrbis([]byte("hello"), make([]uint16, 2))
	assert.ErrorIs(t, err, ErrShortBuffer)
}

func TestRelease(t *testing.T) {
	c := New("UTF-16LE")
	_, err := c.OrbisToHost([]uint16{'a'}, make([]byte, 4))
	require.NoError(t, err)

	c.Release()
	assert.False(t, c.Established(ToHost))

	_, err = c.OrbisToHost([]uint16{'a'}, make([]byte, 4))
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestUnpairedSurrogate(t *testing.T) {
	tests := []struct {
		name  string
		units []uint16
		want  int
	}{
		{"none", []uint16{'a', 'b'}, -1},
		{"valid pair", []uint16{0xD83C, 0xDFAE}, -1},
		{"lone high at end", []uint16{'a', 0xD83C}, 1},
		{"lone low", []uint16{0xDFAE}, 0},
		{"two highs", []uint16{0xD83C, 0xD83C, 0xDFAE}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, unpairedSurrogate(tt.units))
		})
	}
}
