package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// DefaultEncoding is the IANA name of the Orbis text encoding.
const DefaultEncoding = "UTF-16LE"

var (
	// ErrUnavailable is returned when the conversion context for a direction
	// cannot be established. It is permanent for the Codec.
	ErrUnavailable = errors.New("codec unavailable")

	// ErrMalformed is returned when the source text is not valid in its encoding
	ErrMalformed = errors.New("malformed input")

	// ErrShortBuffer is returned when the destination cannot hold the converted text
	ErrShortBuffer = errors.New("destination too small")
)

// Direction identifies one of the two conversion contexts.
type Direction int

const (
	// ToHost converts Orbis code units to host UTF-8
	ToHost Direction = iota
	// ToOrbis converts host UTF-8 to Orbis code units
	ToOrbis
)

// String returns a human-readable direction name
func (d Direction) String() string {
	switch d {
	case ToHost:
		return "orbis->host"
	case ToOrbis:
		return "host->orbis"
	default:
		return fmt.Sprintf("Direction(%d)", d)
	}
}

// Codec converts between the fixed-width Orbis representation ([]uint16) and
// the variable-width host representation (UTF-8 bytes).
//
// The two conversion contexts are established lazily on first use and reused
// afterwards. A failed establishment is remembered and every later call fails
// with ErrUnavailable without retrying.
//
// A Codec is not safe for concurrent use.
type Codec struct {
	name  string
	enc   encoding.Encoding
	order binary.ByteOrder

	toHost  *encoding.Decoder
	toOrbis *encoding.Encoder

	err     error
	scratch []byte
}

// New returns a Codec for the named native encoding. Nothing is resolved
// until the first conversion. An empty name selects DefaultEncoding.
func New(name string) *Codec {
	if name == "" {
		name = DefaultEncoding
	}
	return &Codec{name: name}
}

// Name returns the configured encoding name
func (c *Codec) Name() string {
	return c.name
}

// Established reports whether the context for dir is ready
func (c *Codec) Established(dir Direction) bool {
	switch dir {
	case ToHost:
		return c.toHost != nil
	case ToOrbis:
		return c.toOrbis != nil
	}
	return false
}

// Err returns the sticky establishment error, if any
func (c *Codec) Err() error {
	return c.err
}

// Release drops both contexts. The Codec is unusable afterwards.
func (c *Codec) Release() {
	c.toHost = nil
	c.toOrbis = nil
	c.enc = nil
	c.scratch = nil
	c.err = fmt.Errorf("%w: codec released", ErrUnavailable)
}

// OrbisToHost converts src into dst and returns the number of bytes written.
// On error the contents of dst are unspecified.
func (c *Codec) OrbisToHost(src []uint16, dst []byte) (int, error) {
	if err := c.establish(ToHost); err != nil {
		return 0, err
	}
	if i := unpairedSurrogate(src); i >= 0 {
		return 0, fmt.Errorf("%w: unpaired surrogate at unit %d", ErrMalformed, i)
	}

	raw := c.grow(2 * len(src))
	for i, u := range src {
		c.order.PutUint16(raw[2*i:], u)
	}

	c.toHost.Reset()
	nDst, nSrc, err := c.toHost.Transform(dst, raw, true)
	if err != nil {
		return 0, classify(err)
	}
	if nSrc != len(raw) {
		return 0, ErrShortBuffer
	}
	return nDst, nil
}

// HostToOrbis converts src into dst and returns the number of code units
// written. On error the contents of dst are unspecified.
func (c *Codec) HostToOrbis(src []byte, dst []uint16) (int, error) {
	if err := c.establish(ToOrbis); err != nil {
		return 0, err
	}
	if !utf8.Valid(src) {
		return 0, fmt.Errorf("%w: invalid UTF-8", ErrMalformed)
	}

	raw := c.grow(2 * len(dst))
	c.toOrbis.Reset()
	nDst, nSrc, err := c.toOrbis.Transform(raw, src, true)
	if err != nil {
		return 0, classify(err)
	}
	if nSrc != len(src) {
		return 0, ErrShortBuffer
	}
	if nDst%2 != 0 {
		return 0, fmt.Errorf("%w: odd output length %d", ErrMalformed, nDst)
	}

	n := nDst / 2
	for i := 0; i < n; i++ {
		dst[i] = c.order.Uint16(raw[2*i:])
	}
	return n, nil
}

func (c *Codec) establish(dir Direction) error {
	if c.err != nil {
		return c.err
	}
	if c.Established(dir) {
		return nil
	}
	if c.enc == nil {
		if err := c.resolve(); err != nil {
			c.err = err
			return err
		}
	}

	switch dir {
	case ToHost:
		c.toHost = c.enc.NewDecoder()
	case ToOrbis:
		c.toOrbis = c.enc.NewEncoder()
	default:
		return fmt.Errorf("%w: unknown direction %v", ErrUnavailable, dir)
	}
	return nil
}

// resolve looks the encoding up by IANA name and checks that it produces
// BOM-less 16-bit code units, which is the only layout the Orbis buffer holds.
func (c *Codec) resolve() error {
	enc, err := ianaindex.IANA.Encoding(c.name)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, c.name, err)
	}
	if enc == nil {
		return fmt.Errorf("%w: %s is registered but not supported", ErrUnavailable, c.name)
	}

	probe, err := enc.NewEncoder().Bytes([]byte("A"))
	if err != nil {
		return fmt.Errorf("%w: %s: probe failed: %v", ErrUnavailable, c.name, err)
	}

	// Session capacity is counted in UTF-16 units, so only 16-bit encodings resolve
	switch {
	case len(probe) == 2 && probe[0] == 'A' && probe[1] == 0:
		c.order = binary.LittleEndian
	case len(probe) == 2 && probe[0] == 0 && probe[1] == 'A':
		c.order = binary.BigEndian
	default:
		return fmt.Errorf("%w: %s is not a fixed-width 16-bit encoding", ErrUnavailable, c.name)
	}

	c.enc = enc
	return nil
}

func (c *Codec) grow(n int) []byte {
	if cap(c.scratch) < n {
		c.scratch = make([]byte, n)
	}
	return c.scratch[:n]
}

func classify(err error) error {
	if errors.Is(err, transform.ErrShortDst) {
		return ErrShortBuffer
	}
	return fmt.Errorf("%w: %v", ErrMalformed, err)
}

// unpairedSurrogate returns the index of the first surrogate half that is not
// part of a valid pair, or -1.
func unpairedSurrogate(units []uint16) int {
	for i := 0; i < len(units); i++ {
		u := rune(units[i])
		if !utf16.IsSurrogate(u) {
			continue
		}
		if u >= 0xDC00 || i+1 >= len(units) {
			return i
		}
		next := rune(units[i+1])
		if next < 0xDC00 || next > 0xDFFF {
			return i
		}
		i++
	}
	return -1
}
