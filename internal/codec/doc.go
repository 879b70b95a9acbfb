// Package codec converts dialog text between the Orbis representation and
// the host representation.
//
// Orbis text is held as fixed-width 16-bit code units (UTF-16 in the byte
// order named by the session's encoding). The host side, where widgets edit
// and render text, uses UTF-8. Conversion runs through golang.org/x/text
// transformers resolved from an IANA encoding name:
//
//	c := codec.New("UTF-16LE")
//	n, err := c.OrbisToHost(units, buf)
//
// # Lazy Establishment
//
// Each direction has its own context, created on first use. Establishment
// fails with ErrUnavailable when the encoding name is unknown, registered but
// unsupported, or not a BOM-less 16-bit layout. The failure is sticky: the
// Codec never retries, so a session that hit it reports ErrUnavailable for
// every later conversion.
//
// # Per-Call Failures
//
// ErrMalformed (unpaired surrogate, invalid UTF-8) and ErrShortBuffer (the
// destination is too small) are per-call. The destination is unspecified
// after either one; callers convert into scratch space and copy on success.
package codec
