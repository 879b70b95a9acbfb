package imedialog

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/muurk/orbis-ime/internal/codec"
	"github.com/muurk/orbis-ime/internal/logging"
)

// noCopy trips go vet's copylocks check. A Session owns its buffers and
// conversion contexts and must be moved with MoveFrom or Take.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Session holds one dialog configuration and its live text buffers.
//
// The Orbis buffer holds MaxTextLength fixed-width code units. The display
// buffer holds the same text in UTF-8, sized for the worst case of four bytes
// per code unit plus a terminator. After every successful sync the two
// decode to the same string.
//
// The zero value is an inert placeholder usable as a move target. A Session
// is not safe for concurrent use; Controller provides the locking.
type Session struct {
	_ noCopy

	cfg Config

	orbis    []uint16
	orbisLen int
	display  []byte
	dispLen  int

	// scratch space so a failed conversion never touches the live buffers
	orbisScratch []uint16
	hostScratch  []byte

	title       string
	placeholder string

	inputChanged bool
	codec        *codec.Codec
}

// NewSession allocates a session for cfg. A nil cfg yields an inert
// placeholder. Configuration problems are reported here, never later.
func NewSession(cfg *Config) (*Session, error) {
	if cfg == nil {
		return &Session{}, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	capacity := int(cfg.MaxTextLength)
	s := &Session{
		cfg:          *cfg,
		orbis:        make([]uint16, capacity),
		display:      make([]byte, capacity*4+1),
		orbisScratch: make([]uint16, capacity),
		hostScratch:  make([]byte, capacity*4+1),
		title:        strings.Clone(cfg.Title),
		placeholder:  strings.Clone(cfg.Placeholder),
		codec:        codec.New(cfg.Encoding),
	}
	s.cfg.Title = s.title
	s.cfg.Placeholder = s.placeholder

	if cfg.InitialText != "" {
		if err := s.SetDisplayText(cfg.InitialText); err != nil {
			s.Free()
			return nil, err
		}
	}

	logging.Debug("IME dialog session created",
		zap.Int32("user_id", cfg.UserID),
		zap.Int("max_text_length", capacity),
		zap.Bool("multi_line", cfg.MultiLine),
		zap.Bool("numeric", cfg.Mode().Numeric),
		zap.String("encoding", s.codec.Name()),
	)
	return s, nil
}

// Live reports whether the session owns buffers (false for the placeholder)
func (s *Session) Live() bool {
	return s.orbis != nil
}

// MoveFrom transfers everything src owns into s, releasing whatever s held
// before. src is left as an inert placeholder.
func (s *Session) MoveFrom(src *Session) {
	if s == src || src == nil {
		return
	}
	s.Free()

	s.cfg = src.cfg
	s.orbis, s.orbisLen = src.orbis, src.orbisLen
	s.display, s.dispLen = src.display, src.dispLen
	s.orbisScratch, s.hostScratch = src.orbisScratch, src.hostScratch
	s.title, s.placeholder = src.title, src.placeholder
	s.inputChanged = src.inputChanged
	s.codec = src.codec

	*src = Session{}
}

// Take moves the session into a new value and returns it
func (s *Session) Take() *Session {
	dst := &Session{}
	dst.MoveFrom(s)
	return dst
}

// Free releases buffers, strings and conversion contexts. The session
// becomes an inert placeholder. Calling Free twice is safe.
func (s *Session) Free() {
	if s.codec != nil {
		s.codec.Release()
	}
	*s = Session{}
}

// Config returns a copy of the session configuration
func (s *Session) Config() Config {
	return s.cfg
}

// Mode returns the filter mode of the dialog
func (s *Session) Mode() Mode {
	return s.cfg.Mode()
}

// Title returns the dialog title, possibly empty
func (s *Session) Title() string {
	return s.title
}

// Placeholder returns the placeholder shown for empty text
func (s *Session) Placeholder() string {
	return s.placeholder
}

// Capacity returns MaxTextLength in code units
func (s *Session) Capacity() int {
	return len(s.orbis)
}

// Len returns the current text length in Orbis code units
func (s *Session) Len() int {
	return s.orbisLen
}

// InputChanged reports whether the buffers were edited since the last sync
func (s *Session) InputChanged() bool {
	return s.inputChanged
}

// OrbisText returns a copy of the Orbis buffer content
func (s *Session) OrbisText() []uint16 {
	out := make([]uint16, s.orbisLen)
	copy(out, s.orbis[:s.orbisLen])
	return out
}

// DisplayText returns the display buffer content
func (s *Session) DisplayText() string {
	return string(s.display[:s.dispLen])
}

// Text decodes the Orbis buffer through the session codec
func (s *Session) Text() (string, error) {
	if !s.Live() {
		return "", nil
	}
	n, err := s.ConvertOrbisToHost(s.orbis[:s.orbisLen], s.hostScratch)
	if err != nil {
		return "", err
	}
	return string(s.hostScratch[:n]), nil
}

// ConvertOrbisToHost converts Orbis code units to UTF-8. The first call
// establishes the conversion context. On error dst is unspecified.
func (s *Session) ConvertOrbisToHost(src []uint16, dst []byte) (int, error) {
	const op = "ConvertOrbisToHost"
	if s.codec == nil {
		return 0, newError(KindCodecUnavailable, op, "session is not initialized", nil)
	}
	n, err := s.codec.OrbisToHost(src, dst)
	if err != nil {
		return 0, conversionError(op, err)
	}
	return n, nil
}

// ConvertHostToOrbis converts UTF-8 to Orbis code units. The first call
// establishes the conversion context. On error dst is unspecified.
func (s *Session) ConvertHostToOrbis(src []byte, dst []uint16) (int, error) {
	const op = "ConvertHostToOrbis"
	if s.codec == nil {
		return 0, newError(KindCodecUnavailable, op, "session is not initialized", nil)
	}
	n, err := s.codec.HostToOrbis(src, dst)
	if err != nil {
		return 0, conversionError(op, err)
	}
	return n, nil
}

func conversionError(op string, err error) error {
	if errors.Is(err, codec.ErrUnavailable) {
		return newError(KindCodecUnavailable, op, "conversion context could not be established", err)
	}
	return newError(KindConversionFailed, op, "text conversion failed", err)
}

// CopyTextToOrbisBuffer converts the display buffer into the Orbis buffer.
//
// Text longer than MaxTextLength is cut at the last whole character that fits
// (OverflowTruncate) or refused (OverflowReject). When even the first
// character does not fit the result is ErrCapacityExceeded regardless of
// policy. Both buffers are left untouched on error.
func (s *Session) CopyTextToOrbisBuffer() error {
	const op = "CopyTextToOrbisBuffer"
	if !s.Live() {
		return newError(KindCodecUnavailable, op, "session is not initialized", nil)
	}

	host := s.display[:s.dispLen]
	// clampHost counts UTF-16 units, valid because codec only resolves 16-bit encodings
	n, _, truncated := clampHost(host, s.Capacity())
	if truncated {
		if n == 0 || s.cfg.Overflow == OverflowReject {
			return newError(KindCapacityExceeded, op,
				fmt.Sprintf("text does not fit in %d code units", s.Capacity()), nil)
		}
	}

	units, err := s.ConvertHostToOrbis(host[:n], s.orbisScratch)
	if err != nil {
		return err
	}

	s.storeOrbis(s.orbisScratch[:units])
	if truncated {
		logging.Debug("Display text truncated to capacity",
			zap.Int("bytes_kept", n),
			zap.Int("bytes_dropped", s.dispLen-n),
			zap.Int("capacity", s.Capacity()),
		)
		s.storeDisplay(host[:n])
	}
	s.inputChanged = false
	return nil
}

// SyncDisplay re-encodes the Orbis buffer into the display buffer
func (s *Session) SyncDisplay() error {
	const op = "SyncDisplay"
	if !s.Live() {
		return newError(KindCodecUnavailable, op, "session is not initialized", nil)
	}

	n, err := s.ConvertOrbisToHost(s.orbis[:s.orbisLen], s.hostScratch[:len(s.hostScratch)-1])
	if err != nil {
		return err
	}
	s.storeDisplay(s.hostScratch[:n])
	s.inputChanged = false
	return nil
}

// SetDisplayText replaces the display text after a direct edit by the host
// widget. Like a widget's own buffer it is bounded by the display buffer size
// in bytes; the code unit limit is applied by the next CopyTextToOrbisBuffer.
func (s *Session) SetDisplayText(text string) error {
	const op = "SetDisplayText"
	if !s.Live() {
		return newError(KindCodecUnavailable, op, "session is not initialized", nil)
	}
	if !utf8.ValidString(text) {
		return newError(KindConversionFailed, op, "text is not valid UTF-8", nil)
	}

	b := []byte(text)
	n, truncated := clampBytes(b, len(s.display)-1)
	if truncated && s.cfg.Overflow == OverflowReject {
		return newError(KindCapacityExceeded, op,
			fmt.Sprintf("text does not fit in %d display bytes", len(s.display)-1), nil)
	}

	s.storeDisplay(b[:n])
	s.inputChanged = true
	return nil
}

// InsertAt inserts r at Orbis position pos and returns the position after it.
// A character that would push the text past MaxTextLength is refused whole.
func (s *Session) InsertAt(pos int, r rune) (int, error) {
	const op = "InsertAt"
	if !s.Live() {
		return pos, newError(KindCodecUnavailable, op, "session is not initialized", nil)
	}
	if r == 0 || !utf8.ValidRune(r) {
		return pos, newError(KindConversionFailed, op, fmt.Sprintf("invalid character %U", r), nil)
	}

	var buf [2]uint16
	units := utf16.AppendRune(buf[:0], r)
	if s.orbisLen+len(units) > s.Capacity() {
		return pos, newError(KindCapacityExceeded, op,
			fmt.Sprintf("character %U does not fit in %d code units", r, s.Capacity()), nil)
	}

	pos = alignBoundary(s.orbis[:s.orbisLen], pos)
	copy(s.orbis[pos+len(units):], s.orbis[pos:s.orbisLen])
	copy(s.orbis[pos:], units)
	s.orbisLen += len(units)
	s.inputChanged = true
	return pos + len(units), nil
}

// DeleteBefore removes the character before pos (backspace). It returns the
// new position and whether anything was removed.
func (s *Session) DeleteBefore(pos int) (int, bool) {
	text := s.orbis[:s.orbisLen]
	end := alignBoundary(text, pos)
	start := prevBoundary(text, end)
	if start == end {
		return end, false
	}
	s.remove(start, end)
	return start, true
}

// DeleteAt removes the character at pos (forward delete)
func (s *Session) DeleteAt(pos int) bool {
	text := s.orbis[:s.orbisLen]
	start := alignBoundary(text, pos)
	end := nextBoundary(text, start)
	if start == end {
		return false
	}
	s.remove(start, end)
	return true
}

// PrevBoundary returns the character boundary before pos
func (s *Session) PrevBoundary(pos int) int {
	return prevBoundary(s.orbis[:s.orbisLen], pos)
}

// NextBoundary returns the character boundary after pos
func (s *Session) NextBoundary(pos int) int {
	return nextBoundary(s.orbis[:s.orbisLen], pos)
}

// HostOffset maps an Orbis position to a byte offset in the display text
func (s *Session) HostOffset(pos int) int {
	pos = alignBoundary(s.orbis[:s.orbisLen], pos)
	return hostOffset(s.orbis[:pos])
}

// CallTextFilter runs the configured text filter over the current text.
//
// Without a filter it succeeds and does nothing. A rejecting filter yields
// ErrFilterRejected and leaves both buffers byte-identical. A replacement is
// converted in scratch space first and applied only when conversion succeeds.
func (s *Session) CallTextFilter() error {
	const op = "CallTextFilter"
	if s.cfg.TextFilter == nil {
		return nil
	}

	text, err := s.Text()
	if err != nil {
		return err
	}

	out, verdict := s.cfg.TextFilter(text, s.Mode())
	switch verdict {
	case TextAccept:
		return nil
	case TextReplace:
		return s.replaceText(op, out)
	case TextReject:
		return newError(KindFilterRejected, op, "text filter rejected input", nil)
	default:
		return newError(KindFilterRejected, op, fmt.Sprintf("text filter returned unknown verdict %v", verdict), nil)
	}
}

func (s *Session) replaceText(op, text string) error {
	if !utf8.ValidString(text) {
		return newError(KindConversionFailed, op, "replacement text is not valid UTF-8", nil)
	}

	b := []byte(text)
	n, _, truncated := clampHost(b, s.Capacity())
	if truncated && (n == 0 || s.cfg.Overflow == OverflowReject) {
		return newError(KindCapacityExceeded, op,
			fmt.Sprintf("replacement text does not fit in %d code units", s.Capacity()), nil)
	}

	units, err := s.ConvertHostToOrbis(b[:n], s.orbisScratch)
	if err != nil {
		return err
	}

	s.storeOrbis(s.orbisScratch[:units])
	s.storeDisplay(b[:n])
	s.inputChanged = false
	return nil
}

// CallKeyboardFilter runs the configured keyboard filter for one key event.
// Without a filter the key passes through with KeyAccepted. A filter that
// returns an unknown status or an invalid character is treated as rejecting
// the key. The buffers are never touched.
func (s *Session) CallKeyboardFilter(src Keycode) KeyResult {
	if s.cfg.KeyboardFilter == nil {
		return KeyResult{Code: src.Code, Character: src.Character, Status: KeyAccepted}
	}

	out, status := s.cfg.KeyboardFilter(src)
	switch status {
	case KeyAccepted:
		return KeyResult{Code: src.Code, Character: src.Character, Status: KeyAccepted}
	case KeyReplaced:
		if out != 0 && !utf8.ValidRune(out) {
			return KeyResult{Code: src.Code, Status: KeyRejected}
		}
		return KeyResult{Code: src.Code, Character: out, Status: KeyReplaced}
	case KeyRejected, KeySubmit, KeyCancel, KeyMoveFocus:
		return KeyResult{Code: src.Code, Character: src.Character, Status: status}
	default:
		return KeyResult{Code: src.Code, Status: KeyRejected}
	}
}

func (s *Session) storeOrbis(units []uint16) {
	n := copy(s.orbis, units)
	if n < s.orbisLen {
		clear(s.orbis[n:s.orbisLen])
	}
	s.orbisLen = n
}

func (s *Session) storeDisplay(b []byte) {
	n := copy(s.display[:len(s.display)-1], b)
	if n < s.dispLen {
		clear(s.display[n:s.dispLen])
	}
	s.dispLen = n
	s.display[n] = 0
}

func (s *Session) remove(start, end int) {
	copy(s.orbis[start:], s.orbis[end:s.orbisLen])
	newLen := s.orbisLen - (end - start)
	clear(s.orbis[newLen:s.orbisLen])
	s.orbisLen = newLen
	s.inputChanged = true
}
