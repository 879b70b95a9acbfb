// Package imedialog implements the Orbis on-screen text-entry dialog.
//
// A dialog is made of two layers:
//
//   - Session owns the configuration, the Orbis text buffer (fixed-width
//     16-bit code units), the UTF-8 display buffer and the filter callbacks.
//     It has no knowledge of any rendering host.
//   - Controller wraps a Session with a status and result record and exposes
//     Draw, the entry point a rendering host calls once per frame.
//
// # Lifecycle
//
// The owning actor builds a Session, hands it to a Controller, and polls:
//
//	s, err := imedialog.NewSession(&imedialog.Config{MaxTextLength: 64})
//	if err != nil {
//	    return err
//	}
//	ctrl := imedialog.NewController(s)
//	defer ctrl.Close()
//
//	// rendering goroutine
//	ctrl.Draw(frame)
//
//	// owning goroutine
//	state, result := ctrl.Poll()
//
// States move NotStarted -> Running -> Confirmed, Cancelled or Aborted. The
// last three are absorbing; further Draw calls only re-render.
//
// # Buffers
//
// The Orbis buffer never holds more than MaxTextLength code units. Overlong
// input is cut at a character boundary, never between the halves of a
// surrogate pair, or refused with ErrCapacityExceeded when the config asks
// for OverflowReject. Conversions go through package codec; a codec that
// cannot be established makes every conversion fail with ErrCodecUnavailable
// for the rest of the session.
//
// # Filters
//
// TextFilter runs on commit and may accept, replace or reject the text.
// KeyboardFilter runs on every key event and may accept, replace, reject or
// turn the key into a submit, cancel or focus action. Both are optional.
//
// # Thread Safety
//
// Session is not safe for concurrent use. Controller serializes Draw, Poll,
// Abort and Close on one mutex.
package imedialog
