package imedialog

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/muurk/orbis-ime/internal/logging"
)

// State is the dialog status observed by the owning actor
type State int

const (
	StateNotStarted State = iota
	StateRunning
	StateConfirmed
	StateCancelled
	StateAborted
)

// String returns a short state name
func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateRunning:
		return "running"
	case StateConfirmed:
		return "confirmed"
	case StateCancelled:
		return "cancelled"
	case StateAborted:
		return "aborted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminal reports whether the state is absorbing
func (s State) Terminal() bool {
	return s == StateConfirmed || s == StateCancelled || s == StateAborted
}

// EndStatus records how a finished dialog ended
type EndStatus int

const (
	EndNone EndStatus = iota
	EndOK
	EndCancelled
	EndAborted
)

// String returns a short end status name
func (e EndStatus) String() string {
	switch e {
	case EndNone:
		return "none"
	case EndOK:
		return "ok"
	case EndCancelled:
		return "cancelled"
	case EndAborted:
		return "aborted"
	default:
		return fmt.Sprintf("EndStatus(%d)", int(e))
	}
}

// Result is the record written when the dialog finishes. Text is only set
// for EndOK.
type Result struct {
	EndStatus EndStatus
	Text      string
	OrbisText []uint16
}

func (r Result) clone() Result {
	if r.OrbisText != nil {
		r.OrbisText = append([]uint16(nil), r.OrbisText...)
	}
	return r
}

// Observer receives controller events. Calls are made with the controller
// lock held and must not call back into the controller.
type Observer interface {
	DialogOpened()
	KeyProcessed(status KeyStatus)
	FilterRejected(filter string)
	ConversionFailed(err error)
	DialogFinished(end EndStatus)
}

type nopObserver struct{}

func (nopObserver) DialogOpened() {}
func (nopObserver) KeyProcessed(KeyStatus) {}
func (nopObserver) FilterRejected(string) {}
func (nopObserver) ConversionFailed(error) {}
func (nopObserver) DialogFinished(EndStatus) {}

// Option configures a Controller
type Option func(*Controller)

// WithObserver installs an event observer
func WithObserver(o Observer) Option {
	return func(c *Controller) {
		if o != nil {
			c.observer = o
		}
	}
}

// Controller drives a Session from a per-frame rendering loop while the
// owning actor polls for completion.
//
// Every exported method takes the same mutex. Draw holds it for the whole
// frame, so Poll never observes a half-written result and Close never frees
// the session under a frame in flight.
type Controller struct {
	mu sync.Mutex

	session     Session
	state       State
	result      Result
	firstRender bool
	cursor      int
	closed      bool

	observer Observer
}

// NewController takes ownership of s; s is left as an inert placeholder.
func NewController(s *Session, opts ...Option) *Controller {
	c := &Controller{
		firstRender: true,
		observer:    nopObserver{},
	}
	c.session.MoveFrom(s)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Poll returns the current state and a copy of the result record
func (c *Controller) Poll() (State, Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.result.clone()
}

// Abort forces a dialog that has not finished into StateAborted
func (c *Controller) Abort() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.state.Terminal() {
		return
	}
	c.finish(StateAborted, Result{EndStatus: EndAborted})
}

// Close releases the session. It waits for an in-flight Draw to return;
// Draw calls made afterwards do nothing.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.session.Free()
	c.closed = true
	logging.Debug("IME dialog controller closed", zap.String("state", c.state.String()))
}

// Draw runs one frame: seed the widget on the first call, apply host edits
// and key events, re-sync the display and handle commit or cancel.
func (c *Controller) Draw(frame Frame) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || !c.session.Live() {
		return
	}
	widget := frame.Widget()

	if c.state.Terminal() {
		c.render(widget)
		return
	}

	if c.firstRender {
		c.seed(widget)
		c.firstRender = false
	}

	if text, ok := frame.Paste(); ok {
		c.applyEdit(text)
	}

	// Keys typed this frame land before the frame's own submit or cancel
	var submit, cancel bool
	for _, key := range frame.Keys() {
		if submit || cancel {
			break
		}
		res := c.session.CallKeyboardFilter(key)
		c.observer.KeyProcessed(res.Status)
		logging.LogKeystroke(c.session.cfg.UserID, key.Code, key.Character, res.Status.String())

		switch res.Status {
		case KeyRejected, KeyMoveFocus:
			continue
		case KeySubmit:
			submit = true
			continue
		case KeyCancel:
			cancel = true
			continue
		}
		c.applyKey(res, &submit, &cancel)
	}
	submit = submit || frame.Submit()
	cancel = cancel || frame.Cancel()

	if c.session.InputChanged() {
		if err := c.session.SyncDisplay(); err != nil {
			c.conversionFailed("SyncDisplay", err)
		}
	}

	switch {
	case cancel:
		c.finish(StateCancelled, Result{EndStatus: EndCancelled})
	case submit:
		c.commit()
	}

	c.render(widget)
}

func (c *Controller) seed(w Widget) {
	w.SetTitle(c.session.Title())
	w.SetPlaceholder(c.session.Placeholder())

	if c.session.InputChanged() {
		if err := c.session.CopyTextToOrbisBuffer(); err != nil {
			c.conversionFailed("CopyTextToOrbisBuffer", err)
		}
	}
	c.cursor = c.session.Len()
	c.state = StateRunning
	c.observer.DialogOpened()
	logging.LogDialogEvent(c.session.cfg.UserID, "opened",
		zap.Int("max_text_length", c.session.Capacity()),
		zap.Bool("multi_line", c.session.cfg.MultiLine),
	)
}

// applyEdit takes a wholesale text change made by the host widget (paste,
// composition commit) and pushes it into the Orbis buffer. Runes the dialog
// mode does not allow are dropped, the same as when typed.
func (c *Controller) applyEdit(text string) {
	text = filterForMode(text, c.session.Mode())
	if err := c.session.SetDisplayText(text); err != nil {
		c.conversionFailed("SetDisplayText", err)
		return
	}
	if err := c.session.CopyTextToOrbisBuffer(); err != nil {
		c.conversionFailed("CopyTextToOrbisBuffer", err)
		return
	}
	c.cursor = c.session.Len()
}

func (c *Controller) applyKey(res KeyResult, submit, cancel *bool) {
	// A replacement character stands in for the key, editing keys included
	if res.Status == KeyReplaced && res.Character != 0 {
		c.insert(res.Character)
		return
	}

	switch res.Code {
	case KeyBackspace:
		c.cursor, _ = c.session.DeleteBefore(c.cursor)
	case KeyDelete:
		c.session.DeleteAt(c.cursor)
	case KeyLeft:
		c.cursor = c.session.PrevBoundary(c.cursor)
	case KeyRight:
		c.cursor = c.session.NextBoundary(c.cursor)
	case KeyHome:
		c.cursor = 0
	case KeyEnd:
		c.cursor = c.session.Len()
	case KeyEscape:
		*cancel = true
	case KeyEnter:
		if c.session.cfg.MultiLine {
			c.insert('\n')
		} else {
			*submit = true
		}
	default:
		if res.Character != 0 {
			c.insert(res.Character)
		}
	}
}

func (c *Controller) insert(r rune) {
	r, ok := modeRune(r, c.session.Mode())
	if !ok {
		return
	}

	pos, err := c.session.InsertAt(c.cursor, r)
	if err != nil {
		// Overflowing keystrokes are dropped whole; the text stays at capacity
		logging.Debug("Character dropped",
			zap.String("char", string(r)),
			zap.Error(err),
		)
		return
	}
	c.cursor = pos
}

func (c *Controller) commit() {
	if err := c.session.CallTextFilter(); err != nil {
		if IsFilterRejected(err) {
			c.observer.FilterRejected("text")
			logging.Debug("Commit rejected by text filter", zap.Error(err))
		} else {
			c.conversionFailed("CallTextFilter", err)
		}
		return
	}

	text, err := c.session.Text()
	if err != nil {
		c.conversionFailed("Text", err)
		return
	}
	if c.cursor > c.session.Len() {
		c.cursor = c.session.Len()
	}

	c.finish(StateConfirmed, Result{
		EndStatus: EndOK,
		Text:      text,
		OrbisText: c.session.OrbisText(),
	})
}

func (c *Controller) finish(state State, result Result) {
	c.state = state
	c.result = result
	c.observer.DialogFinished(result.EndStatus)
	logging.LogDialogEvent(c.session.cfg.UserID, state.String(),
		zap.Int("length", len(result.OrbisText)),
	)
}

func (c *Controller) conversionFailed(op string, err error) {
	c.observer.ConversionFailed(err)
	logging.Warn("Dialog text conversion failed",
		zap.String("op", op),
		zap.String("kind", KindOf(err).String()),
		zap.Error(err),
	)
}

func (c *Controller) render(w Widget) {
	w.SetText(c.session.DisplayText(), c.session.HostOffset(c.cursor))
}
