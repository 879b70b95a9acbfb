package imedialog

// Frame is the rendering host's view of one frame, handed to Controller.Draw.
type Frame interface {
	// Keys returns the key events entered since the previous frame
	Keys() []Keycode
	// Paste returns the widget text after a direct edit by the host, such as
	// a paste. ok is false when the widget text was not edited this frame.
	Paste() (text string, ok bool)
	// Submit reports whether the confirm action was triggered this frame
	Submit() bool
	// Cancel reports whether the cancel action was triggered this frame
	Cancel() bool
	// Widget returns the editable widget the controller draws into
	Widget() Widget
}

// Widget is the host's text editing widget.
type Widget interface {
	SetTitle(title string)
	SetPlaceholder(placeholder string)
	// SetText sets the text shown; cursor is a byte offset into text
	SetText(text string, cursor int)
}

// WidgetState is a plain Widget that records what the controller drew
type WidgetState struct {
	Title       string
	Placeholder string
	Text        string
	Cursor      int
}

// SetTitle implements Widget
func (w *WidgetState) SetTitle(title string) { w.Title = title }

// SetPlaceholder implements Widget
func (w *WidgetState) SetPlaceholder(placeholder string) { w.Placeholder = placeholder }

// SetText implements Widget
func (w *WidgetState) SetText(text string, cursor int) {
	w.Text = text
	w.Cursor = cursor
}

// Input is a Frame assembled by a host from its own event source
type Input struct {
	KeyEvents    []Keycode
	PastedText   *string
	SubmitAction bool
	CancelAction bool
	Target       Widget
}

// Keys implements Frame
func (in *Input) Keys() []Keycode { return in.KeyEvents }

// Paste implements Frame
func (in *Input) Paste() (string, bool) {
	if in.PastedText == nil {
		return "", false
	}
	return *in.PastedText, true
}

// Submit implements Frame
func (in *Input) Submit() bool { return in.SubmitAction }

// Cancel implements Frame
func (in *Input) Cancel() bool { return in.CancelAction }

// Widget implements Frame
func (in *Input) Widget() Widget {
	if in.Target == nil {
		in.Target = &WidgetState{}
	}
	return in.Target
}

// KeysForText returns one character key event per rune of s
func KeysForText(s string) []Keycode {
	keys := make([]Keycode, 0, len(s))
	for _, r := range s {
		keys = append(keys, Keycode{Code: KeyNone, Character: r})
	}
	return keys
}
