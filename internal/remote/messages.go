package remote

import (
	"github.com/muurk/orbis-ime/internal/imedialog"
)

// KeyMessage is one key event. Code is the HID usage code of an editing key;
// Char is the text it produced. A Char of several characters expands into
// one character key per rune, and Code goes with the first of them.
type KeyMessage struct {
	Code uint16 `json:"code,omitempty"`
	Char string `json:"char,omitempty"`
}

// FrameMessage is the client's input for one frame
type FrameMessage struct {
	Keys   []KeyMessage `json:"keys,omitempty"`
	Paste  *string      `json:"paste,omitempty"`
	Submit bool         `json:"submit,omitempty"`
	Cancel bool         `json:"cancel,omitempty"`
}

// Keycodes flattens the frame's keys into controller key events
func (f *FrameMessage) Keycodes() []imedialog.Keycode {
	keys := make([]imedialog.Keycode, 0, len(f.Keys))
	for _, k := range f.Keys {
		if k.Char == "" {
			keys = append(keys, imedialog.Keycode{Code: k.Code})
			continue
		}
		expanded := imedialog.KeysForText(k.Char)
		expanded[0].Code = k.Code
		keys = append(keys, expanded...)
	}
	return keys
}

// Input builds the controller frame drawing into w
func (f *FrameMessage) Input(w imedialog.Widget) *imedialog.Input {
	return &imedialog.Input{
		KeyEvents:    f.Keycodes(),
		PastedText:   f.Paste,
		SubmitAction: f.Submit,
		CancelAction: f.Cancel,
		Target:       w,
	}
}

// ViewMessage is what the server sends after every frame. Cursor is a byte
// offset into Text.
type ViewMessage struct {
	State       string         `json:"state"`
	Title       string         `json:"title,omitempty"`
	Placeholder string         `json:"placeholder,omitempty"`
	Text        string         `json:"text"`
	Cursor      int            `json:"cursor"`
	EnterLabel  string         `json:"enter_label,omitempty"`
	Result      *ResultMessage `json:"result,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// ResultMessage is the finished dialog's result record
type ResultMessage struct {
	End       string   `json:"end"`
	Text      string   `json:"text,omitempty"`
	OrbisText []uint16 `json:"orbis_text,omitempty"`
}

// PresetInfo describes one preset in the /presets listing
type PresetInfo struct {
	Name          string `json:"name"`
	Title         string `json:"title,omitempty"`
	MaxTextLength uint32 `json:"max_text_length"`
	MultiLine     bool   `json:"multi_line"`
	Numeric       bool   `json:"numeric"`
	EnterLabel    string `json:"enter_label"`
}

func newView(state imedialog.State, result imedialog.Result, w *imedialog.WidgetState, label imedialog.EnterLabel) ViewMessage {
	v := ViewMessage{
		State:       state.String(),
		Title:       w.Title,
		Placeholder: w.Placeholder,
		Text:        w.Text,
		Cursor:      w.Cursor,
		EnterLabel:  label.Text(),
	}
	if state.Terminal() {
		v.Result = &ResultMessage{
			End:       result.EndStatus.String(),
			Text:      result.Text,
			OrbisText: result.OrbisText,
		}
	}
	return v
}
