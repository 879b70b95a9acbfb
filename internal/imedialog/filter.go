package imedialog

import "fmt"

// Key codes for the editing keys the controller understands. Values follow
// the USB HID usage table, which is what Orbis keyboards report.
const (
	KeyNone      uint16 = 0x00
	KeyEnter     uint16 = 0x28
	KeyEscape    uint16 = 0x29
	KeyBackspace uint16 = 0x2A
	KeyTab       uint16 = 0x2B
	KeyHome      uint16 = 0x4A
	KeyDelete    uint16 = 0x4C
	KeyEnd       uint16 = 0x4D
	KeyRight     uint16 = 0x4F
	KeyLeft      uint16 = 0x50
)

// Keycode is one key event from the frame's input snapshot
type Keycode struct {
	Code      uint16 // HID usage code, KeyNone for plain character input
	Character rune   // character produced by the key, 0 if none
}

// KeyStatus is the outcome of the keyboard filter for one key event
type KeyStatus int

const (
	// KeyAccepted applies the key unchanged
	KeyAccepted KeyStatus = iota
	// KeyReplaced applies the key with the filter's character
	KeyReplaced
	// KeyRejected drops the key
	KeyRejected
	// KeySubmit drops the key and triggers the commit action
	KeySubmit
	// KeyCancel drops the key and triggers the cancel action
	KeyCancel
	// KeyMoveFocus drops the key; focus handling belongs to the host
	KeyMoveFocus
)

// String returns a short status name
func (s KeyStatus) String() string {
	switch s {
	case KeyAccepted:
		return "accepted"
	case KeyReplaced:
		return "replaced"
	case KeyRejected:
		return "rejected"
	case KeySubmit:
		return "submit"
	case KeyCancel:
		return "cancel"
	case KeyMoveFocus:
		return "move_focus"
	default:
		return fmt.Sprintf("KeyStatus(%d)", int(s))
	}
}

// KeyResult is what CallKeyboardFilter hands back to the caller
type KeyResult struct {
	Code      uint16
	Character rune
	Status    KeyStatus
}

// KeyboardFilter inspects one key event and returns the character to apply
// together with a status. The character is only used with KeyReplaced.
type KeyboardFilter func(src Keycode) (out rune, status KeyStatus)

// TextVerdict is the outcome of a text filter
type TextVerdict int

const (
	// TextAccept keeps the text as is
	TextAccept TextVerdict = iota
	// TextReplace swaps the text for the filter's output
	TextReplace
	// TextReject refuses the text; the dialog is not committed
	TextReject
)

// String returns a short verdict name
func (v TextVerdict) String() string {
	switch v {
	case TextAccept:
		return "accept"
	case TextReplace:
		return "replace"
	case TextReject:
		return "reject"
	default:
		return fmt.Sprintf("TextVerdict(%d)", int(v))
	}
}

// TextFilter inspects the whole text on commit. The returned string is only
// used with TextReplace.
type TextFilter func(text string, mode Mode) (string, TextVerdict)
