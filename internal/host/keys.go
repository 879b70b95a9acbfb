package host

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/orbis-ime/internal/imedialog"
)

// keyMap defines the host's own bindings. Editing keys are not bound here;
// they go to the controller.
type keyMap struct {
	Submit  key.Binding
	Newline key.Binding
	Cancel  key.Binding
	Move    key.Binding
}

func newKeyMap(cfg *imedialog.Config) keyMap {
	label := strings.ToLower(cfg.EnterLabel.Text())
	submitHelp := "enter/ctrl+s"
	if cfg.MultiLine {
		submitHelp = "ctrl+s"
	}

	k := keyMap{
		Submit: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp(submitHelp, label),
		),
		Newline: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "new line"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("esc/ctrl+c", "cancel"),
		),
		Move: key.NewBinding(
			key.WithKeys("left", "right", "home", "end"),
			key.WithHelp("←/→", "move"),
		),
	}
	// Enter reaches the controller either way; the binding only drives help
	k.Newline.SetEnabled(cfg.MultiLine)
	return k
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Newline, k.Cancel, k.Move}
}

// FullHelp returns keybindings for the expanded help view
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.Newline, k.Cancel, k.Move},
	}
}

// translateKey turns a terminal key press into controller key events
func translateKey(msg tea.KeyMsg) []imedialog.Keycode {
	code := func(c uint16) []imedialog.Keycode {
		return []imedialog.Keycode{{Code: c}}
	}

	switch msg.Type {
	case tea.KeyRunes:
		keys := make([]imedialog.Keycode, 0, len(msg.Runes))
		for _, r := range msg.Runes {
			keys = append(keys, imedialog.Keycode{Character: r})
		}
		return keys
	case tea.KeySpace:
		return []imedialog.Keycode{{Character: ' '}}
	case tea.KeyEnter:
		return code(imedialog.KeyEnter)
	case tea.KeyEsc:
		return code(imedialog.KeyEscape)
	case tea.KeyBackspace:
		return code(imedialog.KeyBackspace)
	case tea.KeyDelete:
		return code(imedialog.KeyDelete)
	case tea.KeyTab:
		return code(imedialog.KeyTab)
	case tea.KeyLeft:
		return code(imedialog.KeyLeft)
	case tea.KeyRight:
		return code(imedialog.KeyRight)
	case tea.KeyHome:
		return code(imedialog.KeyHome)
	case tea.KeyEnd:
		return code(imedialog.KeyEnd)
	}
	return nil
}
