// Package host runs an IME dialog in the terminal with Bubble Tea.
//
// The Model feeds key presses into an imedialog.Controller once per frame
// and renders the widget the controller draws. Editing keys go to the
// controller as key events so keyboard filters see them; ctrl+s triggers the
// submit action and ctrl+c the cancel action. Bracketed paste edits the
// text directly.
//
// Run wires the Model into a tea.Program and polls the controller from a
// second goroutine, the way an owning actor would.
package host
