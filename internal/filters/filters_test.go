package filters

import (
	"errors"
	"slices"
	"testing"

	"github.com/muurk/orbis-ime/internal/imedialog"
)

var singleLine = imedialog.Mode{}

func TestTextFilters(t *testing.T) {
	tests := []struct {
		name        string
		filter      imedialog.TextFilter
		mode        imedialog.Mode
		input       string
		wantText    string
		wantVerdict imedialog.TextVerdict
	}{
		{"deny words hit", DenyWords("bad"), singleLine, "this is BAD", "", imedialog.TextReject},
		{"deny words miss", DenyWords("bad", "worse"), singleLine, "this is fine", "", imedialog.TextAccept},
		{"deny words ignores blanks", DenyWords(" ", ""), singleLine, "anything", "", imedialog.TextAccept},
		{"digits only accepts", DigitsOnly, singleLine, "0123", "", imedialog.TextAccept},
		{"digits only empty", DigitsOnly, singleLine, "", "", imedialog.TextAccept},
		{"digits only rejects", DigitsOnly, singleLine, "12a", "", imedialog.TextReject},
		{"trim space replaces", TrimSpace, singleLine, "  hi \n", "hi", imedialog.TextReplace},
		{"trim space untouched", TrimSpace, singleLine, "hi", "", imedialog.TextAccept},
		{"upper replaces", Upper, singleLine, "quiet", "QUIET", imedialog.TextReplace},
		{"upper untouched", Upper, singleLine, "LOUD 123", "", imedialog.TextAccept},
		{"max lines within", MaxLines(2), imedialog.Mode{MultiLine: true}, "a\nb", "", imedialog.TextAccept},
		{"max lines over", MaxLines(2), imedialog.Mode{MultiLine: true}, "a\nb\nc", "", imedialog.TextReject},
		{"max lines single-line", MaxLines(1), singleLine, "a\nb", "", imedialog.TextAccept},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, verdict := tt.filter(tt.input, tt.mode)
			if verdict != tt.wantVerdict {
				t.Errorf("verdict = %v, want %v", verdict, tt.wantVerdict)
			}
			if text != tt.wantText {
				t.Errorf("text = %q, want %q", text, tt.wantText)
			}
		})
	}
}

func TestKeyboardFilters(t *testing.T) {
	tests := []struct {
		name       string
		filter     imedialog.KeyboardFilter
		key        imedialog.Keycode
		wantChar   rune
		wantStatus imedialog.KeyStatus
	}{
		{"reject runes hit", RejectRunes("<>"), imedialog.Keycode{Character: '<'}, 0, imedialog.KeyRejected},
		{"reject runes miss", RejectRunes("<>"), imedialog.Keycode{Character: 'a'}, 'a', imedialog.KeyAccepted},
		{"reject runes ignores control keys", RejectRunes("<>"), imedialog.Keycode{Code: imedialog.KeyLeft}, 0, imedialog.KeyAccepted},
		{"upper keys", UpperKeys, imedialog.Keycode{Character: 'é'}, 'É', imedialog.KeyReplaced},
		{"upper keys digits", UpperKeys, imedialog.Keycode{Character: '1'}, '1', imedialog.KeyAccepted},
		{"submit on tab code", SubmitOnTab, imedialog.Keycode{Code: imedialog.KeyTab}, 0, imedialog.KeySubmit},
		{"submit on tab char", SubmitOnTab, imedialog.Keycode{Character: '\t'}, 0, imedialog.KeySubmit},
		{"submit on tab other", SubmitOnTab, imedialog.Keycode{Character: 'x'}, 'x', imedialog.KeyAccepted},
		{"cancel on", CancelOn("~"), imedialog.Keycode{Character: '~'}, 0, imedialog.KeyCancel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			char, status := tt.filter(tt.key)
			if status != tt.wantStatus {
				t.Errorf("status = %v, want %v", status, tt.wantStatus)
			}
			if char != tt.wantChar {
				t.Errorf("char = %q, want %q", char, tt.wantChar)
			}
		})
	}
}

func TestChainText(t *testing.T) {
	chain := ChainText(TrimSpace, Upper, DenyWords("STOP"))

	text, verdict := chain("  go ", singleLine)
	if verdict != imedialog.TextReplace || text != "GO" {
		t.Errorf("chain(go) = %q, %v, want GO, replace", text, verdict)
	}

	if _, verdict := chain(" stop ", singleLine); verdict != imedialog.TextReject {
		t.Errorf("chain(stop) verdict = %v, want reject", verdict)
	}

	if text, verdict := chain("OK", singleLine); verdict != imedialog.TextAccept || text != "" {
		t.Errorf("chain(OK) = %q, %v, want accept", text, verdict)
	}
}

func TestChainKeys(t *testing.T) {
	chain := ChainKeys(UpperKeys, RejectRunes("Q"), SubmitOnTab)

	tests := []struct {
		key        imedialog.Keycode
		wantChar   rune
		wantStatus imedialog.KeyStatus
	}{
		{imedialog.Keycode{Character: 'a'}, 'A', imedialog.KeyReplaced},
		{imedialog.Keycode{Character: 'B'}, 'B', imedialog.KeyAccepted},
		{imedialog.Keycode{Character: 'q'}, 0, imedialog.KeyRejected},
		{imedialog.Keycode{Code: imedialog.KeyTab}, 0, imedialog.KeySubmit},
	}
	for _, tt := range tests {
		char, status := chain(tt.key)
		if char != tt.wantChar || status != tt.wantStatus {
			t.Errorf("chain(%+v) = %q, %v, want %q, %v", tt.key, char, status, tt.wantChar, tt.wantStatus)
		}
	}
}

func TestBuildByName(t *testing.T) {
	tests := []struct {
		name    string
		text    []Spec
		keys    []Spec
		wantErr error
	}{
		{name: "empty"},
		{
			name: "all built-ins",
			text: []Spec{{Name: "deny_words", Args: []string{"x"}}, {Name: "trim_space"}, {Name: "max_lines", Args: []string{"3"}}},
			keys: []Spec{{Name: "reject_runes", Args: []string{"<", ">"}}, {Name: "submit_on_tab"}, {Name: "cancel_on", Args: []string{"~"}}},
		},
		{name: "unknown text", text: []Spec{{Name: "rot13"}}, wantErr: ErrUnknownFilter},
		{name: "unknown key", keys: []Spec{{Name: "dvorak"}}, wantErr: ErrUnknownFilter},
		{name: "missing words", text: []Spec{{Name: "deny_words"}}, wantErr: ErrBadArgs},
		{name: "bad line count", text: []Spec{{Name: "max_lines", Args: []string{"zero"}}}, wantErr: ErrBadArgs},
		{name: "unexpected args", text: []Spec{{Name: "upper", Args: []string{"now"}}}, wantErr: ErrBadArgs},
		{name: "unexpected key args", keys: []Spec{{Name: "upper_keys", Args: []string{"a"}}}, wantErr: ErrBadArgs},
		{name: "missing runes", keys: []Spec{{Name: "reject_runes"}}, wantErr: ErrBadArgs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tf, terr := BuildText(tt.text)
			kf, kerr := BuildKeyboard(tt.keys)
			err := errors.Join(terr, kerr)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error = %v", err)
			}
			if (tf == nil) != (len(tt.text) == 0) {
				t.Errorf("text filter nil = %v with %d specs", tf == nil, len(tt.text))
			}
			if (kf == nil) != (len(tt.keys) == 0) {
				t.Errorf("keyboard filter nil = %v with %d specs", kf == nil, len(tt.keys))
			}
		})
	}
}

func TestNames(t *testing.T) {
	text := TextFilterNames()
	if !slices.IsSorted(text) || !slices.Contains(text, "deny_words") {
		t.Errorf("TextFilterNames() = %v", text)
	}
	keys := KeyboardFilterNames()
	if !slices.IsSorted(keys) || !slices.Contains(keys, "submit_on_tab") {
		t.Errorf("KeyboardFilterNames() = %v", keys)
	}
}

func TestSpecString(t *testing.T) {
	if got := (Spec{Name: "upper"}).String(); got != "upper" {
		t.Errorf("String() = %q", got)
	}
	if got := (Spec{Name: "deny_words", Args: []string{"a", "b"}}).String(); got != "deny_words(a, b)" {
		t.Errorf("String() = %q", got)
	}
}

// Built filters plug straight into a dialog
func TestFiltersInDialog(t *testing.T) {
	tf, err := BuildText([]Spec{{Name: "trim_space"}, {Name: "deny_words", Args: []string{"bad"}}})
	if err != nil {
		t.Fatalf("BuildText() error = %v", err)
	}
	kf, err := BuildKeyboard([]Spec{{Name: "submit_on_tab"}})
	if err != nil {
		t.Fatalf("BuildKeyboard() error = %v", err)
	}

	s, err := imedialog.NewSession(&imedialog.Config{MaxTextLength: 32, TextFilter: tf, KeyboardFilter: kf})
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	c := imedialog.NewController(s)
	defer c.Close()

	keys := append(imedialog.KeysForText("  hello  "), imedialog.Keycode{Code: imedialog.KeyTab})
	c.Draw(&imedialog.Input{KeyEvents: keys})

	state, res := c.Poll()
	if state != imedialog.StateConfirmed || res.Text != "hello" {
		t.Errorf("Poll() = %v %q, want confirmed hello", state, res.Text)
	}
}
