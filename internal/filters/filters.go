package filters

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/muurk/orbis-ime/internal/imedialog"
)

// ErrUnknownFilter is returned for a filter name with no built-in
var ErrUnknownFilter = errors.New("unknown filter")

// ErrBadArgs is returned when a filter's arguments cannot be used
var ErrBadArgs = errors.New("bad filter arguments")

// Spec names one filter and its arguments
type Spec struct {
	Name string   `yaml:"name" json:"name"`
	Args []string `yaml:"args,omitempty" json:"args,omitempty"`
}

func (s Spec) String() string {
	if len(s.Args) == 0 {
		return s.Name
	}
	return s.Name + "(" + strings.Join(s.Args, ", ") + ")"
}

type textFactory func(args []string) (imedialog.TextFilter, error)

type keyFactory func(args []string) (imedialog.KeyboardFilter, error)

var textFilters = map[string]textFactory{
	"deny_words":  denyWordsFactory,
	"digits_only": noArgs(DigitsOnly),
	"trim_space":  noArgs(TrimSpace),
	"upper":       noArgs(Upper),
	"max_lines":   maxLinesFactory,
}

var keyFilters = map[string]keyFactory{
	"reject_runes":  rejectRunesFactory,
	"upper_keys":    noKeyArgs(UpperKeys),
	"submit_on_tab": noKeyArgs(SubmitOnTab),
	"cancel_on":     cancelOnFactory,
}

// TextFilterNames returns the built-in text filter names, sorted
func TextFilterNames() []string {
	return sortedKeys(textFilters)
}

// KeyboardFilterNames returns the built-in keyboard filter names, sorted
func KeyboardFilterNames() []string {
	return sortedKeys(keyFilters)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// TextFilterByName builds one built-in text filter
func TextFilterByName(spec Spec) (imedialog.TextFilter, error) {
	factory, ok := textFilters[spec.Name]
	if !ok {
		return nil, fmt.Errorf("%w: text filter %q", ErrUnknownFilter, spec.Name)
	}
	f, err := factory(spec.Args)
	if err != nil {
		return nil, fmt.Errorf("text filter %s: %w", spec, err)
	}
	return f, nil
}

// KeyboardFilterByName builds one built-in keyboard filter
func KeyboardFilterByName(spec Spec) (imedialog.KeyboardFilter, error) {
	factory, ok := keyFilters[spec.Name]
	if !ok {
		return nil, fmt.Errorf("%w: keyboard filter %q", ErrUnknownFilter, spec.Name)
	}
	f, err := factory(spec.Args)
	if err != nil {
		return nil, fmt.Errorf("keyboard filter %s: %w", spec, err)
	}
	return f, nil
}

// BuildText resolves specs into a single chained text filter. An empty list
// yields nil, meaning no filter.
func BuildText(specs []Spec) (imedialog.TextFilter, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	chain := make([]imedialog.TextFilter, 0, len(specs))
	for _, spec := range specs {
		f, err := TextFilterByName(spec)
		if err != nil {
			return nil, err
		}
		chain = append(chain, f)
	}
	return ChainText(chain...), nil
}

// BuildKeyboard resolves specs into a single chained keyboard filter. An
// empty list yields nil.
func BuildKeyboard(specs []Spec) (imedialog.KeyboardFilter, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	chain := make([]imedialog.KeyboardFilter, 0, len(specs))
	for _, spec := range specs {
		f, err := KeyboardFilterByName(spec)
		if err != nil {
			return nil, err
		}
		chain = append(chain, f)
	}
	return ChainKeys(chain...), nil
}

// ChainText runs filters in order. Each one sees the text as replaced by
// the filters before it.
func ChainText(filters ...imedialog.TextFilter) imedialog.TextFilter {
	if len(filters) == 1 {
		return filters[0]
	}
	return func(text string, mode imedialog.Mode) (string, imedialog.TextVerdict) {
		replaced := false
		for _, f := range filters {
			out, verdict := f(text, mode)
			switch verdict {
			case imedialog.TextAccept:
			case imedialog.TextReplace:
				text, replaced = out, true
			default:
				return "", verdict
			}
		}
		if replaced {
			return text, imedialog.TextReplace
		}
		return "", imedialog.TextAccept
	}
}

// ChainKeys runs keyboard filters in order. A replacement is passed on as the
// next filter's input character.
func ChainKeys(filters ...imedialog.KeyboardFilter) imedialog.KeyboardFilter {
	if len(filters) == 1 {
		return filters[0]
	}
	return func(src imedialog.Keycode) (rune, imedialog.KeyStatus) {
		status := imedialog.KeyAccepted
		for _, f := range filters {
			out, st := f(src)
			switch st {
			case imedialog.KeyAccepted:
			case imedialog.KeyReplaced:
				src.Character, status = out, imedialog.KeyReplaced
			default:
				return out, st
			}
		}
		return src.Character, status
	}
}

func noArgs(f imedialog.TextFilter) textFactory {
	return func(args []string) (imedialog.TextFilter, error) {
		if len(args) > 0 {
			return nil, fmt.Errorf("%w: takes no arguments", ErrBadArgs)
		}
		return f, nil
	}
}

func noKeyArgs(f imedialog.KeyboardFilter) keyFactory {
	return func(args []string) (imedialog.KeyboardFilter, error) {
		if len(args) > 0 {
			return nil, fmt.Errorf("%w: takes no arguments", ErrBadArgs)
		}
		return f, nil
	}
}

// DenyWords rejects text containing any of words, ignoring case
func DenyWords(words ...string) imedialog.TextFilter {
	lowered := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			lowered = append(lowered, strings.ToLower(w))
		}
	}
	return func(text string, _ imedialog.Mode) (string, imedialog.TextVerdict) {
		lower := strings.ToLower(text)
		for _, w := range lowered {
			if strings.Contains(lower, w) {
				return "", imedialog.TextReject
			}
		}
		return "", imedialog.TextAccept
	}
}

func denyWordsFactory(args []string) (imedialog.TextFilter, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: needs at least one word", ErrBadArgs)
	}
	return DenyWords(args...), nil
}

// DigitsOnly rejects text containing anything but decimal digits
func DigitsOnly(text string, _ imedialog.Mode) (string, imedialog.TextVerdict) {
	for _, r := range text {
		if r < '0' || r > '9' {
			return "", imedialog.TextReject
		}
	}
	return "", imedialog.TextAccept
}

// TrimSpace strips leading and trailing white space
func TrimSpace(text string, _ imedialog.Mode) (string, imedialog.TextVerdict) {
	trimmed := strings.TrimSpace(text)
	if trimmed == text {
		return "", imedialog.TextAccept
	}
	return trimmed, imedialog.TextReplace
}

// Upper converts the text to upper case
func Upper(text string, _ imedialog.Mode) (string, imedialog.TextVerdict) {
	upper := strings.ToUpper(text)
	if upper == text {
		return "", imedialog.TextAccept
	}
	return upper, imedialog.TextReplace
}

// MaxLines rejects multi-line text with more than n lines
func MaxLines(n int) imedialog.TextFilter {
	return func(text string, mode imedialog.Mode) (string, imedialog.TextVerdict) {
		if mode.MultiLine && strings.Count(text, "\n")+1 > n {
			return "", imedialog.TextReject
		}
		return "", imedialog.TextAccept
	}
}

func maxLinesFactory(args []string) (imedialog.TextFilter, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: needs a line count", ErrBadArgs)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return nil, fmt.Errorf("%w: line count %q", ErrBadArgs, args[0])
	}
	return MaxLines(n), nil
}

// RejectRunes drops any key producing one of the characters in set
func RejectRunes(set string) imedialog.KeyboardFilter {
	return func(src imedialog.Keycode) (rune, imedialog.KeyStatus) {
		if src.Character != 0 && strings.ContainsRune(set, src.Character) {
			return 0, imedialog.KeyRejected
		}
		return src.Character, imedialog.KeyAccepted
	}
}

func rejectRunesFactory(args []string) (imedialog.KeyboardFilter, error) {
	set := strings.Join(args, "")
	if set == "" {
		return nil, fmt.Errorf("%w: needs characters to reject", ErrBadArgs)
	}
	return RejectRunes(set), nil
}

// UpperKeys replaces lower case letters with their upper case form
func UpperKeys(src imedialog.Keycode) (rune, imedialog.KeyStatus) {
	if unicode.IsLower(src.Character) {
		return unicode.ToUpper(src.Character), imedialog.KeyReplaced
	}
	return src.Character, imedialog.KeyAccepted
}

// SubmitOnTab turns the tab key into the commit action
func SubmitOnTab(src imedialog.Keycode) (rune, imedialog.KeyStatus) {
	if src.Code == imedialog.KeyTab || src.Character == '\t' {
		return 0, imedialog.KeySubmit
	}
	return src.Character, imedialog.KeyAccepted
}

// CancelOn turns any key producing one of the characters in set into the
// cancel action
func CancelOn(set string) imedialog.KeyboardFilter {
	return func(src imedialog.Keycode) (rune, imedialog.KeyStatus) {
		if src.Character != 0 && strings.ContainsRune(set, src.Character) {
			return 0, imedialog.KeyCancel
		}
		return src.Character, imedialog.KeyAccepted
	}
}

func cancelOnFactory(args []string) (imedialog.KeyboardFilter, error) {
	set := strings.Join(args, "")
	if set == "" {
		return nil, fmt.Errorf("%w: needs characters to cancel on", ErrBadArgs)
	}
	return CancelOn(set), nil
}
