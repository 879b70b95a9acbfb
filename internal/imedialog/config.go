package imedialog

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/multierr"
)

// Limits enforced by Config.Validate, in Orbis code units
const (
	MaxTextLength        = 2048
	MaxTitleLength       = 128
	MaxPlaceholderLength = 512
)

// Type is the dialog type tag. It selects the default keyboard layout on the
// guest and, for TypeNumber, implies numeric input.
type Type int

const (
	TypeDefault Type = iota
	TypeBasicLatin
	TypeURL
	TypeMail
	TypeNumber
)

var typeNames = map[Type]string{
	TypeDefault:    "default",
	TypeBasicLatin: "basic_latin",
	TypeURL:        "url",
	TypeMail:       "mail",
	TypeNumber:     "number",
}

// String returns the config name of the type
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType parses a config name such as "basic_latin". Empty means default.
func ParseType(s string) (Type, error) {
	if s == "" {
		return TypeDefault, nil
	}
	for t, name := range typeNames {
		if strings.EqualFold(name, s) {
			return t, nil
		}
	}
	return 0, newError(KindInvalidConfig, "ParseType", fmt.Sprintf("unknown dialog type %q", s), nil)
}

// EnterLabel selects the label shown on the confirm key
type EnterLabel int

const (
	EnterLabelDefault EnterLabel = iota
	EnterLabelSend
	EnterLabelSearch
	EnterLabelGo
)

var enterLabelNames = map[EnterLabel]string{
	EnterLabelDefault: "default",
	EnterLabelSend:    "send",
	EnterLabelSearch:  "search",
	EnterLabelGo:      "go",
}

// String returns the config name of the label
func (l EnterLabel) String() string {
	if name, ok := enterLabelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("EnterLabel(%d)", int(l))
}

// Text returns the label rendered on the confirm action
func (l EnterLabel) Text() string {
	switch l {
	case EnterLabelSend:
		return "Send"
	case EnterLabelSearch:
		return "Search"
	case EnterLabelGo:
		return "Go"
	default:
		return "OK"
	}
}

// ParseEnterLabel parses a config name such as "search". Empty means default.
func ParseEnterLabel(s string) (EnterLabel, error) {
	if s == "" {
		return EnterLabelDefault, nil
	}
	for l, name := range enterLabelNames {
		if strings.EqualFold(name, s) {
			return l, nil
		}
	}
	return 0, newError(KindInvalidConfig, "ParseEnterLabel", fmt.Sprintf("unknown enter label %q", s), nil)
}

// Overflow decides what happens when text would exceed MaxTextLength
type Overflow int

const (
	// OverflowTruncate cuts the text at the last character boundary that fits
	OverflowTruncate Overflow = iota
	// OverflowReject refuses the text with ErrCapacityExceeded
	OverflowReject
)

// String returns the config name of the policy
func (o Overflow) String() string {
	switch o {
	case OverflowTruncate:
		return "truncate"
	case OverflowReject:
		return "reject"
	default:
		return fmt.Sprintf("Overflow(%d)", int(o))
	}
}

// ParseOverflow parses "truncate" or "reject". Empty means truncate.
func ParseOverflow(s string) (Overflow, error) {
	switch strings.ToLower(s) {
	case "", "truncate":
		return OverflowTruncate, nil
	case "reject":
		return OverflowReject, nil
	}
	return 0, newError(KindInvalidConfig, "ParseOverflow", fmt.Sprintf("unknown overflow policy %q", s), nil)
}

// Mode is passed to text filters so they can tell numeric and multi-line
// dialogs apart.
type Mode struct {
	Numeric   bool
	MultiLine bool
}

// Config describes one dialog. It is copied into the Session at creation and
// never changes afterwards. Filter callbacks must stay valid for the lifetime
// of the controller that owns the session.
type Config struct {
	UserID     int32
	MultiLine  bool
	Numeric    bool
	Type       Type
	EnterLabel EnterLabel

	TextFilter     TextFilter     // optional
	KeyboardFilter KeyboardFilter // optional

	// MaxTextLength is the capacity in Orbis code units
	MaxTextLength uint32

	Title       string // optional
	Placeholder string // optional
	InitialText string // optional, seeded on the first frame

	Encoding string   // IANA name of the Orbis encoding; empty means UTF-16LE
	Overflow Overflow // what to do with over-length text
}

// Mode returns the filter mode for this configuration
func (c *Config) Mode() Mode {
	return Mode{
		Numeric:   c.Numeric || c.Type == TypeNumber,
		MultiLine: c.MultiLine,
	}
}

// Validate checks the configuration and returns every violation combined
func (c *Config) Validate() error {
	const op = "Config.Validate"
	var errs error

	invalid := func(format string, args ...any) {
		errs = multierr.Append(errs, newError(KindInvalidConfig, op, fmt.Sprintf(format, args...), nil))
	}

	if c.MaxTextLength == 0 || c.MaxTextLength > MaxTextLength {
		invalid("max text length %d out of range 1..%d", c.MaxTextLength, MaxTextLength)
	}
	if _, ok := typeNames[c.Type]; !ok {
		invalid("unknown dialog type %d", int(c.Type))
	}
	if _, ok := enterLabelNames[c.EnterLabel]; !ok {
		invalid("unknown enter label %d", int(c.EnterLabel))
	}
	if c.Overflow != OverflowTruncate && c.Overflow != OverflowReject {
		invalid("unknown overflow policy %d", int(c.Overflow))
	}
	if c.Mode().Numeric && c.MultiLine {
		invalid("numeric dialogs cannot be multi-line")
	}

	checkText := func(field, s string, limit int) {
		if !utf8.ValidString(s) {
			invalid("%s is not valid UTF-8", field)
			return
		}
		if n := orbisLen(s); n > limit {
			invalid("%s is %d code units, limit %d", field, n, limit)
		}
	}
	checkText("title", c.Title, MaxTitleLength)
	checkText("placeholder", c.Placeholder, MaxPlaceholderLength)
	if !utf8.ValidString(c.InitialText) {
		invalid("initial text is not valid UTF-8")
	} else if c.Overflow == OverflowReject && orbisLen(c.InitialText) > int(c.MaxTextLength) {
		invalid("initial text is %d code units, limit %d", orbisLen(c.InitialText), c.MaxTextLength)
	}

	return errs
}
