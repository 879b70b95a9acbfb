package imedialog

import (
	"strings"
	"testing"

	"go.uber.org/multierr"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
		errMsg  string
	}{
		{
			name: "minimal",
			cfg:  Config{MaxTextLength: 1},
		},
		{
			name: "full",
			cfg: Config{
				UserID:        1,
				MultiLine:     true,
				Type:          TypeMail,
				EnterLabel:    EnterLabelSend,
				MaxTextLength: MaxTextLength,
				Title:         "Compose",
				Placeholder:   "message",
				InitialText:   "hi",
				Overflow:      OverflowReject,
			},
		},
		{
			name:    "zero length",
			cfg:     Config{},
			wantErr: true,
			errMsg:  "out of range",
		},
		{
			name:    "length over limit",
			cfg:     Config{MaxTextLength: MaxTextLength + 1},
			wantErr: true,
			errMsg:  "out of range",
		},
		{
			name:    "unknown type",
			cfg:     Config{MaxTextLength: 8, Type: Type(77)},
			wantErr: true,
			errMsg:  "unknown dialog type",
		},
		{
			name:    "unknown enter label",
			cfg:     Config{MaxTextLength: 8, EnterLabel: EnterLabel(9)},
			wantErr: true,
			errMsg:  "unknown enter label",
		},
		{
			name:    "unknown overflow",
			cfg:     Config{MaxTextLength: 8, Overflow: Overflow(5)},
			wantErr: true,
			errMsg:  "unknown overflow policy",
		},
		{
			name:    "numeric multi-line",
			cfg:     Config{MaxTextLength: 8, Numeric: true, MultiLine: true},
			wantErr: true,
			errMsg:  "cannot be multi-line",
		},
		{
			name:    "number type multi-line",
			cfg:     Config{MaxTextLength: 8, Type: TypeNumber, MultiLine: true},
			wantErr: true,
			errMsg:  "cannot be multi-line",
		},
		{
			name:    "title too long",
			cfg:     Config{MaxTextLength: 8, Title: strings.Repeat("t", MaxTitleLength+1)},
			wantErr: true,
			errMsg:  "title is 129 code units",
		},
		{
			name: "title at limit with surrogates",
			cfg:  Config{MaxTextLength: 8, Title: strings.Repeat("🎮", MaxTitleLength/2)},
		},
		{
			name:    "placeholder too long",
			cfg:     Config{MaxTextLength: 8, Placeholder: strings.Repeat("p", MaxPlaceholderLength+1)},
			wantErr: true,
			errMsg:  "placeholder",
		},
		{
			name:    "title not utf-8",
			cfg:     Config{MaxTextLength: 8, Title: "\xff"},
			wantErr: true,
			errMsg:  "title is not valid UTF-8",
		},
		{
			name:    "initial text not utf-8",
			cfg:     Config{MaxTextLength: 8, InitialText: "\xc3"},
			wantErr: true,
			errMsg:  "initial text is not valid UTF-8",
		},
		{
			name: "long initial text truncates",
			cfg:  Config{MaxTextLength: 2, InitialText: "hello"},
		},
		{
			name:    "long initial text with reject policy",
			cfg:     Config{MaxTextLength: 2, InitialText: "hello", Overflow: OverflowReject},
			wantErr: true,
			errMsg:  "initial text is 5 code units",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("Validate() expected error, got nil")
				}
				if !IsInvalidConfig(err) {
					t.Errorf("Validate() error = %v, want invalid config", err)
				}
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Validate() error = %q, want containing %q", err, tt.errMsg)
				}
			} else if err != nil {
				t.Errorf("Validate() unexpected error = %v", err)
			}
		})
	}
}

func TestConfigValidateCombinesErrors(t *testing.T) {
	cfg := Config{Type: Type(42), Title: "\xff"}
	errs := multierr.Errors(cfg.Validate())
	if len(errs) != 3 {
		t.Fatalf("Validate() returned %d errors, want 3: %v", len(errs), errs)
	}
	for _, err := range errs {
		if KindOf(err) != KindInvalidConfig {
			t.Errorf("error %v kind = %v", err, KindOf(err))
		}
	}
}

func TestConfigMode(t *testing.T) {
	tests := []struct {
		cfg  Config
		want Mode
	}{
		{Config{}, Mode{}},
		{Config{MultiLine: true}, Mode{MultiLine: true}},
		{Config{Numeric: true}, Mode{Numeric: true}},
		{Config{Type: TypeNumber}, Mode{Numeric: true}},
		{Config{Type: TypeURL}, Mode{}},
	}
	for _, tt := range tests {
		if got := tt.cfg.Mode(); got != tt.want {
			t.Errorf("%+v.Mode() = %+v, want %+v", tt.cfg, got, tt.want)
		}
	}
}

func TestParseNames(t *testing.T) {
	for want, name := range typeNames {
		got, err := ParseType(strings.ToUpper(name))
		if err != nil || got != want {
			t.Errorf("ParseType(%q) = %v, %v", name, got, err)
		}
		if want.String() != name {
			t.Errorf("%d.String() = %q, want %q", int(want), want.String(), name)
		}
	}
	for want, name := range enterLabelNames {
		got, err := ParseEnterLabel(name)
		if err != nil || got != want {
			t.Errorf("ParseEnterLabel(%q) = %v, %v", name, got, err)
		}
	}

	if got, err := ParseType(""); err != nil || got != TypeDefault {
		t.Errorf("ParseType(\"\") = %v, %v", got, err)
	}
	if _, err := ParseType("klingon"); !IsInvalidConfig(err) {
		t.Errorf("ParseType(klingon) error = %v", err)
	}
	if _, err := ParseEnterLabel("launch"); !IsInvalidConfig(err) {
		t.Errorf("ParseEnterLabel(launch) error = %v", err)
	}

	overflows := map[string]Overflow{"": OverflowTruncate, "truncate": OverflowTruncate, "REJECT": OverflowReject}
	for name, want := range overflows {
		if got, err := ParseOverflow(name); err != nil || got != want {
			t.Errorf("ParseOverflow(%q) = %v, %v", name, got, err)
		}
	}
	if _, err := ParseOverflow("wrap"); !IsInvalidConfig(err) {
		t.Errorf("ParseOverflow(wrap) error = %v", err)
	}
}

func TestEnterLabelText(t *testing.T) {
	tests := map[EnterLabel]string{
		EnterLabelDefault: "OK",
		EnterLabelSend:    "Send",
		EnterLabelSearch:  "Search",
		EnterLabelGo:      "Go",
	}
	for label, want := range tests {
		if got := label.Text(); got != want {
			t.Errorf("%v.Text() = %q, want %q", label, got, want)
		}
	}
}
