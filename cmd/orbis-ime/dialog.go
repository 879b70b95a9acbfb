package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/muurk/orbis-ime/internal/config"
	"github.com/muurk/orbis-ime/internal/host"
	"github.com/muurk/orbis-ime/internal/imedialog"
	"github.com/muurk/orbis-ime/internal/remote"
	"github.com/muurk/orbis-ime/internal/ui"
)

// errNotConfirmed is returned when the user leaves the dialog without
// confirming, so scripts can tell from the exit status
var errNotConfirmed = errors.New("dialog not confirmed")

// dialogOptions are the flags that pick a preset and override its fields
type dialogOptions struct {
	preset      string
	title       string
	placeholder string
	initial     string
	maxLength   uint32
	multiLine   bool
	numeric     bool
	userID      int32
}

func (o *dialogOptions) bind(fs *pflag.FlagSet) {
	fs.StringVarP(&o.preset, "preset", "p", "", "Preset name (default from preferences)")
	fs.StringVar(&o.title, "title", "", "Dialog title")
	fs.StringVar(&o.placeholder, "placeholder", "", "Text shown while the field is empty")
	fs.StringVar(&o.initial, "initial", "", "Initial text")
	fs.Uint32Var(&o.maxLength, "max-length", 0, "Capacity in UTF-16 code units")
	fs.BoolVar(&o.multiLine, "multiline", false, "Allow line breaks")
	fs.BoolVar(&o.numeric, "numeric", false, "Accept digits only")
	fs.Int32Var(&o.userID, "user", 0, "User ID the dialog is opened for")
}

// resolve builds the dialog configuration from the preset plus every flag
// the user set explicitly
func (o *dialogOptions) resolve(reg *config.Registry, fs *pflag.FlagSet) (*imedialog.Config, error) {
	base, err := reg.Resolve(o.preset)
	if err != nil {
		return nil, err
	}
	p := *base

	if fs.Changed("title") {
		p.Title = o.title
	}
	if fs.Changed("placeholder") {
		p.Placeholder = o.placeholder
	}
	if fs.Changed("initial") {
		p.InitialText = o.initial
	}
	if fs.Changed("max-length") {
		p.MaxTextLength = o.maxLength
	}
	if fs.Changed("multiline") {
		p.MultiLine = o.multiLine
	}
	if fs.Changed("numeric") {
		p.Numeric = o.numeric
	}
	return p.DialogConfig(o.userID)
}

var (
	runOpts    dialogOptions
	altScreen  bool
	jsonOutput bool
)

// runCmd opens a dialog in this terminal
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open a dialog in the terminal",
	Long: `Open an IME dialog in this terminal and print the committed text.

The dialog is built from a preset; flags override individual preset fields.
Enter confirms a single-line dialog, ctrl+s confirms any dialog, and esc or
ctrl+c cancels. The command exits non-zero unless the dialog is confirmed.`,
	Example: `  # Default preset
  orbis-ime run

  # Numeric PIN entry
  orbis-ime run --preset pin

  # Override the title and capture the result as JSON
  orbis-ime run --preset search --title "Find a game" --json`,
	RunE: runDialog,
}

func init() {
	runOpts.bind(runCmd.Flags())
	runCmd.Flags().BoolVar(&altScreen, "alt-screen", false, "Use the terminal's alternate screen")
	runCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the result as JSON")

	// The root command opens the default preset with the same flags
	rootCmd.Flags().AddFlagSet(runCmd.Flags())

	rootCmd.AddCommand(runCmd)
}

func runDialog(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	cfg, err := runOpts.resolve(reg, cmd.Flags())
	if err != nil {
		return fmt.Errorf("invalid dialog configuration: %w", err)
	}

	session, err := imedialog.NewSession(cfg)
	if err != nil {
		return err
	}
	ctrl := imedialog.NewController(session)
	defer ctrl.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
	defer stop()

	state, result, err := host.Run(ctx, ctrl, cfg, host.Options{
		FrameRate: reg.Preferences.FrameRate,
		Output:    os.Stderr,
		AltScreen: altScreen,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(remote.ResultMessage{
			End:       result.EndStatus.String(),
			Text:      result.Text,
			OrbisText: result.OrbisText,
		}); err != nil {
			return err
		}
	} else {
		printResult(ui.NewPrinter(cmd.OutOrStdout()), state, result)
	}

	if state != imedialog.StateConfirmed {
		return fmt.Errorf("%w: %s", errNotConfirmed, state)
	}
	return nil
}

func printResult(p *ui.Printer, state imedialog.State, result imedialog.Result) {
	switch state {
	case imedialog.StateConfirmed:
		p.PrintSuccess("Dialog confirmed",
			ui.Param{Key: "Text", Value: strconv.Quote(result.Text)},
			ui.Param{Key: "Code units", Value: strconv.Itoa(len(result.OrbisText))},
		)
	case imedialog.StateCancelled:
		p.PrintWarning("Dialog cancelled")
	default:
		p.PrintWarning("Dialog aborted", ui.Param{Key: "State", Value: state.String()})
	}
}
