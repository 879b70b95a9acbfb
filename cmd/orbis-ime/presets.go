package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/muurk/orbis-ime/internal/config"
	"github.com/muurk/orbis-ime/internal/ui"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "Manage dialog presets",
	Long: `List, inspect and validate the dialog presets in the config file.

Presets are kept in the user's config file. Use 'orbis-ime presets init'
to write one holding the built-in presets, then edit it by hand.`,
}

var presetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the configured presets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}

		printer := ui.NewPrinter(cmd.OutOrStdout())

		// Marker, name and capacity columns take 24 cells
		nameStyle := lipgloss.NewStyle().Foreground(ui.PrimaryColor).Bold(true).Width(14)
		capStyle := lipgloss.NewStyle().Foreground(ui.TextColor).Width(8)
		descStyle := lipgloss.NewStyle().Foreground(ui.MutedColor).MaxWidth(printer.Width() - 24)

		for _, name := range reg.PresetNames() {
			p := reg.GetPreset(name)
			marker := "  "
			if name == reg.Preferences.DefaultPreset {
				marker = "* "
			}
			printer.Println(marker + nameStyle.Render(name) +
				capStyle.Render(strconv.FormatUint(uint64(p.MaxTextLength), 10)) +
				descStyle.Render(presetSummary(p)))
		}
		return nil
	},
}

// presetSummary is the description followed by the non-default flags
func presetSummary(p *config.Preset) string {
	var tags []string
	if p.Type != "" {
		tags = append(tags, p.Type)
	}
	if p.MultiLine {
		tags = append(tags, "multi-line")
	}
	if p.Numeric {
		tags = append(tags, "numeric")
	}
	if p.Overflow != "" {
		tags = append(tags, p.Overflow)
	}
	s := p.Description
	if len(tags) > 0 {
		if s != "" {
			s += " "
		}
		s += "[" + strings.Join(tags, ", ") + "]"
	}
	return s
}

var presetsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a preset as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		p, err := reg.Resolve(args[0])
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(map[string]*config.Preset{args[0]: p})
		if err != nil {
			return fmt.Errorf("failed to marshal preset: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var presetsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check every preset and the preferences",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}

		printer := ui.NewPrinter(cmd.OutOrStdout())
		verr := reg.Validate()
		if verr == nil {
			printer.PrintSuccess("Configuration is valid",
				ui.Param{Key: "Presets", Value: strconv.Itoa(len(reg.Presets))},
				ui.Param{Key: "Default", Value: reg.Preferences.DefaultPreset},
			)
			return nil
		}

		errs := multierr.Errors(verr)
		problems := make([]string, 0, len(errs))
		for _, e := range errs {
			problems = append(problems, e.Error())
		}
		printer.PrintFailure(fmt.Sprintf("%d problem(s) found", len(errs)), verr, problems)
		return fmt.Errorf("configuration has %d problem(s)", len(errs))
	},
}

// Init command flags
var (
	initForce bool
	initYes   bool
)

var presetsInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file holding the built-in presets",
	Long: `Write a config file holding the built-in presets.

The file goes to --config when given, the user config directory otherwise.
An existing file is only replaced with --force, after confirmation.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		printer := ui.NewPrinter(cmd.OutOrStdout())

		if initForce && !initYes {
			warnings := []string{
				"The existing config file will be replaced",
				"Presets you added or edited will be lost",
			}
			if !printer.Confirm(cmd.InOrStdin(), "Overwrite config file", warnings, "overwrite") {
				return nil
			}
		}

		path, err := config.CreateDefaultConfig(configPath, initForce)
		if err != nil {
			return err
		}
		printer.PrintSuccess("Config file written",
			ui.Param{Key: "Path", Value: path},
			ui.Param{Key: "Presets", Value: strconv.Itoa(len(config.DefaultPresets()))},
		)
		return nil
	},
}

func init() {
	presetsInitCmd.Flags().BoolVar(&initForce, "force", false, "Replace an existing config file")
	presetsInitCmd.Flags().BoolVarP(&initYes, "yes", "y", false, "Skip the confirmation prompt")

	presetsCmd.AddCommand(presetsListCmd, presetsShowCmd, presetsValidateCmd, presetsInitCmd)
	rootCmd.AddCommand(presetsCmd)
}
