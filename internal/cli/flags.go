package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Output formats accepted by --output.
const (
	OutputTable = "table"
	OutputPlain = "plain"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// CommandFlags holds the flag values shared by the mdb commands.
type CommandFlags struct {
	// OutputFormat is table, plain, json or yaml.
	OutputFormat string
	// NoHeaders suppresses the header row in table output
	NoHeaders bool
	// Quiet suppresses progress indicators and non-essential output
	Quiet bool
	// Debug enables debug logging on stderr
	Debug bool
	// ConfigPath specifies a custom configuration directory path
	ConfigPath string
}

// RegisterOutputFlags registers --output, --no-headers and --quiet.
func RegisterOutputFlags(cmd *cobra.Command, flags *CommandFlags) {
	cmd.PersistentFlags().StringVarP(&flags.OutputFormat, "output", "o", OutputTable, "Output format (table, plain, json, yaml)")
	cmd.PersistentFlags().BoolVar(&flags.NoHeaders, "no-headers", false, "Suppress header row in table output")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Suppress non-essential output")
}

// ValidateOutputFormat rejects unknown --output values.
func ValidateOutputFormat(format string) error {
	switch format {
	case OutputTable, OutputPlain, OutputJSON, OutputYAML:
		return nil
	default:
		return fmt.Errorf("unsupported output format %q (expected table, plain, json or yaml)", format)
	}
}
