package cmd

import (
	"github.com/cwbudde/pycc/internal/config"
	"github.com/spf13/cobra"
)

// loadConfig builds the layered Config for one invocation: defaults,
// --config's project file, PYCC_* environment, then this command's own
// persistent flags (cobra's Flags().Changed distinguishes a flag the user
// actually passed from one left at its zero-value default).
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	overrides := config.Overrides{}
	flags := cmd.Flags()

	if flags.Changed("zig-target") {
		overrides.ZigTarget = &zigTarget
	}
	if flags.Changed("big-int-promotion") {
		overrides.BigIntPromotion = &bigIntPromotion
	}
	if flags.Changed("debug-comments") {
		overrides.DebugComments = &debugComments
	}
	if flags.Changed("verbose") {
		overrides.Verbose = &verbose
	}

	return config.Load(configPath, overrides)
}
