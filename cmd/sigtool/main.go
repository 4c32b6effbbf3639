package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/sigkit/config"
	"github.com/dhamidi/sigkit/sig"
)

const version = "0.1.0"

// current is the configuration loaded before every command runs.
var current *config.Config

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "sigtool",
		Short:        "Parse, write and verify JVM generic signatures",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath, cmd.Flags())
			if err != nil {
				return err
			}
			commonlog.Configure(cfg.Verbosity, nil)
			current = cfg
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "configuration file (default ./sigtool.yaml)")
	rootCmd.PersistentFlags().CountP("verbose", "v", "increase log verbosity")
	rootCmd.PersistentFlags().Int("max-depth", sig.DefaultMaxDepth, "maximum nesting of arrays and type arguments")

	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newWriteCmd())
	rootCmd.AddCommand(newDumpCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newLSPCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
