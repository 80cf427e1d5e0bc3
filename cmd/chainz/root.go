package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/zoobzio/chainz"
	"github.com/zoobzio/chainz/config"
	"github.com/zoobzio/chainz/internal/logging"
	"github.com/zoobzio/chainz/nodes"
	"go.uber.org/zap"
)

var version = "0.1.0"

// app holds what every command needs: runtime settings and the node
// registry used to resolve definitions.
type app struct {
	settings *viper.Viper
	registry *nodes.Registry
	logger   *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{settings: viper.New(), registry: nodes.Default()}

	root := &cobra.Command{
		Use:   "chainz",
		Short: "Run composable record pipelines",
		Long: `chainz runs records through pipelines declared in YAML.

Each pipeline is an ordered chain of nodes. Every record ends up Success,
Filtered or Error, and failures are attributed to the node that raised them.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync() //nolint:errcheck
			}
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	flags := root.PersistentFlags()
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log encoding (console or json)")
	flags.Bool("log-dev", false, "development logging")

	root.AddCommand(
		newRunCmd(a),
		newTestCmd(a),
		newDocCmd(a),
		newCheckCmd(a),
		newNodesCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup binds flags and CHAINZ_* environment variables and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	a.settings.SetEnvPrefix("CHAINZ")
	a.settings.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.settings.AutomaticEnv()
	if err := a.settings.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	logger, err := logging.New(logging.Config{
		Level:       a.settings.GetString("log-level"),
		Encoding:    a.settings.GetString("log-format"),
		Development: a.settings.GetBool("log-dev"),
	})
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

// pipeline loads and builds the definition at path.
func (a *app) pipeline(path string) (*chainz.Pipeline, error) {
	if path == "" {
		return nil, fmt.Errorf("--pipeline is required")
	}
	def, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	p, err := config.Build(def, a.registry)
	if err != nil {
		return nil, err
	}
	return p.WithLogger(a.logger), nil
}
