// Command snaprec records browser interactions into named recipes and
// replays them later with placeholder values substituted at run time.
//
// It drives an already-running browser through its DevTools websocket
// endpoint; start the browser yourself with remote debugging enabled, e.g.
// chromium --remote-debugging-port=9222, and point --ws-url at a page
// target.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/snaprec/snaprec/log"
)

type config struct {
	recipesPath string
	wsURL       string
	waitTimeout time.Duration
	logLevel    string

	logger *log.Logger
}

func newRootCommand() *cobra.Command {
	cfg := &config{}

	rootCmd := &cobra.Command{
		Use:   "snaprec",
		Short: "Record and replay browser interaction recipes",
		Long: `snaprec records interactions in a live browser session as a named,
reusable recipe and replays it later, substituting {placeholder} values
supplied at run time.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return cfg.finalize(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShell(cfg)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("recipes", "recipes.json", "path to the recipes document")
	flags.String("ws-url", "", "DevTools websocket URL of the page target")
	flags.Duration("wait-timeout", 10*time.Second, "how long to wait for an element before failing a step")
	flags.String("log-level", "info", "log level (trace, debug, info, warn, error)")

	rootCmd.AddCommand(newListCommand(cfg))
	rootCmd.AddCommand(newRunCommand(cfg))
	rootCmd.AddCommand(newRecordCommand(cfg))

	return rootCmd
}

// finalize merges flags and SNAPREC_* environment variables and builds the
// logger.
func (cfg *config) finalize(cmd *cobra.Command) error {
	v := viper.New()
	v.SetEnvPrefix("snaprec")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for _, name := range []string{"recipes", "ws-url", "wait-timeout", "log-level"} {
		if err := v.BindPFlag(name, cmd.Flags().Lookup(name)); err != nil {
			return err
		}
	}

	cfg.recipesPath = v.GetString("recipes")
	cfg.wsURL = v.GetString("ws-url")
	cfg.waitTimeout = v.GetDuration("wait-timeout")
	cfg.logLevel = v.GetString("log-level")

	l := logrus.New()
	l.SetOutput(os.Stderr)
	cfg.logger = log.New(l, nil)
	if err := cfg.logger.SetLevel(cfg.logLevel); err != nil {
		return fmt.Errorf("bad log level %q: %w", cfg.logLevel, err)
	}

	return nil
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorText(err.Error()))
		os.Exit(1)
	}
}
