// Package main provides the pillbox CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pillbox/internal/app"
	"pillbox/internal/config"
	"pillbox/internal/logging"
	"pillbox/internal/theme"
)

var (
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd launches the interactive onboarding flow.
var rootCmd = &cobra.Command{
	Use:   "pillbox",
	Short: "pillbox - medication reminder client",
	Long: `pillbox is the terminal client for the pillbox medication reminder.

Run without arguments to start the interactive onboarding and sign-in flow.
Theme and session state persist across runs in the local preference store.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if verbose {
			cfg.Debug = true
		}

		// The interactive flow owns the terminal; its logs go to a file.
		if cmd.CalledAs() == "pillbox" {
			if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
				return fmt.Errorf("failed to create data directory: %w", err)
			}
			logger, err = logging.NewFile(filepath.Join(cfg.DataDir, "pillbox.log"), cfg.Debug)
		} else {
			logger, err = logging.New(cfg.Debug)
		}
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnboarding(cmd.Context())
	},
}

// themeCmd shows or sets the theme mode.
var themeCmd = &cobra.Command{
	Use:   "theme [automatic|light|dark]",
	Short: "Show or set the theme mode",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Teardown()

		if len(args) == 1 {
			mode := theme.ParseMode(args[0])
			if string(mode) != args[0] {
				return fmt.Errorf("unknown mode %q (want automatic, light, or dark)", args[0])
			}
			if err := a.Theme.SetMode(cmd.Context(), mode); err != nil {
				return err
			}
		}

		fmt.Printf("mode: %s\nappearance: %s\n", a.Theme.Mode(), a.Theme.Appearance())
		return nil
	},
}

// logoutCmd clears the persisted session.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Teardown()

		if !a.Sessions.IsAuthenticated() {
			fmt.Println("not signed in")
			return nil
		}
		if err := a.Sessions.Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("signed out")
		return nil
	},
}

// resetOnboardingCmd clears the seen marker so the flow shows again.
var resetOnboardingCmd = &cobra.Command{
	Use:   "reset-onboarding",
	Short: "Show the onboarding flow again on next launch",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Teardown()

		return a.Seen.Reset(cmd.Context())
	},
}

func newApp(ctx context.Context) (*app.App, error) {
	a, err := app.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := a.Init(ctx); err != nil {
		a.Teardown()
		return nil, err
	}
	return a, nil
}

func init() {
	defaultConfig := ""
	if home, err := os.UserHomeDir(); err == nil {
		defaultConfig = filepath.Join(home, ".pillbox", "config.yaml")
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfig, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(themeCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(resetOnboardingCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
