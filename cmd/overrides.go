package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ca-srg/goodreader/internal/config"
	"github.com/ca-srg/goodreader/internal/goodreads"
	"github.com/ca-srg/goodreader/internal/pager"
)

type appConfigLoader func(path string) (*config.Config, error)

type clientFactory func(cfg *config.Config) (*goodreads.Client, error)

type prompterFactory func() pager.Prompter

// DependencyOverrides replaces the collaborators a command reaches for.
// Terminal, when set, answers every terminal check.
type DependencyOverrides struct {
	LoadConfig  appConfigLoader
	NewClient   clientFactory
	NewPrompter prompterFactory
	Terminal    *bool
}

// OverrideDependencies installs the given overrides and returns a func restoring the previous ones.
func OverrideDependencies(overrides DependencyOverrides) func() {
	prevLoadConfig := loadAppConfig
	prevNewClient := newClient
	prevNewPrompter := newPrompter
	prevStdin, prevStdout, prevStderr := stdinIsTerminal, stdoutIsTerminal, stderrIsTerminal

	if overrides.LoadConfig != nil {
		loadAppConfig = overrides.LoadConfig
	}
	if overrides.NewClient != nil {
		newClient = overrides.NewClient
	}
	if overrides.NewPrompter != nil {
		newPrompter = overrides.NewPrompter
	}
	if overrides.Terminal != nil {
		answer := *overrides.Terminal
		isTerm := func() bool { return answer }
		stdinIsTerminal, stdoutIsTerminal, stderrIsTerminal = isTerm, isTerm, isTerm
	}

	return func() {
		loadAppConfig = prevLoadConfig
		newClient = prevNewClient
		newPrompter = prevNewPrompter
		stdinIsTerminal, stdoutIsTerminal, stderrIsTerminal = prevStdin, prevStdout, prevStderr
	}
}

// ResetCommandState puts every flag back to its default and forgets the last session.
func ResetCommandState() {
	resetFlags(rootCmd)
	current = nil
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}
