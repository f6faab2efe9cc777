// Package app provides the cobra-based CLI bootstrap shared by all
// server binaries: flag registration, config-file loading, and a uniform
// run entrypoint.
package app

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// RunFunc is the application's startup callback.
type RunFunc func(basename string) error

// CliOptions abstracts the options an application reads from flags and
// config files.
type CliOptions interface {
	AddFlags(fs *pflag.FlagSet)
	Complete() error
	Validate() []error
	String() string
}

// App is a configured command-line application.
type App struct {
	name        string
	basename    string
	description string
	options     CliOptions
	runFunc     RunFunc
	silence     bool
	cmd         *cobra.Command
}

// Option configures an App.
type Option func(*App)

// WithOptions attaches flag/config-backed options to the application.
func WithOptions(opts CliOptions) Option {
	return func(a *App) {
		a.options = opts
	}
}

// WithRunFunc sets the application startup callback.
func WithRunFunc(run RunFunc) Option {
	return func(a *App) {
		a.runFunc = run
	}
}

// WithDescription sets the long description shown in help output.
func WithDescription(desc string) Option {
	return func(a *App) {
		a.description = desc
	}
}

// WithSilence suppresses the startup banner.
func WithSilence() Option {
	return func(a *App) {
		a.silence = true
	}
}

// WithDefaultValidArgs rejects any positional arguments.
func WithDefaultValidArgs() Option {
	return func(a *App) {
		// Applied in buildCommand.
	}
}

// NewApp creates an App with the given name, basename, and options.
func NewApp(name, basename string, opts ...Option) *App {
	a := &App{
		name:     name,
		basename: basename,
	}
	for _, o := range opts {
		o(a)
	}
	a.buildCommand()
	return a
}

func (a *App) buildCommand() {
	cmd := &cobra.Command{
		Use:           a.basename,
		Short:         a.name,
		Long:          a.description,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
	}
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	if a.options != nil {
		a.options.AddFlags(cmd.Flags())
	}
	addConfigFlag(a.basename, cmd.Flags())

	cmd.RunE = a.runCommand
	a.cmd = cmd
}

func (a *App) runCommand(cmd *cobra.Command, args []string) error {
	if !a.silence {
		printBanner(a.name)
	}

	if a.options != nil {
		if err := applyConfigToOptions(a.options); err != nil {
			return err
		}
		if err := a.options.Complete(); err != nil {
			return err
		}
		if errs := a.options.Validate(); len(errs) > 0 {
			return fmt.Errorf("invalid options: %v", errs)
		}
	}

	if a.runFunc != nil {
		return a.runFunc(a.basename)
	}
	return nil
}

// Run launches the application and exits the process on failure.
func (a *App) Run() {
	if err := a.cmd.Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

// Command exposes the underlying cobra command, e.g. for doc generation.
func (a *App) Command() *cobra.Command {
	return a.cmd
}

func printBanner(name string) {
	color.Cyan("==> starting %s", name)
}
