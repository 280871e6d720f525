// Package commands implements the CLI commands for imgopt.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/imgopt/internal/app"
	"go.trai.ch/imgopt/internal/build"
	"go.trai.ch/imgopt/internal/core/ports"
)

// CLI represents the command line interface for imgopt.
type CLI struct {
	app     Application
	logger  ports.Logger
	rootCmd *cobra.Command

	configPath string
	buildDir   string
	status     string
	logJSON    bool
	debug      bool
}

// Application represents the application logic interface.
type Application interface {
	Optimize(ctx context.Context, opts app.RunOptions) (int64, error)
	Reconcile(ctx context.Context, opts app.RunOptions, out io.Writer) error
	Watch(ctx context.Context, opts app.RunOptions) error
}

// Option configures the CLI.
type Option func(*CLI)

// WithLogger lets --log-json switch the logger's output format.
func WithLogger(l ports.Logger) Option {
	return func(c *CLI) {
		c.logger = l
	}
}

// jsonSwitcher is implemented by loggers that support structured output.
type jsonSwitcher interface {
	SetJSON(enable bool)
}

// debugSwitcher is implemented by loggers with a debug level.
type debugSwitcher interface {
	SetDebug(enable bool)
}

// New creates a new CLI instance with the given app.
func New(a Application, opts ...Option) *CLI {
	rootCmd := &cobra.Command{
		Use:           "imgopt",
		Short:         "Incremental image optimization for static site builds",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}
	for _, opt := range opts {
		opt(c)
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&c.configPath, "config", "c", "", "Config file or directory containing imgopt.yaml")
	flags.StringVar(&c.buildDir, "build-dir", "", "Override the build output directory")
	flags.StringVar(&c.status, "status", "", "Status output: linear or none")
	flags.BoolVar(&c.logJSON, "log-json", false, "Write logs as JSON")
	flags.BoolVar(&c.debug, "debug", false, "Log pass and engine timings")

	rootCmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		if s, ok := c.logger.(jsonSwitcher); ok && c.logJSON {
			s.SetJSON(true)
		}
		if s, ok := c.logger.(debugSwitcher); ok && c.debug {
			s.SetDebug(true)
		}
	}

	rootCmd.AddCommand(c.newOptimizeCmd())
	rootCmd.AddCommand(c.newReconcileCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

func (c *CLI) runOptions() app.RunOptions {
	return app.RunOptions{
		ConfigPath: c.configPath,
		BuildDir:   c.buildDir,
		Status:     c.status,
	}
}
