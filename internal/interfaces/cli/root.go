// Package cli implements invoicectl, the operator command line for the
// invoice dashboard: schema migrations and seeding users and customers.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

type rootOptions struct {
	logLevel       string
	migrationsPath string
}

func newRootCmd(factory RuntimeFactory) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "invoicectl",
		Short:         "Operate the invoice dashboard",
		Long:          "invoicectl applies database migrations and seeds dashboard users and customers.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.migrationsPath, "path", "", "Migrations directory (default: migrations built into the binary)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newMigrateCmd(factory, opts))
	cmd.AddCommand(newUserCmd(factory, opts))
	cmd.AddCommand(newCustomerCmd(factory, opts))
	return cmd
}

// NewRootCmdForTest returns the root command wired to the given runtime factory.
func NewRootCmdForTest(factory RuntimeFactory) *cobra.Command {
	return newRootCmd(factory)
}

// Execute runs invoicectl against the configured environment
func Execute() error {
	return newRootCmd(NewEnvRuntime).Execute()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the invoicectl version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "invoicectl %s (%s)\n", version, commit)
			return nil
		},
	}
}

// withRuntime opens a runtime for the duration of fn
func withRuntime(factory RuntimeFactory, opts *rootOptions, fn func(Runtime) error) (err error) {
	rt, err := factory(opts.logLevel)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := rt.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return fn(rt)
}
