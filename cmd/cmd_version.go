package cmd

import (
	"fmt"

	"github.com/RishalEP/tenx-blockchain/common/errs"
	"github.com/RishalEP/tenx-blockchain/modules/tenx"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

// Version is the service version, overridden at build time with -ldflags.
var Version = "v0.1.0"

type versionCmdOptions struct {
	Module string
}

func NewVersionCommand() *cobra.Command {
	opts := &versionCmdOptions{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show tenx service version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return versionHandler(opts, cmd, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Module, "module", "", `Show version of a specific module. E.g. "tenx"`)

	return cmd
}

func versionHandler(opts *versionCmdOptions, cmd *cobra.Command, _ []string) error {
	versions := map[string]string{
		"":     Version,
		"tenx": tenx.Version,
	}
	version, ok := versions[opts.Module]
	if !ok {
		return errors.Wrapf(errs.Unsupported, "unknown module %q", opts.Module)
	}
	fmt.Fprintln(cmd.OutOrStdout(), version)
	return nil
}
