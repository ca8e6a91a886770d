package cmd

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harry-hov/lspfmt/internal/tools"
	"github.com/harry-hov/lspfmt/internal/version"
)

func CmdVersion() *cobra.Command {
	var short, offline bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the lspfmt version and the built-in formatters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := version.Version
			if !offline {
				v = version.GetVersion(cmd.Context())
			}
			if short {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), v)
				return err
			}
			return writeVersion(cmd.OutOrStdout(), v)
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "print only the version")
	cmd.Flags().BoolVar(&offline, "offline", false, "do not look up the latest release")

	return cmd
}

func writeVersion(w io.Writer, v string) error {
	names := make([]string, 0, 4)
	for _, opt := range []tools.FormattingOption{tools.Gofmt, tools.Gofumpt, tools.Shfmt, tools.Whitespace} {
		names = append(names, opt.String())
	}
	_, err := fmt.Fprintf(w, "lspfmt %s\n  go:         %s\n  platform:   %s/%s\n  formatters: %s\n",
		v, runtime.Version(), runtime.GOOS, runtime.GOARCH, strings.Join(names, ", "))
	return err
}
