package cmd

import (
	"log/slog"
	"time"

	"github.com/harry-hov/lspfmt/internal/lsp"
	"github.com/harry-hov/lspfmt/internal/tools"
	"github.com/spf13/cobra"
)

func CmdServe() *cobra.Command {
	var (
		formatter string
		delay     time.Duration
		noRange   bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a formatting language server on stdio",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			opt, err := tools.ParseFormattingOption(formatter)
			if err != nil {
				return err
			}
			slog.Info("Initializing Server...", "formatter", opt)
			return lsp.RunServer(cmd.Context(), lsp.Options{
				Formatter:         opt,
				Delay:             delay,
				NoRangeFormatting: noRange,
				Logger:            slog.Default(),
			})
		},
	}

	cmd.Flags().StringVar(&formatter, "formatter", tools.Auto.String(), "document formatter: auto, gofmt, gofumpt, shfmt or whitespace")
	cmd.Flags().DurationVar(&delay, "delay", 0, "hold back every formatting reply")
	cmd.Flags().BoolVar(&noRange, "no-range-formatting", false, "do not advertise range formatting")
	_ = cmd.Flags().MarkHidden("delay")

	return cmd
}
