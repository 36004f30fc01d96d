package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"corysite/internal/markdown"
)

func newRenderCmd() *cobra.Command {
	var inlineCode bool

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a Markdown resource body to HTML",
		Long:  `Reads Markdown from file, or from stdin when file is omitted or "-".`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				src []byte
				err error
			)
			if len(args) == 0 || args[0] == "-" {
				src, err = io.ReadAll(cmd.InOrStdin())
			} else {
				src, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read markdown: %w", err)
			}

			r := markdown.New(markdown.Options{InlineCode: inlineCode})
			_, err = fmt.Fprintln(cmd.OutOrStdout(), r.Render(string(src)))
			return err
		},
	}

	cmd.Flags().BoolVar(&inlineCode, "inline-code", true, "render `code` spans")
	return cmd
}
