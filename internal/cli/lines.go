package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-data-exporter/factio/lines"
)

func newLinesCommand() *cobra.Command {
	var numbered bool
	cmd := &cobra.Command{
		Use:   "lines FILE",
		Short: "Print the lines of a text file",
		Long: `Decode a text file from the configured encoding and print it line by
line. Lines may end in LF, CRLF or a lone CR.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLines(cmd, args[0], numbered)
		},
	}
	cmd.Flags().BoolVarP(&numbered, "number", "n", true, "Prefix each line with its number")
	return cmd
}

func runLines(cmd *cobra.Command, path string, numbered bool) error {
	ctx := cmd.Context()
	cfg := getConfig(ctx)

	c, err := lines.Open(path, cfg.Encoding, lines.WithLogger(getLogger(ctx)))
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	w := cmd.OutOrStdout()
	for n := 1; c.HasNext(); n++ {
		if numbered {
			_, _ = fmt.Fprintf(w, "%6d  %s\n", n, c.Line())
		} else {
			_, _ = fmt.Fprintln(w, c.Line())
		}
	}
	return c.Err()
}
