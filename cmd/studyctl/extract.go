package main

import (
	"fmt"
	"os"

	"studyassistant/internal/pdftext"

	"github.com/spf13/cobra"
)

func extractCmd() *cobra.Command {
	var start, end int

	cmd := &cobra.Command{
		Use:   "extract <file.pdf>",
		Short: "Print the page-marked text of a PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			text, err := pdftext.ExtractBytes(data)
			if err != nil {
				return err
			}
			if start > 0 || end > 0 {
				if end == 0 {
					end = pdftext.FindTotalPages(text)
				}
				text = pdftext.ExtractPageRange(text, max(start, 1), end)
			}
			if text == "" {
				return fmt.Errorf("no text found in %s", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().IntVar(&start, "start", 0, "first page to print")
	cmd.Flags().IntVar(&end, "end", 0, "last page to print")
	return cmd
}
