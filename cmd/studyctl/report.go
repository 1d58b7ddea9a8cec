package main

import (
	"fmt"
	"os"

	"studyassistant/internal/report"

	"github.com/spf13/cobra"
)

func reportCmd() *cobra.Command {
	var (
		title    string
		kind     string
		out      string
		fontPath string
	)

	cmd := &cobra.Command{
		Use:   "report <content.json>",
		Short: "Render a PDF report from analysis, question or quiz JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			k, err := report.ParseKind(kind)
			if err != nil {
				return err
			}
			doc, err := report.DecodeDocument(title, k, content)
			if err != nil {
				return err
			}
			if out == "" {
				out = report.FileName(doc.Title)
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			pages, err := report.NewRenderer(report.Options{FontPath: fontPath}).Render(f, doc)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				_ = os.Remove(out)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d pages)\n", out, pages)
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "Study Report", "report title")
	cmd.Flags().StringVarP(&kind, "type", "k", string(report.KindAnalysis), "content type: keypoints|analysis|questions|quiz-results")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: derived from the title)")
	cmd.Flags().StringVar(&fontPath, "font", os.Getenv("REPORT_FONT_PATH"), "UTF-8 TrueType font for non-Latin text")
	return cmd
}
