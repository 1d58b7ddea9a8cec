package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"studyassistant/internal/config"
	"studyassistant/internal/gemini"
	"studyassistant/internal/models"
	"studyassistant/internal/study"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func analyzeCmd() *cobra.Command {
	var (
		language      string
		difficulty    string
		questions     bool
		comprehensive bool
		start, end    int
	)

	cmd := &cobra.Command{
		Use:   "analyze <file>...",
		Short: "Analyse images or one PDF with Gemini and print the JSON result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lang, err := models.ParseLanguage(language)
			if err != nil {
				return err
			}
			diff, err := models.ParseDifficulty(difficulty)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			client, err := gemini.NewClient(ctx, gemini.Options{
				APIKey:      cfg.GeminiAPIKey,
				Model:       cfg.GeminiModel,
				Temperature: cfg.GeminiTemperature,
				MaxAttempts: cfg.GeminiMaxAttempts,
			})
			if err != nil {
				return err
			}
			defer client.Close()

			svc := study.NewService(client, study.Options{Workers: cfg.AnalysisWorkers, MaxUploadBytes: cfg.MaxUploadBytes})

			uploads := make([]study.Upload, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				uploads = append(uploads, study.Upload{Name: filepath.Base(path), Data: data})
			}

			var analyses []models.AnalysisResult
			var result interface{}
			accepted, rejected := svc.Accept(uploads, true)
			for _, r := range rejected {
				log.Warn().Str("file", r.Name).Str("reason", r.Reason).Msg("skipping file")
			}

			switch {
			case len(accepted) == 1 && study.DetectType(accepted[0]) == "application/pdf":
				doc, err := svc.OpenDocument("", accepted[0])
				if err != nil {
					return err
				}
				if comprehensive {
					res, err := svc.AnalyzeComprehensive(ctx, "", doc.ID, lang, func(p models.PageAnalysis) {
						log.Info().Int("page", p.PageNumber).Msg("page analysed")
					})
					if err != nil {
						return err
					}
					result = res
					analyses = []models.AnalysisResult{{
						Summary:         res.OverallSummary,
						KeyPoints:       res.TotalKeyPoints,
						TNPSCCategories: res.TNPSCCategories,
						MainTopic:       doc.FileName,
					}}
					break
				}
				res, err := svc.AnalyzeDocument(ctx, "", doc.ID, start, end, lang)
				if err != nil {
					return err
				}
				result, analyses = res, []models.AnalysisResult{*res}
			case len(accepted) > 0:
				res, err := svc.AnalyzeImages(ctx, accepted, lang)
				if err != nil {
					return err
				}
				result, analyses = res, res
			default:
				return fmt.Errorf("%w: nothing to analyse", study.ErrUnsupportedFile)
			}

			if questions {
				result, err = svc.GenerateQuestions(ctx, analyses, diff, lang)
				if err != nil {
					return err
				}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	cmd.Flags().StringVarP(&language, "language", "l", "english", "output language: english|tamil")
	cmd.Flags().StringVarP(&difficulty, "difficulty", "d", "medium", "question difficulty: easy|medium|hard|very-hard")
	cmd.Flags().BoolVarP(&questions, "questions", "q", false, "generate questions from the analysis")
	cmd.Flags().BoolVar(&comprehensive, "comprehensive", false, "analyse a PDF page by page")
	cmd.Flags().IntVar(&start, "start", 0, "first PDF page to analyse")
	cmd.Flags().IntVar(&end, "end", 0, "last PDF page to analyse")
	return cmd
}
