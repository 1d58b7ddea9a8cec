package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"studyassistant/internal/models"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

const (
	// DefaultModel is the Gemini model used when none is configured
	DefaultModel = "gemini-2.0-flash"
	// MaxInlineSize is the maximum size of inline image data per request (20MB)
	MaxInlineSize = 20 * 1024 * 1024
)

// ErrEmptyInput is returned before any request is made when there is nothing to analyse.
var ErrEmptyInput = errors.New("nothing to analyse")

// File is an uploaded image sent inline to the model.
type File struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Analyzer is the set of AI operations the study service needs.
type Analyzer interface {
	AnalyzeImage(ctx context.Context, file File, lang models.Language) (*models.AnalysisResult, error)
	AnalyzeImages(ctx context.Context, files []File, lang models.Language) (*models.AnalysisResult, error)
	AnalyzeContent(ctx context.Context, text string, lang models.Language) (*models.AnalysisResult, error)
	AnalyzePage(ctx context.Context, text string, page int, lang models.Language) (*models.PageAnalysis, error)
	GenerateQuestions(ctx context.Context, analyses []models.AnalysisResult, difficulty models.Difficulty, lang models.Language) (*models.QuestionResult, error)
}

// Options configures the client.
type Options struct {
	APIKey      string
	Model       string
	Temperature float32
	MaxAttempts int
	RetryDelay  time.Duration
}

type generateFunc func(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)

// Client wraps the Gemini client
type Client struct {
	client   *genai.Client
	opts     Options
	generate generateFunc
}

var _ Analyzer = (*Client)(nil)

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}
	opts = withDefaults(opts)

	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &Client{client: client, opts: opts}
	c.generate = c.generateContent
	return c, nil
}

func withDefaults(opts Options) Options {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 2 * time.Second
	}
	return opts
}

// Close closes the Gemini client
func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// generateContent builds a fresh model per call so concurrent requests never
// share mutable model settings.
func (c *Client) generateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	model := c.client.GenerativeModel(c.opts.Model)
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(c.opts.Temperature)
	model.SetTopK(40)
	model.SetTopP(0.95)
	model.SetMaxOutputTokens(8192)
	return model.GenerateContent(ctx, parts...)
}

// AnalyzeImage extracts study material from a single image.
func (c *Client) AnalyzeImage(ctx context.Context, file File, lang models.Language) (*models.AnalysisResult, error) {
	return c.AnalyzeImages(ctx, []File{file}, lang)
}

// AnalyzeImages extracts study material from several images in one request.
func (c *Client) AnalyzeImages(ctx context.Context, files []File, lang models.Language) (*models.AnalysisResult, error) {
	if len(files) == 0 {
		return nil, ErrEmptyInput
	}

	parts := []genai.Part{genai.Text(analysisPrompt("the attached image(s)", lang))}
	var total int
	for _, f := range files {
		if len(f.Data) == 0 {
			return nil, fmt.Errorf("%w: file %s is empty", ErrEmptyInput, f.Name)
		}
		total += len(f.Data)
		mime := f.MIMEType
		if mime == "" {
			mime = mimeTypeFor(f.Name)
		}
		parts = append(parts, genai.Blob{MIMEType: mime, Data: f.Data})
	}
	if total > MaxInlineSize {
		return nil, fmt.Errorf("images exceed the %d byte inline limit", MaxInlineSize)
	}

	res, err := call[models.AnalysisResult](ctx, c, parts, validAnalysis)
	if err != nil {
		return nil, fmt.Errorf("failed to analyse images: %w", err)
	}
	return res, nil
}

// AnalyzeContent extracts study material from document text.
func (c *Client) AnalyzeContent(ctx context.Context, text string, lang models.Language) (*models.AnalysisResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}
	parts := []genai.Part{
		genai.Text(analysisPrompt("the following document text", lang)),
		genai.Text(text),
	}
	res, err := call[models.AnalysisResult](ctx, c, parts, validAnalysis)
	if err != nil {
		return nil, fmt.Errorf("failed to analyse content: %w", err)
	}
	return res, nil
}

// AnalyzePage analyses the text of a single PDF page.
func (c *Client) AnalyzePage(ctx context.Context, text string, page int, lang models.Language) (*models.PageAnalysis, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}
	parts := []genai.Part{
		genai.Text(pagePrompt(page, lang)),
		genai.Text(text),
	}
	res, err := call[models.PageAnalysis](ctx, c, parts, func(p *models.PageAnalysis) error {
		if p.Summary == "" && len(p.KeyPoints) == 0 {
			return errors.New("page analysis is empty")
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to analyse page %d: %w", page, err)
	}
	res.PageNumber = page
	return res, nil
}

// GenerateQuestions writes a question set from earlier analyses.
func (c *Client) GenerateQuestions(ctx context.Context, analyses []models.AnalysisResult, difficulty models.Difficulty, lang models.Language) (*models.QuestionResult, error) {
	if len(analyses) == 0 {
		return nil, ErrEmptyInput
	}
	material, err := json.Marshal(questionMaterial(analyses))
	if err != nil {
		return nil, fmt.Errorf("failed to encode study material: %w", err)
	}
	parts := []genai.Part{
		genai.Text(questionPrompt(difficulty, lang)),
		genai.Text(material),
	}
	res, err := call[models.QuestionResult](ctx, c, parts, func(q *models.QuestionResult) error {
		if len(q.Questions) == 0 {
			return errors.New("question set contained no questions")
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate questions: %w", err)
	}
	if res.Difficulty == "" {
		res.Difficulty = string(difficulty)
	}
	return res, nil
}

func validAnalysis(a *models.AnalysisResult) error {
	if a.Summary == "" && len(a.KeyPoints) == 0 && len(a.StudyPoints) == 0 {
		return errors.New("analysis is empty")
	}
	return nil
}

// call sends parts to the model and decodes the JSON reply into T, retrying
// up to MaxAttempts times on transport errors, empty replies and bad JSON.
func call[T any](ctx context.Context, c *Client, parts []genai.Part, validate func(*T) error) (*T, error) {
	var lastErr error
	for attempt := 1; attempt <= c.opts.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w (last error: %v)", ctx.Err(), lastErr)
			case <-time.After(c.opts.RetryDelay):
			}
		}

		resp, err := c.generate(ctx, parts...)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("failed to generate content (attempt %d): %w", attempt, err)
			log.Warn().Err(err).Int("attempt", attempt).Msg("gemini request failed")
			continue
		}

		text := responseText(resp)
		if text == "" {
			lastErr = fmt.Errorf("no content generated (attempt %d)", attempt)
			log.Warn().Int("attempt", attempt).Msg("gemini returned no content")
			continue
		}

		raw := extractJSON(text)
		if raw == "" {
			lastErr = fmt.Errorf("no JSON content found in response (attempt %d)", attempt)
			continue
		}

		var out T
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			log.Debug().Int("attempt", attempt).Str("raw", raw).Msg("invalid JSON from gemini")
			lastErr = fmt.Errorf("failed to parse JSON response (attempt %d): %w", attempt, err)
			continue
		}
		if validate != nil {
			if err := validate(&out); err != nil {
				lastErr = fmt.Errorf("%w (attempt %d)", err, attempt)
				continue
			}
		}
		return &out, nil
	}
	return nil, fmt.Errorf("failed after %d attempts: %w", c.opts.MaxAttempts, lastErr)
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return strings.TrimSpace(sb.String())
}

var codeBlockPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// extractJSON pulls the first JSON object out of text that may be wrapped
// in markdown or surrounded by prose. A truncated object gets its missing
// closing brackets appended.
func extractJSON(text string) string {
	if m := codeBlockPattern.FindStringSubmatch(text); len(m) > 1 {
		text = m[1]
	}
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}
	text = text[start:]

	var stack []byte
	inString, escaped := false, false
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if escaped {
			escaped = false
			continue
		}
		if inString {
			switch ch {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			if len(stack) == 0 {
				return text[:i+1]
			}
		}
	}

	// Truncated reply: close whatever is still open.
	recovered := strings.TrimRight(text, " \t\r\n,")
	if inString {
		recovered += `"`
	}
	for i := len(stack) - 1; i >= 0; i-- {
		recovered += string(stack[i])
	}
	return recovered
}

// mimeTypeFor returns the MIME type for an image based on its extension
func mimeTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	case ".heic":
		return "image/heic"
	case ".pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
