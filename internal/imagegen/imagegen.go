// Package imagegen produces images from text prompts.
package imagegen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	defaultAttempts = 3
	defaultBackoff  = 2 * time.Second
)

// ErrNoImage is returned when the backend answers without any image payload.
var ErrNoImage = errors.New("image backend returned no images")

// Image is a single generated image.
type Image struct {
	Data     []byte
	MIMEType string
}

// Generator renders one square image for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*Image, error)
}

// Config selects the backend and model.
type Config struct {
	Backend   string // gemini or vertex
	APIKey    string
	Project   string
	Location  string
	Model     string
	Attempts  int
	RetryWait time.Duration
}

type modelsAPI interface {
	GenerateImages(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GenAIGenerator calls Imagen or Gemini image models through google.golang.org/genai.
type GenAIGenerator struct {
	models   modelsAPI
	model    string
	attempts int
	wait     time.Duration
}

// NewGenAIGenerator builds a client for the configured backend.
func NewGenAIGenerator(ctx context.Context, cfg Config) (*GenAIGenerator, error) {
	cc := &genai.ClientConfig{}
	switch cfg.Backend {
	case "vertex":
		if cfg.Project == "" {
			return nil, fmt.Errorf("vertex backend requires a project id")
		}
		cc.Backend = genai.BackendVertexAI
		cc.Project = cfg.Project
		cc.Location = cfg.Location
	case "", "gemini":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("gemini backend requires an api key")
		}
		cc.Backend = genai.BackendGeminiAPI
		cc.APIKey = cfg.APIKey
	default:
		return nil, fmt.Errorf("unknown image backend %q", cfg.Backend)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newGenerator(client.Models, cfg), nil
}

func newGenerator(m modelsAPI, cfg Config) *GenAIGenerator {
	g := &GenAIGenerator{models: m, model: cfg.Model, attempts: cfg.Attempts, wait: cfg.RetryWait}
	if g.attempts <= 0 {
		g.attempts = defaultAttempts
	}
	if g.wait <= 0 {
		g.wait = defaultBackoff
	}
	return g
}

// Generate requests a single 1:1 image. Rate-limit errors are retried.
func (g *GenAIGenerator) Generate(ctx context.Context, prompt string) (*Image, error) {
	var lastErr error
	for attempt := 1; attempt <= g.attempts; attempt++ {
		img, err := g.generateOnce(ctx, prompt)
		if err == nil {
			return img, nil
		}
		lastErr = err
		if !isRateLimited(err) || attempt == g.attempts {
			break
		}

		slog.WarnContext(ctx, "Image backend rate limited, retrying",
			slog.String("model", g.model),
			slog.Int("attempt", attempt),
			slog.Duration("wait", g.wait))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(g.wait):
		}
	}
	return nil, lastErr
}

func (g *GenAIGenerator) generateOnce(ctx context.Context, prompt string) (*Image, error) {
	if usesContentAPI(g.model) {
		return g.generateContent(ctx, prompt)
	}

	resp, err := g.models.GenerateImages(ctx, g.model, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    "1:1",
		OutputMIMEType: "image/png",
	})
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, ErrNoImage
	}
	for _, gi := range resp.GeneratedImages {
		if gi != nil && gi.Image != nil && len(gi.Image.ImageBytes) > 0 {
			return &Image{Data: gi.Image.ImageBytes, MIMEType: gi.Image.MIMEType}, nil
		}
	}
	return nil, ErrNoImage
}

func (g *GenAIGenerator) generateContent(ctx context.Context, prompt string) (*Image, error) {
	resp, err := g.models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{genai.NewPartFromText(prompt)}}},
		&genai.GenerateContentConfig{
			ResponseModalities: []string{"IMAGE"},
			ImageConfig:        &genai.ImageConfig{AspectRatio: "1:1"},
		})
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, ErrNoImage
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return &Image{Data: part.InlineData.Data, MIMEType: part.InlineData.MIMEType}, nil
			}
		}
	}
	return nil, ErrNoImage
}

// usesContentAPI reports whether model is a Gemini multimodal model rather
// than an Imagen model.
func usesContentAPI(model string) bool {
	return strings.HasPrefix(model, "gemini-")
}

func isRateLimited(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == 429
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "resource_exhausted")
}

// Unavailable is used when no backend could be configured. Every call fails
// with Err so the job reports a generation failure instead of crashing.
type Unavailable struct {
	Err error
}

func (u Unavailable) Generate(context.Context, string) (*Image, error) {
	return nil, u.Err
}
