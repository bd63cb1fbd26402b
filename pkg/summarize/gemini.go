package summarize

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/genai"

	"github.com/modoterra/cursorboost/pkg/config"
)

// Gemini summarizes through the Gemini API.
type Gemini struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float32
	timeout     config.Duration

	once    sync.Once
	client  *genai.Client
	initErr error
}

// NewGemini creates a Gemini summarizer. The client is built on first use.
func NewGemini(apiKey string, cfg config.LLM) *Gemini {
	return &Gemini{
		apiKey:      apiKey,
		baseURL:     cfg.BaseURL,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
	}
}

func (g *Gemini) Summarize(ctx context.Context, snapshot string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout.Std())
		defer cancel()
	}

	g.once.Do(func() {
		cc := &genai.ClientConfig{APIKey: g.apiKey, Backend: genai.BackendGeminiAPI}
		if g.baseURL != "" {
			cc.HTTPOptions = genai.HTTPOptions{BaseURL: g.baseURL}
		}
		g.client, g.initErr = genai.NewClient(ctx, cc)
	})
	if g.initErr != nil {
		return "", fmt.Errorf("%w: gemini client: %v", ErrUnavailable, g.initErr)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromText(UserPrompt(snapshot), genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(SystemPrompt, genai.RoleUser),
			Temperature:       genai.Ptr(g.temperature),
		},
	)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	return checkContent(resp.Text())
}
