// Package summarize turns a snapshot document into the derived artifact body
// through a chat-completion backend.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modoterra/cursorboost/pkg/config"
)

var (
	// ErrUnavailable means the backend cannot be used, typically because no
	// API key is set.
	ErrUnavailable = errors.New("summarizer unavailable")

	// ErrEmptyResponse means the backend answered with no content.
	ErrEmptyResponse = errors.New("summarizer returned an empty response")
)

// SystemPrompt frames the model's role.
const SystemPrompt = "You are a helpful assistant that injects a user's system information and parses out the most important details. Only respond with the complete file contents, without any additional explanation or commentary."

const userPromptPrefix = "You are a coding assistant optimizing text files for LLM-based applications. Using the following system snapshot, generate a text file that highlights the most relevant details for coding context. Only output the complete file contents, without explanations or extra text:\n\n"

// UserPrompt embeds the snapshot in the instruction sent as the user turn.
func UserPrompt(snapshot string) string {
	return userPromptPrefix + snapshot
}

// Summarizer produces the derived artifact body from a snapshot.
type Summarizer interface {
	Summarize(ctx context.Context, snapshot string) (string, error)
}

// New builds the summarizer for cfg.Provider. getenv looks up the API key
// variable named by cfg.APIKeyEnv; a missing key yields ErrUnavailable.
func New(cfg config.LLM, getenv func(string) string) (Summarizer, error) {
	key := strings.TrimSpace(getenv(cfg.APIKeyEnv))
	if key == "" {
		return nil, fmt.Errorf("%w: %s not set", ErrUnavailable, cfg.APIKeyEnv)
	}
	switch cfg.Provider {
	case "", "openai":
		return NewOpenAI(key, cfg), nil
	case "gemini":
		return NewGemini(key, cfg), nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrUnavailable, cfg.Provider)
	}
}

// Unavailable is a Summarizer that always fails with the error it was built
// from. The loop uses it so a missing key is reported every cycle.
type Unavailable struct {
	Err error
}

func (u Unavailable) Summarize(context.Context, string) (string, error) {
	return "", u.Err
}

// checkContent maps a blank reply to ErrEmptyResponse.
func checkContent(content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}
