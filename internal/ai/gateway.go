// Package ai talks to Gemini on behalf of the rest of the application.
//
// No call here returns a hard failure to its caller: text capabilities fall
// back to a fixed Portuguese message, image search falls back to derived
// URLs, and document extraction reports a tagged Extraction.
package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Fallback texts shown to the user.
const (
	DescribeFailed = "Erro ao conectar com a IA. Verifique sua chave API."
	DescribeEmpty  = "Não foi possível gerar a descrição."
	ChatFailed     = "Desculpe, estou com dificuldades para processar sua solicitação no momento."
	ChatEmpty      = "Desculpe, não entendi."
)

const (
	roleUser  = "user"
	roleModel = "model"
)

// ErrNotConfigured is reported when no API key was provided.
var ErrNotConfigured = errors.New("ai gateway not configured: missing API key")

// ContentGenerator is the slice of the genai client the gateway needs.
// *genai.Models satisfies it.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gateway exposes describe, extract, image search and chat.
type Gateway struct {
	gen   ContentGenerator
	model string
	log   zerolog.Logger
	seed  func() int
}

// New returns a gateway over gen. A nil gen yields a gateway whose every
// call takes its fallback branch.
func New(gen ContentGenerator, model string, log zerolog.Logger) *Gateway {
	if model == "" {
		model = DefaultModel
	}
	return &Gateway{gen: gen, model: model, log: log, seed: randomSeed}
}

// NewGemini connects to the Gemini API with apiKey. An empty key returns an
// unconfigured gateway rather than an error.
func NewGemini(ctx context.Context, apiKey, model string, log zerolog.Logger) (*Gateway, error) {
	if apiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY not set, AI features will use fallbacks")
		return New(nil, model, log), nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return New(client.Models, model, log), nil
}

// Configured reports whether the gateway can reach a model.
func (g *Gateway) Configured() bool {
	return g.gen != nil
}

// Model returns the model name in use.
func (g *Gateway) Model() string {
	return g.model
}

func (g *Gateway) generate(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (string, error) {
	if g.gen == nil {
		return "", ErrNotConfigured
	}
	resp, err := g.gen.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if resp == nil {
		return "", nil
	}
	return resp.Text(), nil
}

func userText(text string) []*genai.Content {
	return []*genai.Content{{
		Role:  roleUser,
		Parts: []*genai.Part{{Text: text}},
	}}
}
