package ai

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/dvloznov/imobcontrol/internal/domain"
)

// Turn is one earlier message of a conversation.
type Turn struct {
	Role string `json:"role"` // "user" or "model"
	Text string `json:"text"`
}

// PortfolioContext renders one line per property for the system instruction.
func PortfolioContext(props []domain.Property) string {
	lines := make([]string, 0, len(props))
	for _, p := range props {
		lines = append(lines, fmt.Sprintf("- ID: %s, %s em %s, %d quartos, R$ %s, Status: %s. Detalhes: %s",
			p.ID, p.Type, p.Address, p.Bedrooms, p.Price.Decimal().String(), p.Status, p.Title))
	}
	return strings.Join(lines, "\n")
}

// Chat answers message with the portfolio as context. Failures return ChatFailed.
func (g *Gateway) Chat(ctx context.Context, message string, props []domain.Property, history []Turn) string {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, h := range history {
		role := roleUser
		if h.Role == roleModel {
			role = roleModel
		}
		contents = append(contents, &genai.Content{Role: role, Parts: []*genai.Part{{Text: h.Text}}})
	}
	contents = append(contents, userText(message)...)

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: fmt.Sprintf(chatInstruction, PortfolioContext(props))}},
		},
	}

	text, err := g.generate(ctx, contents, config)
	if err != nil {
		g.log.Error().Err(err).Int("history_len", len(history)).Msg("Error in AI chat")
		return ChatFailed
	}
	if strings.TrimSpace(text) == "" {
		return ChatEmpty
	}
	return text
}
