package ai

import (
	"context"
	"fmt"
	"strings"
)

// DescribeRequest carries what the listing copy is written from.
type DescribeRequest struct {
	Features string `json:"features"`
	Type     string `json:"type"`
	Location string `json:"location"`
	Bedrooms int    `json:"bedrooms"`
}

// Describe writes marketing copy for a property. Failures return DescribeFailed.
func (g *Gateway) Describe(ctx context.Context, req DescribeRequest) string {
	prompt := fmt.Sprintf(describePrompt, req.Type, req.Location, req.Bedrooms, req.Features)

	text, err := g.generate(ctx, userText(prompt), nil)
	if err != nil {
		g.log.Error().Err(err).Msg("Error generating description")
		return DescribeFailed
	}
	if strings.TrimSpace(text) == "" {
		return DescribeEmpty
	}
	return text
}
