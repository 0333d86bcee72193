package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/url"
	"regexp"
	"strings"

	"google.golang.org/genai"
)

// ImageCount is how many URLs FindImages always returns.
const ImageCount = 4

const imageURLFormat = "https://image.pollinations.ai/prompt/%s?width=800&height=600&nologo=true&model=flux&seed=%d"

var nonAlnumSpace = regexp.MustCompile(`[^a-zA-Z0-9 ]`)

// FindImages turns a free-text query into ImageCount generated-image URLs.
// When the model can't help, the URLs are derived from the query itself.
func (g *Gateway) FindImages(ctx context.Context, query string) []string {
	config := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	raw, err := g.generate(ctx, userText(fmt.Sprintf(imagesPrompt, query)), config)
	if err != nil {
		g.log.Error().Err(err).Msg("Error searching images")
		return FallbackImages(query)
	}

	var prompts []string
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &prompts); err != nil {
		g.log.Warn().Err(err).Msg("Image prompts were not a string array")
		return FallbackImages(query)
	}

	urls := make([]string, 0, ImageCount)
	for _, p := range prompts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		urls = append(urls, fmt.Sprintf(imageURLFormat, url.PathEscape(p), g.seed()))
		if len(urls) == ImageCount {
			return urls
		}
	}
	// pad a short answer from the derived set
	fallback := FallbackImages(query)
	return append(urls, fallback[len(urls):]...)
}

// FallbackImages derives ImageCount deterministic URLs from the first three
// words of query.
func FallbackImages(query string) []string {
	words := strings.Split(nonAlnumSpace.ReplaceAllString(query, ""), " ")
	if len(words) > 3 {
		words = words[:3]
	}
	encoded := url.PathEscape(strings.Join(words, " ") + " real estate architecture")

	suffixes := []string{"", "%20interior", "%20modern", "%20view"}
	seeds := []int{101, 202, 303, 404}
	urls := make([]string, ImageCount)
	for i := range urls {
		urls[i] = fmt.Sprintf(imageURLFormat, encoded+suffixes[i], seeds[i])
	}
	return urls
}

func randomSeed() int {
	return rand.IntN(10000)
}
