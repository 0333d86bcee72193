package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/dvloznov/imobcontrol/internal/dates"
	"github.com/dvloznov/imobcontrol/internal/domain"
)

// Outcome tags how an extraction ended.
type Outcome string

const (
	// OutcomeOK means the model answered with a well-formed record array.
	OutcomeOK Outcome = "ok"
	// OutcomeMalformed means the model answered but the payload was unusable.
	OutcomeMalformed Outcome = "malformed"
	// OutcomeUnavailable means the model could not be reached.
	OutcomeUnavailable Outcome = "unavailable"
)

// Extraction is the result of reading records out of a document.
// Records is empty unless Outcome is OutcomeOK.
type Extraction struct {
	Outcome Outcome
	Records []domain.FinancialRecord
	Err     error
}

// ExtractRecords sends a statement to the model and validates the records
// it returns. Records come back normalized.
func (g *Gateway) ExtractRecords(ctx context.Context, document []byte, mimeType string) Extraction {
	if mimeType == "" {
		mimeType = "application/pdf"
	}
	contents := []*genai.Content{{
		Role: roleUser,
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: document}},
			{Text: extractPrompt},
		},
	}}
	config := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}

	raw, err := g.generate(ctx, contents, config)
	if err != nil {
		g.log.Error().Err(err).Msg("Error extracting document data")
		return Extraction{Outcome: OutcomeUnavailable, Err: err}
	}

	records, err := parseRecords(raw)
	if err != nil {
		g.log.Warn().Err(err).Int("response_len", len(raw)).Msg("Model returned malformed records")
		return Extraction{Outcome: OutcomeMalformed, Err: err}
	}
	g.log.Info().Int("record_count", len(records)).Msg("Records extracted from document")
	return Extraction{Outcome: OutcomeOK, Records: records}
}

// parseRecords decodes the model's JSON array. An empty answer is an empty list.
func parseRecords(raw string) ([]domain.FinancialRecord, error) {
	clean := cleanModelJSON(raw)
	if clean == "" {
		return []domain.FinancialRecord{}, nil
	}

	var parsed any
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal JSON: %w", err)
	}
	items, ok := parsed.([]any)
	if !ok {
		return nil, fmt.Errorf("model output is %T, want array", parsed)
	}

	records := make([]domain.FinancialRecord, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("element %d is %T, want object", i, item)
		}
		r, err := recordFromMap(obj)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, domain.NormalizeRecord(r))
	}
	return records, nil
}

func recordFromMap(obj map[string]any) (domain.FinancialRecord, error) {
	date, err := getOptionalStringField(obj, "date")
	if err != nil {
		return domain.FinancialRecord{}, err
	}
	amount, err := getMoneyField(obj, "amount")
	if err != nil {
		return domain.FinancialRecord{}, err
	}
	desc, err := getOptionalStringField(obj, "description")
	if err != nil {
		return domain.FinancialRecord{}, err
	}
	kind, err := getOptionalStringField(obj, "type")
	if err != nil {
		return domain.FinancialRecord{}, err
	}
	checkIn, err := getOptionalStringField(obj, "checkIn")
	if err != nil {
		return domain.FinancialRecord{}, err
	}
	checkOut, err := getOptionalStringField(obj, "checkOut")
	if err != nil {
		return domain.FinancialRecord{}, err
	}

	return domain.FinancialRecord{
		Date:        toRecordDate(deref(date)),
		CheckIn:     toRecordDate(deref(checkIn)),
		CheckOut:    toRecordDate(deref(checkOut)),
		Amount:      amount,
		Description: deref(desc),
		Kind:        domain.Kind(deref(kind)),
	}, nil
}

// toRecordDate rewrites ISO dates as DD/MM/YYYY and leaves anything else alone.
func toRecordDate(s string) string {
	s = strings.TrimSpace(s)
	if _, ok := dates.ParseDate(s); ok || s == "" {
		return s
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return dates.FormatDate(t)
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// cleanModelJSON strips markdown fences and any chatter around the array.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		// drop the opening ``` or ```json line
		idx := strings.Index(s, "\n")
		if idx == -1 {
			return strings.Trim(s, "`")
		}
		s = strings.TrimSpace(s[idx+1:])
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "["); start != -1 {
		if end := strings.LastIndex(s, "]"); end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}

func getOptionalStringField(m map[string]any, key string) (*string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	val, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("field %q has type %T, want string or null", key, v)
	}
	s := strings.TrimSpace(val)
	if s == "" {
		return nil, nil
	}
	return &s, nil
}

// getMoneyField accepts a JSON number or a numeric string such as "1200.50".
func getMoneyField(m map[string]any, key string) (domain.Money, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return domain.Money{}, fmt.Errorf("missing required field %q", key)
	}
	switch val := v.(type) {
	case float64:
		return domain.NewMoney(val), nil
	case string:
		money, err := domain.ParseMoney(strings.TrimSpace(val))
		if err != nil {
			return domain.Money{}, fmt.Errorf("field %q: %w", key, err)
		}
		return money, nil
	default:
		return domain.Money{}, fmt.Errorf("field %q has type %T, want number", key, v)
	}
}
