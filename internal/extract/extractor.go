// Package extract is the boundary to the extraction collaborator. It sends a
// fixed instruction plus the user's free text to an LLM and parses the reply
// into a nutrition draft. The reply is untrusted: anything short of a valid
// JSON object with all required keys fails with *ExtractionError, never with
// a raw parse error leaking into business logic.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"mtracker/internal/llm"
	"mtracker/internal/nutrition"
)

const systemPrompt = "You are a helpful assistant that extracts nutritional information from text. " +
	"Respond with only a valid JSON object."

const taskPrompt = `Extract the food item, quantity, and quantity unit from the following text. ` +
	`Then, estimate the calories, protein, carbohydrates, and fat for that food item per 100g. ` +
	`Return the result as a JSON object with the keys: "food_item", "quantity", "quantity_unit", ` +
	`"calories_per_100g", "protein_per_100g", "carbs_per_100g", "fat_per_100g". ` +
	`Example: Text: "comi 175g de bolo de banana" Output: ` +
	`{"food_item": "bolo de banana", "quantity": 175, "quantity_unit": "g", ` +
	`"calories_per_100g": 300, "protein_per_100g": 4, "carbs_per_100g": 40, "fat_per_100g": 14}`

// ExtractionError reports a failed extraction: collaborator unreachable,
// malformed reply, or missing required fields.
type ExtractionError struct {
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("extraction failed: %s", e.Reason)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Extractor turns free-text meal descriptions into nutrition drafts.
type Extractor struct {
	client llm.Client
	logger *zap.Logger
}

// NewExtractor creates an extractor backed by the given LLM client.
func NewExtractor(client llm.Client, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{client: client, logger: logger}
}

// rawDraft mirrors the JSON object the collaborator is asked to produce.
// Numeric fields use json.Number so both "175" and "175.0" decode.
type rawDraft struct {
	FoodItem       *string      `json:"food_item"`
	Quantity       *json.Number `json:"quantity"`
	QuantityUnit   *string      `json:"quantity_unit"`
	CaloriesPer100 *json.Number `json:"calories_per_100g"`
	ProteinPer100  *json.Number `json:"protein_per_100g"`
	CarbsPer100    *json.Number `json:"carbs_per_100g"`
	FatPer100      *json.Number `json:"fat_per_100g"`
}

// Extract sends the user text to the collaborator and parses the reply.
// No retries: a failure surfaces immediately to the caller.
func (e *Extractor) Extract(ctx context.Context, text string) (*nutrition.Draft, error) {
	prompt := taskPrompt + "\n\n" + text

	reply, err := e.client.CompleteWithSystem(ctx, systemPrompt, prompt)
	if err != nil {
		e.logger.Warn("extraction call failed", zap.Error(err))
		return nil, &ExtractionError{Reason: "collaborator call failed", Err: err}
	}

	draft, err := parseDraft(reply)
	if err != nil {
		e.logger.Warn("extraction reply rejected",
			zap.Int("reply_len", len(reply)),
			zap.Error(err))
		return nil, err
	}

	e.logger.Debug("extraction succeeded",
		zap.String("food_item", draft.FoodItem),
		zap.Float64("quantity", draft.Quantity),
		zap.String("unit", draft.QuantityUnit))
	return draft, nil
}

// parseDraft validates the collaborator reply: strip any markdown fence,
// require a single JSON object with all seven keys, coerce numerics.
func parseDraft(reply string) (*nutrition.Draft, error) {
	cleaned := cleanJSONResponse(reply)

	var raw rawDraft
	dec := json.NewDecoder(strings.NewReader(cleaned))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, &ExtractionError{Reason: "reply is not valid JSON", Err: err}
	}

	if raw.FoodItem == nil || *raw.FoodItem == "" {
		return nil, &ExtractionError{Reason: `missing required key "food_item"`}
	}
	if raw.QuantityUnit == nil {
		return nil, &ExtractionError{Reason: `missing required key "quantity_unit"`}
	}

	numbers := []struct {
		key string
		val *json.Number
	}{
		{"quantity", raw.Quantity},
		{"calories_per_100g", raw.CaloriesPer100},
		{"protein_per_100g", raw.ProteinPer100},
		{"carbs_per_100g", raw.CarbsPer100},
		{"fat_per_100g", raw.FatPer100},
	}

	vals := make([]float64, len(numbers))
	for i, n := range numbers {
		if n.val == nil {
			return nil, &ExtractionError{Reason: fmt.Sprintf("missing required key %q", n.key)}
		}
		f, err := n.val.Float64()
		if err != nil {
			return nil, &ExtractionError{Reason: fmt.Sprintf("key %q is not numeric", n.key), Err: err}
		}
		vals[i] = f
	}

	draft := &nutrition.Draft{
		FoodItem:     *raw.FoodItem,
		Quantity:     vals[0],
		QuantityUnit: *raw.QuantityUnit,
		PerHundred: nutrition.Profile{
			Calories: vals[1],
			Protein:  vals[2],
			Carbs:    vals[3],
			Fat:      vals[4],
		},
	}
	if err := draft.PerHundred.Validate(); err != nil {
		return nil, &ExtractionError{Reason: "profile has negative values", Err: err}
	}
	return draft, nil
}

// cleanJSONResponse removes markdown code fences from a JSON response.
func cleanJSONResponse(resp string) string {
	resp = strings.TrimSpace(resp)
	resp = strings.TrimPrefix(resp, "```json")
	resp = strings.TrimPrefix(resp, "```")
	resp = strings.TrimSuffix(resp, "```")
	return strings.TrimSpace(resp)
}
