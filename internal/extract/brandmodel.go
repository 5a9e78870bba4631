package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"pricefinder/internal/llm"
	"pricefinder/internal/model"
)

// promptTemplate asks the model to name the product's brand and model
// as a strict two-key JSON object.
const promptTemplate = "%s bu ürünün marka ve modelini {'brand':'X','model':'X'} JSON formatında söyler misin?"

// Extractor turns a free-text product name into a BrandModel by
// asking the language model once and leniently parsing its answer.
type Extractor struct {
	client llm.Client
	logger *slog.Logger
}

func NewExtractor(client llm.Client, logger *slog.Logger) *Extractor {
	return &Extractor{client: client, logger: logger}
}

// Extract returns the brand/model pair for the given product name, or
// nil when the model produced no usable answer. A nil result is the
// normal "not found" outcome, never an error condition: transport and
// parse failures are logged here and absorbed.
func (e *Extractor) Extract(ctx context.Context, productName string) *model.BrandModel {
	question := fmt.Sprintf(promptTemplate, productName)

	answer, err := e.client.Ask(ctx, question)
	if err != nil {
		e.logger.Warn("llm ask failed", "error", err)
		return nil
	}
	if answer == "" {
		return nil
	}

	cleaned := CleanAnswer(answer)

	var bm model.BrandModel
	if err := json.Unmarshal([]byte(cleaned), &bm); err != nil {
		e.logger.Warn("brand/model answer did not parse", "answer", answer, "error", err)
		return nil
	}

	return &bm
}

// CleanAnswer applies the fixed substitution set that recovers a JSON
// object from common model-output noise: code-fence backticks, single
// quotes in place of double quotes, and a stray literal "JSON" label.
// The substitutions are ordered and applied exactly once; this is not
// a general JSON repair pass.
func CleanAnswer(answer string) string {
	cleaned := strings.ReplaceAll(answer, "`", "")
	cleaned = strings.ReplaceAll(cleaned, "'", "\"")
	cleaned = strings.ReplaceAll(cleaned, "JSON", "")
	cleaned = strings.ReplaceAll(cleaned, "json", "")
	return cleaned
}
