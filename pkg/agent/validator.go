package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"ai-research-be/internal/constant"
	"ai-research-be/internal/pkg/logger"
	"ai-research-be/pkg/llm"
)

// Validator runs the two-stage input validation: first a meaningfulness
// check, then a routing-readiness check. The second stage only runs when the
// first passed.
type Validator struct {
	llm   llm.LLMProvider
	model string
	log   logger.ILogger
}

func NewValidator(provider llm.LLMProvider, model string, log logger.ILogger) *Validator {
	return &Validator{
		llm:   provider,
		model: model,
		log:   log,
	}
}

// Validate normalizes the prompt and runs the validation state machine.
//
//   - Empty prompt with one attachment: auto-prompt substituted, both checks
//     pass without any model call.
//   - Empty prompt without attachments: rejected without any model call.
//   - Otherwise the meaningful check runs, and the routing check only after
//     it passes.
func (v *Validator) Validate(ctx context.Context, prompt string, hasImage, hasDoc bool) (*ValidationResult, error) {
	normalized, auto := NormalizePrompt(prompt, hasImage, hasDoc)

	if auto {
		return &ValidationResult{
			NormalizedPrompt: normalized,
			AutoPrompt:       true,
			Meaningful:       Validation{State: true},
			Routing:          &Validation{State: true},
		}, nil
	}

	if normalized == "" && !hasImage && !hasDoc {
		return &ValidationResult{
			NormalizedPrompt: normalized,
			Meaningful:       Validation{State: false, Text: constant.EmptyInputMessage},
		}, nil
	}

	meaningful, err := v.runCheck(ctx, constant.MeaningfulValidatorSystemPrompt, normalized, hasImage, hasDoc)
	if err != nil {
		return nil, fmt.Errorf("meaningful validation: %w", err)
	}

	result := &ValidationResult{
		NormalizedPrompt: normalized,
		Meaningful:       *meaningful,
	}
	if !meaningful.State {
		return result, nil
	}

	routing, err := v.runCheck(ctx, constant.RoutingValidatorSystemPrompt, normalized, hasImage, hasDoc)
	if err != nil {
		return nil, fmt.Errorf("routing validation: %w", err)
	}
	result.Routing = routing
	return result, nil
}

func (v *Validator) runCheck(ctx context.Context, systemPrompt, prompt string, hasImage, hasDoc bool) (*Validation, error) {
	system := systemPrompt +
		"\n\nHere is the JSON Schema your response MUST conform to:\n" +
		string(validationSchema)

	raw, err := v.llm.GenerateJSON(ctx, BuildInput(prompt, hasImage, hasDoc), validationSchema,
		llm.WithModel(v.model),
		llm.WithSystem(system),
		llm.WithTemperature(0),
	)
	if err != nil {
		return nil, err
	}

	var verdict Validation
	if err := json.Unmarshal([]byte(raw), &verdict); err != nil {
		return nil, fmt.Errorf("malformed validator output: %w", err)
	}

	// A passing verdict carries no message; a failing one must explain itself.
	if verdict.State && verdict.Text != "" {
		return nil, fmt.Errorf("%w: passing verdict with message %q", ErrProtocol, verdict.Text)
	}
	if !verdict.State && verdict.Text == "" {
		return nil, fmt.Errorf("%w: failing verdict without message", ErrProtocol)
	}

	if v.log != nil {
		v.log.Debug("agent", "validator verdict", map[string]interface{}{
			"state": verdict.State,
		})
	}
	return &verdict, nil
}
