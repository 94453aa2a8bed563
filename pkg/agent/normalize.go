package agent

import (
	"fmt"
	"strings"

	"ai-research-be/internal/constant"
)

// BuildInput wraps the user prompt and attachment metadata into the two
// section text every validator receives.
func BuildInput(prompt string, hasImage, hasDoc bool) string {
	return fmt.Sprintf(
		"[METADATA]\nimage_attached: %t\ndocument_attached: %t\n\n[USER_INPUT]\n%s",
		hasImage, hasDoc, strings.TrimSpace(prompt),
	)
}

// NormalizePrompt trims the prompt. An empty prompt with exactly one kind of
// attachment is replaced by an auto-generated instruction and validation is
// skipped for it; the second return reports that substitution.
func NormalizePrompt(prompt string, hasImage, hasDoc bool) (string, bool) {
	prompt = strings.TrimSpace(prompt)
	if prompt != "" {
		return prompt, false
	}

	if hasImage && !hasDoc {
		return constant.AutoPromptImage, true
	}
	if hasDoc && !hasImage {
		return constant.AutoPromptDocument, true
	}

	// No text and no attachment; validators will reject it.
	return "", false
}
