package query

import (
	"fmt"
	"strings"
)

// Validate checks the parsed model payload against the expected shape for
// the use case. It reports the first violated field. A panicking check is
// converted into a failure; nothing escapes this boundary.
func Validate(useCase string, data map[string]any) (ok bool, msg string) {
	defer func() {
		if r := recover(); r != nil {
			ok, msg = false, fmt.Sprintf("validator error: %v", r)
		}
	}()

	switch useCase {
	case UseCaseFreePrompt:
		return validateFreePrompt(data)
	case UseCaseSummary:
		return validateSummary(data)
	case UseCaseQuiz:
		return validateQuiz(data)
	case UseCaseFunFact:
		return validateFunFact(data)
	default:
		return false, "no validator for type: " + useCase
	}
}

func validateFreePrompt(data map[string]any) (bool, string) {
	if !nonEmptyString(data["data"]) {
		return false, "Response text is missing or invalid."
	}
	return true, "Valid free prompt response"
}

func validateSummary(data map[string]any) (bool, string) {
	if !nonEmptyString(data["summary"]) {
		return false, "Summary is missing or invalid."
	}
	return true, "Valid summary response"
}

func validateQuiz(data map[string]any) (bool, string) {
	if !nonEmptyString(data["question"]) {
		return false, "Quiz question is missing or invalid."
	}
	opts, isList := data["options"].([]any)
	if !isList {
		// payloads built in-process may carry a typed slice
		if ss, isStrings := data["options"].([]string); isStrings {
			opts = make([]any, len(ss))
			for i, s := range ss {
				opts[i] = s
			}
			isList = true
		}
	}
	if !isList || len(opts) < 2 {
		return false, "Answer options are missing or invalid."
	}
	if !nonEmptyString(data["answer"]) {
		return false, "Correct answer is missing or invalid."
	}
	return true, "Valid quiz response"
}

func validateFunFact(data map[string]any) (bool, string) {
	if !nonEmptyString(data["fact"]) {
		return false, "Fun fact is missing or invalid."
	}
	if !nonEmptyString(data["source"]) {
		return false, "Source is missing or invalid."
	}
	return true, "Valid fun fact response"
}

func nonEmptyString(v any) bool {
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) != ""
}
