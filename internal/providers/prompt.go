package providers

import (
	"fmt"
	"strings"

	"promptrouter/internal/model"
)

// ChatContext joins prior turns as "role: content" lines, preserving order,
// and appends the current query as a user line. With no history the query
// comes back bare.
func ChatContext(messages []model.ChatMessage, query string) string {
	if len(messages) == 0 {
		return strings.TrimSpace(query)
	}
	var b strings.Builder
	for i, m := range messages {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(m.Content)
	}
	if query != "" {
		b.WriteString("\nuser: ")
		b.WriteString(query)
	}
	return strings.TrimSpace(b.String())
}

// BuildFreePrompt renders a chat continuation when history exists, otherwise
// a bare instructive template around the query.
func BuildFreePrompt(messages []model.ChatMessage, query string) string {
	if len(messages) == 0 {
		return fmt.Sprintf("Answer honestly and helpfully: %s", query)
	}
	var b strings.Builder
	for _, m := range messages {
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteByte('\n')
	}
	b.WriteString("user: ")
	b.WriteString(query)
	b.WriteString("\nassistant:")
	return b.String()
}

func BuildSummaryPrompt(text, length string) string {
	return fmt.Sprintf(`Summarize the following text as a %s summary. Respond in JSON format:
{ "summary": "..." }

Text:
%s`, length, text)
}

func BuildQuizPrompt(messages []model.ChatMessage, topic string) string {
	return fmt.Sprintf(`You are a quiz generator. Your goal is to ask a unique multiple-choice question that differs clearly in content from earlier questions.

Previous questions and content (chat history):
%s

Now create a new multiple-choice quiz question on the topic, based on the history, without repetition:

Rules:
- Ask a new, creative question that has not been asked before, in wording or in content.
- Avoid wording, content, or answer options similar to the chat history.
- Give 4 different answer options.
- Mark the correct answer exactly as it appears in the options, e.g. 'answer': 'C) ...'
- Give a short explanation of why the answer is correct, with a source.
- Respond in JSON only, with no additional text.

JSON response format:
{
  "question": "...",
  "options": ["A) ...", "B) ...", "C) ...", "D) ..."],
  "answer": "...",
  "explanation": "..."
}`, ChatContext(messages, topic))
}

func BuildFunFactPrompt(messages []model.ChatMessage, word string) string {
	return fmt.Sprintf(`Give me an interesting fun fact based on the word: %s.

Use only reliable, publicly reachable sources, and check that the source actually exists before citing it.

JSON response format:
{ "fact": "...", "source": "..." }`, ChatContext(messages, word))
}
