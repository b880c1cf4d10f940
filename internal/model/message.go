package model

// ChatMessage is one turn of the conversation the caller sends along.
// Order matters; it is rendered into prompts exactly as received.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
