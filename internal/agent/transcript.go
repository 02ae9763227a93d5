// Package agent implements the decision loop: parsing model replies
// into actions, executing shell commands, and feeding results back
// into a bounded conversation.
package agent

// Role identifies the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one conversation entry.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Transcript is the append-only conversation history. The first
// message is always the single system message and is never evicted.
type Transcript struct {
	window   int
	messages []Message
}

// NewTranscript creates a transcript anchored on the system prompt.
// window is the maximum number of non-system messages included in the
// view sent to the model.
func NewTranscript(systemPrompt string, window int) *Transcript {
	return &Transcript{
		window:   window,
		messages: []Message{{Role: RoleSystem, Content: systemPrompt}},
	}
}

// Append adds a message to the history.
func (t *Transcript) Append(role Role, content string) {
	t.messages = append(t.messages, Message{Role: role, Content: content})
}

// Window returns the system message followed by at most the last
// `window` messages, preserving order. The returned slice is a copy.
func (t *Transcript) Window() []Message {
	rest := t.messages[1:]
	if len(rest) > t.window {
		rest = rest[len(rest)-t.window:]
	}
	out := make([]Message, 0, 1+len(rest))
	out = append(out, t.messages[0])
	out = append(out, rest...)
	return out
}

// Reset discards the accumulated history, keeping only the system
// message plus a fresh re-anchoring user message.
func (t *Transcript) Reset(anchor string) {
	t.messages = []Message{t.messages[0], {Role: RoleUser, Content: anchor}}
}

// Len returns the total number of messages held.
func (t *Transcript) Len() int {
	return len(t.messages)
}
