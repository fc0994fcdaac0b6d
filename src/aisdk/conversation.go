package aisdk

// TurnRole is the speaker of a conversation turn.
type TurnRole string

const (
	TurnUser      TurnRole = "user"
	TurnAssistant TurnRole = "assistant"
)

// Turn is one message of the user-visible dialogue. Tool traffic never
// appears in turns; it lives only inside a single orchestrator pass.
type Turn struct {
	Role TurnRole `json:"role"`
	Text string   `json:"text"`
}

// AppendTurns returns a new slice holding history followed by turns.
// The input slice is never written to.
func AppendTurns(history []Turn, turns ...Turn) []Turn {
	out := make([]Turn, 0, len(history)+len(turns))
	out = append(out, history...)
	return append(out, turns...)
}

// TurnsToMessages converts dialogue turns to chat messages, optionally
// prefixed with a system prompt.
func TurnsToMessages(systemPrompt string, history []Turn) []*Message {
	messages := make([]*Message, 0, len(history)+1)
	if systemPrompt != "" {
		messages = append(messages, &Message{Role: RoleSystem, Content: systemPrompt})
	}
	for _, turn := range history {
		role := RoleUser
		if turn.Role == TurnAssistant {
			role = RoleAssistant
		}
		messages = append(messages, &Message{Role: role, Content: turn.Text})
	}
	return messages
}
