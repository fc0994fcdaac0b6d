package chat

import (
	"encoding/json"
	"strings"

	"github.com/elee1766/grubguide/src/aisdk"
)

// Request is the chat payload sent by the widget.
type Request struct {
	UserMessage string `json:"userMessage"`
	// ChatHistory is kept raw so a malformed history never fails the
	// whole request. See DecodeHistory.
	ChatHistory json.RawMessage `json:"chatHistory,omitempty"`
}

// Response is the chat payload returned to the widget.
type Response struct {
	BotResponse string `json:"botResponse"`
}

// HistoryEntry is the wire form of one turn: {role, parts:[{text}]}.
type HistoryEntry struct {
	Role  string        `json:"role"`
	Parts []HistoryPart `json:"parts"`
}

// HistoryPart is one text part of a HistoryEntry.
type HistoryPart struct {
	Text string `json:"text"`
}

// Roles that decode to an assistant turn. Everything else is the user.
var assistantRoles = map[string]struct{}{
	"model":     {},
	"assistant": {},
	"bot":       {},
}

// DecodeHistory converts wire history to turns. It never fails: a value
// that is not an array is empty history, unknown roles become user turns
// and anything that is not text contributes "".
func DecodeHistory(raw json.RawMessage) []aisdk.Turn {
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		entries = nil
	}
	turns := make([]aisdk.Turn, 0, len(entries))
	for _, raw := range entries {
		turns = append(turns, decodeEntry(raw))
	}
	return turns
}

func decodeEntry(raw json.RawMessage) aisdk.Turn {
	turn := aisdk.Turn{Role: aisdk.TurnUser}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return turn
	}

	var role string
	if err := json.Unmarshal(fields["role"], &role); err == nil {
		if _, ok := assistantRoles[strings.ToLower(strings.TrimSpace(role))]; ok {
			turn.Role = aisdk.TurnAssistant
		}
	}

	var parts []json.RawMessage
	if err := json.Unmarshal(fields["parts"], &parts); err != nil {
		return turn
	}
	var b strings.Builder
	for _, part := range parts {
		var pf map[string]json.RawMessage
		if err := json.Unmarshal(part, &pf); err != nil {
			continue
		}
		var text string
		if err := json.Unmarshal(pf["text"], &text); err == nil {
			b.WriteString(text)
		}
	}
	turn.Text = b.String()
	return turn
}

// EncodeHistory converts turns to the wire form the widget sends back.
func EncodeHistory(turns []aisdk.Turn) json.RawMessage {
	out := make([]json.RawMessage, 0, len(turns))
	for _, turn := range turns {
		role := "user"
		if turn.Role == aisdk.TurnAssistant {
			role = "model"
		}
		raw, err := json.Marshal(HistoryEntry{Role: role, Parts: []HistoryPart{{Text: turn.Text}}})
		if err != nil {
			continue
		}
		out = append(out, raw)
	}
	data, err := json.Marshal(out)
	if err != nil {
		return json.RawMessage("[]")
	}
	return data
}
