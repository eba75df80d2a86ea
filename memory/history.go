package memory

import (
	"encoding/json"
	"os"

	"github.com/cockroachdb/errors"
)

// Message is a persisted view of one side of an exchange.
type Message struct {
	Role string `json:"role"`
	Text string `json:"text,omitempty"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// LoadHistory reads messages from path. A missing file yields nil, nil.
func LoadHistory(path string) ([]Message, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var msgs []Message
	if err := json.Unmarshal(b, &msgs); err != nil {
		return nil, errors.Wrapf(err, "parse history %s", path)
	}
	return msgs, nil
}

// SaveHistory writes msgs to path, replacing its contents.
func SaveHistory(path string, msgs []Message) error {
	b, err := json.MarshalIndent(msgs, "", " ")
	if err != nil {
		return errors.Wrapf(err, "encode history %s", path)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return errors.Wrapf(err, "save history %s", path)
	}
	return nil
}

// History accumulates exchanges and persists them after each one.
type History struct {
	Path     string
	Messages []Message
}

// OpenHistory loads the history at path.
func OpenHistory(path string) (*History, error) {
	msgs, err := LoadHistory(path)
	if err != nil {
		return nil, err
	}
	return &History{Path: path, Messages: msgs}, nil
}

// Exchanges returns the number of recorded user messages.
func (h *History) Exchanges() int {
	n := 0
	for _, m := range h.Messages {
		if m.Role == RoleUser {
			n++
		}
	}
	return n
}

// Record appends a query and its transcript and saves the file.
func (h *History) Record(query, transcript string) error {
	h.Messages = append(h.Messages, Message{Role: RoleUser, Text: query})
	if transcript != "" {
		h.Messages = append(h.Messages, Message{Role: RoleAssistant, Text: transcript})
	}
	return SaveHistory(h.Path, h.Messages)
}
