package memory

import (
	"github.com/cockroachdb/errors"
)

// Conversation is an append-only sequence of turns. Turns are never edited or
// removed once appended.
type Conversation struct {
	turns []Turn
}

// Append adds turns to the end of the conversation.
func (c *Conversation) Append(turns ...Turn) {
	c.turns = append(c.turns, turns...)
}

// Turns returns a copy of the turns in order.
func (c *Conversation) Turns() []Turn {
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Len returns the number of turns.
func (c *Conversation) Len() int { return len(c.turns) }

// ToolOutcomes returns the ToolOutcome turns in order.
func (c *Conversation) ToolOutcomes() []ToolOutcome {
	var out []ToolOutcome
	for _, t := range c.turns {
		if o, ok := t.(ToolOutcome); ok {
			out = append(out, o)
		}
	}
	return out
}

// ToolRequests returns every tool request in the conversation in order.
func (c *Conversation) ToolRequests() []ToolRequest {
	var out []ToolRequest
	for _, t := range c.turns {
		if m, ok := t.(ModelOutput); ok {
			out = append(out, m.ToolRequests()...)
		}
	}
	return out
}

// CheckPairing verifies that every ToolRequest is answered by exactly one
// ToolOutcome with the same id before the next ModelOutput, and that no
// ToolOutcome appears without a pending request.
func (c *Conversation) CheckPairing() error {
	var pending []string
	for i, t := range c.turns {
		switch v := t.(type) {
		case ModelOutput:
			if len(pending) > 0 {
				return errors.Errorf("turn %d: model output while tool request %s is unanswered", i, pending[0])
			}
			for _, r := range v.ToolRequests() {
				pending = append(pending, r.ID)
			}
		case ToolOutcome:
			if len(pending) == 0 || pending[0] != v.RequestID {
				return errors.Errorf("turn %d: tool outcome %s does not answer the next pending request", i, v.RequestID)
			}
			pending = pending[1:]
		case UserMessage:
			if len(pending) > 0 {
				return errors.Errorf("turn %d: user message while tool request %s is unanswered", i, pending[0])
			}
		}
	}
	if len(pending) > 0 {
		return errors.Errorf("tool request %s is unanswered", pending[0])
	}
	return nil
}
