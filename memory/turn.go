package memory

import (
	"encoding/json"

	"github.com/petasbytes/mcp-agent/internal/transport"
)

// Turn is one entry of a Conversation: UserMessage, ModelOutput or ToolOutcome.
type Turn interface {
	isTurn()
}

// Fragment is one element of a ModelOutput: TextFragment or ToolRequest.
type Fragment interface {
	isFragment()
}

// UserMessage is the operator's query.
type UserMessage struct {
	Text string
}

// ModelOutput holds fragments in the order the model emitted them.
type ModelOutput struct {
	Fragments []Fragment
}

// ToolOutcome is the result of one ToolRequest, correlated by RequestID.
type ToolOutcome struct {
	RequestID string
	Content   []transport.ContentItem
	IsError   bool
}

// TextFragment is visible model text.
type TextFragment struct {
	Text string
}

// ToolRequest asks for a capability to be invoked. Arguments are kept exactly
// as the model emitted them.
type ToolRequest struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

func (UserMessage) isTurn() {}
func (ModelOutput) isTurn() {}
func (ToolOutcome) isTurn() {}

func (TextFragment) isFragment() {}
func (ToolRequest) isFragment()  {}

// ToolRequests returns the tool-request fragments of m in emission order.
func (m ModelOutput) ToolRequests() []ToolRequest {
	var out []ToolRequest
	for _, f := range m.Fragments {
		if r, ok := f.(ToolRequest); ok {
			out = append(out, r)
		}
	}
	return out
}

// Texts returns the text fragments of m in emission order.
func (m ModelOutput) Texts() []string {
	var out []string
	for _, f := range m.Fragments {
		if t, ok := f.(TextFragment); ok {
			out = append(out, t.Text)
		}
	}
	return out
}
