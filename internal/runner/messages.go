package runner

import (
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/petasbytes/mcp-agent/internal/transport"
	"github.com/petasbytes/mcp-agent/memory"
)

// toMessageParams maps the conversation onto Messages API messages, one per turn.
func toMessageParams(turns []memory.Turn) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(turns))
	for _, t := range turns {
		switch v := t.(type) {
		case memory.UserMessage:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(v.Text)))
		case memory.ModelOutput:
			blocks := modelBlocks(v)
			if len(blocks) == 0 {
				// the API rejects empty assistant turns
				continue
			}
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		case memory.ToolOutcome:
			out = append(out, anthropic.NewUserMessage(toolResultBlock(v)))
		}
	}
	return out
}

func modelBlocks(m memory.ModelOutput) []anthropic.ContentBlockParamUnion {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(m.Fragments))
	for _, f := range m.Fragments {
		switch v := f.(type) {
		case memory.TextFragment:
			if v.Text != "" {
				blocks = append(blocks, anthropic.NewTextBlock(v.Text))
			}
		case memory.ToolRequest:
			input := v.Arguments
			if len(input) == 0 {
				input = json.RawMessage(`{}`)
			}
			blocks = append(blocks, anthropic.ContentBlockParamUnion{OfToolUse: &anthropic.ToolUseBlockParam{
				ID:    v.ID,
				Name:  v.Name,
				Input: input,
			}})
		}
	}
	return blocks
}

func toolResultBlock(o memory.ToolOutcome) anthropic.ContentBlockParamUnion {
	text := transport.Serialize(o.Content)
	if text == "" {
		return anthropic.ContentBlockParamUnion{OfToolResult: &anthropic.ToolResultBlockParam{
			ToolUseID: o.RequestID,
			IsError:   anthropic.Bool(o.IsError),
		}}
	}
	return anthropic.NewToolResultBlock(o.RequestID, text, o.IsError)
}

// fragmentsOf partitions a response's content blocks into fragments, in order.
func fragmentsOf(msg *anthropic.Message) []memory.Fragment {
	frags := make([]memory.Fragment, 0, len(msg.Content))
	for _, block := range msg.Content {
		switch v := block.AsAny().(type) {
		case anthropic.TextBlock:
			frags = append(frags, memory.TextFragment{Text: v.Text})
		case anthropic.ToolUseBlock:
			frags = append(frags, memory.ToolRequest{
				ID:        v.ID,
				Name:      v.Name,
				Arguments: json.RawMessage(v.JSON.Input.Raw()),
			})
		}
	}
	return frags
}
