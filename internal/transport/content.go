package transport

import (
	"encoding/json"
	"strings"

	"github.com/effective-security/xlog"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/tidwall/gjson"
)

// Capability is a named, schema-described operation exposed by the peer.
type Capability struct {
	Name        string
	Description string
	// InputSchema is the peer's JSON Schema for the arguments object.
	InputSchema json.RawMessage
}

// KindText is the Kind of plain text content items.
const KindText = "text"

// ContentItem is one element of a tool result.
type ContentItem struct {
	// Kind is the MCP content type: "text", "image", "audio", "resource_link" or "resource".
	Kind string
	// Text is set for text items.
	Text string
	// Raw is the structural encoding for non-text items.
	Raw json.RawMessage
}

// String renders the item: text verbatim, anything else as its JSON encoding.
func (c ContentItem) String() string {
	if c.Kind == KindText {
		return c.Text
	}
	return string(c.Raw)
}

// TextItem returns a text content item.
func TextItem(s string) ContentItem {
	return ContentItem{Kind: KindText, Text: s}
}

// Serialize flattens items into a single newline-separated string.
func Serialize(items []ContentItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, it.String())
	}
	return strings.Join(parts, "\n")
}

// Outcome is the peer's answer to an invocation.
type Outcome struct {
	Content []ContentItem
	IsError bool
}

// Text returns the serialized content.
func (o *Outcome) Text() string {
	if o == nil {
		return ""
	}
	return Serialize(o.Content)
}

func contentFromSDK(items []mcp.Content) []ContentItem {
	out := make([]ContentItem, 0, len(items))
	for _, item := range items {
		if tc, ok := item.(*mcp.TextContent); ok {
			out = append(out, TextItem(tc.Text))
			continue
		}
		raw, err := json.Marshal(item)
		if err != nil {
			logger.KV(xlog.WARNING, "event", "content_encode_failed", "err", err.Error())
			continue
		}
		out = append(out, ContentItem{
			Kind: gjson.GetBytes(raw, "type").String(),
			Raw:  raw,
		})
	}
	return out
}
