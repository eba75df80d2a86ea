package provider

import (
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/petasbytes/mcp-agent/internal/config"
)

const (
	DefaultModel     = anthropic.Model(config.DefaultModel)
	DefaultMaxTokens = int64(config.DefaultMaxTokens)
	APIVersion       = "2023-06-01"
)

// NewAnthropicClient returns a Messages API client. Automatic retries are
// disabled: a failed completion ends the query. An empty apiKey falls back to
// the SDK's environment lookup.
func NewAnthropicClient(apiKey string, opts ...option.RequestOption) *anthropic.Client {
	base := []option.RequestOption{option.WithMaxRetries(0)}
	if apiKey != "" {
		base = append(base, option.WithAPIKey(apiKey))
	}
	c := anthropic.NewClient(append(base, opts...)...)
	return &c
}
