package provider_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/petasbytes/mcp-agent/internal/provider"
)

type countingTransport struct {
	status int
	calls  int
	apiKey string
}

func (c *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.calls++
	c.apiKey = req.Header.Get("X-Api-Key")
	resp := &http.Response{
		StatusCode: c.status,
		Body:       io.NopCloser(bytes.NewReader([]byte(`{"type":"error","error":{"type":"api_error","message":"boom"}}`))),
		Header:     make(http.Header),
	}
	resp.Header.Set("Content-Type", "application/json")
	return resp, nil
}

func TestNewAnthropicClient_NoRetries(t *testing.T) {
	rt := &countingTransport{status: 500}
	cli := provider.NewAnthropicClient("test-key", option.WithHTTPClient(&http.Client{Transport: rt}))

	_, err := cli.Messages.New(context.Background(), anthropic.MessageNewParams{
		Model:     provider.DefaultModel,
		MaxTokens: provider.DefaultMaxTokens,
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock("hi"))},
	})
	if err == nil {
		t.Fatal("expected error from 500 response")
	}
	if rt.calls != 1 {
		t.Fatalf("expected exactly one HTTP attempt, got %d", rt.calls)
	}
	if rt.apiKey != "test-key" {
		t.Fatalf("expected api key header, got %q", rt.apiKey)
	}
}
