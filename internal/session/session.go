// Package session owns one connection to a tool-serving peer together with the
// tool registry discovered on it and the completion client used to resolve
// queries. A Session is acquired with Connect and released with Close.
package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/petasbytes/mcp-agent/internal/config"
	"github.com/petasbytes/mcp-agent/internal/errkind"
	"github.com/petasbytes/mcp-agent/internal/provider"
	"github.com/petasbytes/mcp-agent/internal/runner"
	"github.com/petasbytes/mcp-agent/internal/transport"
	"github.com/petasbytes/mcp-agent/tools"
)

var logger = xlog.NewPackageLogger("github.com/petasbytes/mcp-agent/internal", "session")

// Dialer opens a channel to the peer at path.
type Dialer func(ctx context.Context, path string) (transport.Channel, error)

// SpawnDialer starts the peer as a child process.
func SpawnDialer(ctx context.Context, path string) (transport.Channel, error) {
	ch, err := transport.Spawn(ctx, path)
	if err != nil {
		return nil, err
	}
	return ch, nil
}

type options struct {
	dialer     Dialer
	clientOpts []option.RequestOption
}

// Option customizes Connect.
type Option func(*options)

// WithDialer replaces the default SpawnDialer.
func WithDialer(d Dialer) Option {
	return func(o *options) { o.dialer = d }
}

// WithClientOptions passes request options to the Anthropic client.
func WithClientOptions(opts ...option.RequestOption) Option {
	return func(o *options) { o.clientOpts = append(o.clientOpts, opts...) }
}

type Session struct {
	channel  transport.Channel
	registry *tools.Registry
	runner   *runner.Runner

	closeOnce sync.Once
	closeErr  error
}

// Connect validates cfg, opens the channel and discovers the peer's tools.
// Configuration is checked before anything is spawned. If discovery fails
// the channel is closed before returning.
func Connect(ctx context.Context, cfg config.Config, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{dialer: SpawnDialer}
	for _, opt := range opts {
		opt(&o)
	}

	ch, err := o.dialer(ctx, cfg.ServerPath)
	if err != nil {
		if errkind.Kind(err) == nil {
			err = errkind.Connection(err)
		}
		return nil, errors.Wrapf(err, "connect to %s", cfg.ServerPath)
	}

	registry, err := tools.Discover(ctx, ch)
	if err != nil {
		if cerr := ch.Close(); cerr != nil {
			logger.KV(xlog.WARNING, "event", "peer_close", "err", cerr.Error())
		}
		return nil, err
	}
	logger.KV(xlog.DEBUG, "event", "session_ready", "server", cfg.ServerPath, "tools", registry.List())

	client := provider.NewAnthropicClient(cfg.APIKey, o.clientOpts...)
	r := runner.New(client, registry, ch)
	r.Model = anthropic.Model(cfg.Model)
	r.MaxTokens = cfg.MaxTokens
	r.System = cfg.SystemPrompt

	return &Session{
		channel:  ch,
		registry: registry,
		runner:   r,
	}, nil
}

// Tools returns the discovered tool names in discovery order.
func (s *Session) Tools() []string {
	return s.registry.List()
}

// Registry returns the tool snapshot taken at connect time.
func (s *Session) Registry() *tools.Registry {
	return s.registry
}

// Query resolves one operator query through the model and returns its
// transcript. Each query starts a fresh conversation.
func (s *Session) Query(ctx context.Context, query string) (*runner.Result, error) {
	return s.runner.Run(ctx, query)
}

// InvokeDirect calls a tool without involving the model. Unknown names fail
// with a NotFound error and never reach the peer. The outcome is returned as
// the peer produced it.
func (s *Session) InvokeDirect(ctx context.Context, name string, args json.RawMessage) (*transport.Outcome, error) {
	if _, err := s.registry.Resolve(name); err != nil {
		return nil, err
	}
	logger.ContextKV(ctx, xlog.DEBUG, "event", "direct_invoke", "tool", name, "args", string(args))
	return s.channel.Invoke(ctx, name, args)
}

// Close releases the peer. It is safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.channel.Close()
		logger.KV(xlog.DEBUG, "event", "session_closed")
	})
	return s.closeErr
}
