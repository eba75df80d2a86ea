package transport

import (
	"context"
	"encoding/json"
	"os/exec"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/petasbytes/mcp-agent/internal/errkind"
)

var logger = xlog.NewPackageLogger("github.com/petasbytes/mcp-agent/internal", "transport")

// ClientName and ClientVersion identify the agent during the handshake.
const (
	ClientName    = "mcp-agent"
	ClientVersion = "0.1.0"
)

// Channel is a live connection to a tool-serving peer.
type Channel interface {
	// ListCapabilities enumerates the peer's tools in the order it reports them.
	ListCapabilities(ctx context.Context) ([]Capability, error)
	// Invoke calls the named tool. When the peer flags the result as an error
	// the outcome is returned together with an invocation error.
	Invoke(ctx context.Context, name string, args json.RawMessage) (*Outcome, error)
	// Close ends the session and releases the peer.
	Close() error
}

// MCPChannel is a Channel backed by an MCP client session.
type MCPChannel struct {
	client  *mcp.Client
	session *mcp.ClientSession
	// cmd is the spawned peer, nil for channels opened on other transports.
	cmd *exec.Cmd
}

var _ Channel = (*MCPChannel)(nil)

// Spawn starts the peer at path and completes the MCP handshake with it.
// The runtime is chosen from the path's extension, see CommandFor.
func Spawn(ctx context.Context, path string) (*MCPChannel, error) {
	cmd, err := CommandFor(path)
	if err != nil {
		return nil, err
	}
	logger.KV(xlog.DEBUG, "event", "peer_spawn", "command", cmd.String())

	c := exec.Command(cmd.Name, cmd.Args...) //nolint:gosec // the operator chooses the peer
	ch, err := Open(ctx, &mcp.CommandTransport{Command: c})
	if err != nil {
		return nil, err
	}
	ch.cmd = c
	return ch, nil
}

// Exited reports whether the spawned peer process has been reaped. It is
// false for channels that did not spawn a process.
func (c *MCPChannel) Exited() bool {
	return c.cmd != nil && c.cmd.ProcessState != nil
}

// Open connects over an existing MCP transport. Spawn uses it with a command
// transport; tests use in-memory transports.
func Open(ctx context.Context, t mcp.Transport) (*MCPChannel, error) {
	client := mcp.NewClient(&mcp.Implementation{
		Name:    ClientName,
		Version: ClientVersion,
	}, nil)

	session, err := client.Connect(ctx, t, nil)
	if err != nil {
		return nil, errkind.Connection(errors.Wrap(err, "connect to server"))
	}
	return &MCPChannel{client: client, session: session}, nil
}

// ListCapabilities pages through the peer's tool list until it is exhausted.
func (c *MCPChannel) ListCapabilities(ctx context.Context) ([]Capability, error) {
	var caps []Capability
	params := &mcp.ListToolsParams{}
	for {
		res, err := c.session.ListTools(ctx, params)
		if err != nil {
			return nil, errkind.Connection(errors.Wrap(err, "list tools"))
		}
		for _, t := range res.Tools {
			capability, err := capabilityFromSDK(t)
			if err != nil {
				return nil, errkind.Connection(err)
			}
			caps = append(caps, capability)
		}
		if res.NextCursor == "" {
			break
		}
		params.Cursor = res.NextCursor
	}
	return caps, nil
}

// Invoke calls a tool on the peer. Arguments are forwarded as-is; the peer is
// responsible for validating them.
func (c *MCPChannel) Invoke(ctx context.Context, name string, args json.RawMessage) (*Outcome, error) {
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}
	res, err := c.session.CallTool(ctx, &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		return nil, errkind.Invocation(errors.Wrapf(err, "call tool %s", name))
	}

	out := &Outcome{
		Content: contentFromSDK(res.Content),
		IsError: res.IsError,
	}
	if res.IsError {
		msg := out.Text()
		if msg == "" {
			msg = "tool reported an error"
		}
		return out, errkind.Invocation(errors.New(msg))
	}
	return out, nil
}

// Close terminates the session. For a spawned peer the SDK closes stdin,
// waits for exit and escalates to SIGTERM/SIGKILL.
func (c *MCPChannel) Close() error {
	return c.session.Close()
}

func capabilityFromSDK(t *mcp.Tool) (Capability, error) {
	schema := json.RawMessage(`{"type":"object"}`)
	if t.InputSchema != nil {
		b, err := json.Marshal(t.InputSchema)
		if err != nil {
			return Capability{}, errors.Wrapf(err, "marshal input schema of %q", t.Name)
		}
		schema = b
	}
	return Capability{
		Name:        t.Name,
		Description: t.Description,
		InputSchema: schema,
	}, nil
}
