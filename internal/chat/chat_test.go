package chat_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/petasbytes/mcp-agent/internal/chat"
	"github.com/petasbytes/mcp-agent/internal/errkind"
	"github.com/petasbytes/mcp-agent/internal/runner"
	"github.com/petasbytes/mcp-agent/internal/transport"
	"github.com/petasbytes/mcp-agent/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type invocation struct {
	name string
	args string
}

type fakeBackend struct {
	queries []string
	invokes []invocation
	answer  func(q string) (*runner.Result, error)
}

func (f *fakeBackend) Query(_ context.Context, q string) (*runner.Result, error) {
	f.queries = append(f.queries, q)
	if f.answer != nil {
		return f.answer(q)
	}
	return &runner.Result{Transcript: []string{"answer to " + q}}, nil
}

func (f *fakeBackend) InvokeDirect(_ context.Context, name string, args json.RawMessage) (*transport.Outcome, error) {
	f.invokes = append(f.invokes, invocation{name: name, args: string(args)})
	if name != "get_epoch_time" && name != "count_characters" {
		return nil, errkind.NotFound(name)
	}
	return &transport.Outcome{Content: []transport.ContentItem{transport.TextItem("result of " + name)}}, nil
}

func (f *fakeBackend) Tools() []string {
	return []string{"get_epoch_time", "count_characters"}
}

func run(t *testing.T, b chat.Backend, input string, h *memory.History) string {
	t.Helper()
	var out bytes.Buffer
	l := &chat.Loop{Backend: b, In: strings.NewReader(input), Out: &out, History: h}
	require.NoError(t, l.Run(context.Background()))
	return out.String()
}

func TestRun_BannerListsTools(t *testing.T) {
	out := run(t, &fakeBackend{}, "", nil)
	assert.Contains(t, out, "MCP Client Started!")
	assert.Contains(t, out, "Connected to server with tools: get_epoch_time, count_characters")
	assert.Contains(t, out, "'quit'")
}

func TestRun_QueryPrintsAnswer(t *testing.T) {
	b := &fakeBackend{}
	out := run(t, b, "what time is it?\n", nil)

	assert.Equal(t, []string{"what time is it?"}, b.queries)
	assert.Contains(t, out, "Answer:\nanswer to what time is it?\n")
}

func TestRun_QuitStopsLoop(t *testing.T) {
	for _, cmd := range []string{"quit", "exit", "QUIT", "  Exit  "} {
		b := &fakeBackend{}
		run(t, b, "first\n"+cmd+"\nnever\n", nil)
		assert.Equal(t, []string{"first"}, b.queries, cmd)
	}
}

func TestRun_BlankLinesIgnored(t *testing.T) {
	b := &fakeBackend{}
	run(t, b, "\n   \nhello\n", nil)
	assert.Equal(t, []string{"hello"}, b.queries)
}

func TestRun_QueryErrorIsReportedAndLoopContinues(t *testing.T) {
	b := &fakeBackend{answer: func(q string) (*runner.Result, error) {
		if q == "bad" {
			return nil, errkind.Completion(errors.New("upstream 500"))
		}
		return &runner.Result{Transcript: []string{"ok"}}, nil
	}}
	out := run(t, b, "bad\ngood\n", nil)

	assert.Contains(t, out, "[ERROR] upstream 500")
	assert.Contains(t, out, "Answer:\nok\n")
	assert.Equal(t, []string{"bad", "good"}, b.queries)
}

func TestRun_ToolCommand(t *testing.T) {
	b := &fakeBackend{}
	out := run(t, b, `!tool count_characters {"word": "ab3 #"}`+"\n!tool get_epoch_time\n", nil)

	require.Len(t, b.invokes, 2)
	assert.Equal(t, invocation{name: "count_characters", args: `{"word": "ab3 #"}`}, b.invokes[0])
	assert.Equal(t, invocation{name: "get_epoch_time", args: "{}"}, b.invokes[1])
	assert.Contains(t, out, "Result:\nresult of count_characters\n")
	assert.Empty(t, b.queries, "tool commands must bypass the model")
}

func TestRun_ToolCommandErrors(t *testing.T) {
	b := &fakeBackend{}
	out := run(t, b, "!tool\n!tool get_epoch_time {not json\n!tool missing {}\n", nil)

	assert.Contains(t, out, "[ERROR] usage: !tool <name> <json-arguments>")
	assert.Contains(t, out, "[ERROR] invalid JSON arguments for get_epoch_time")
	assert.Contains(t, out, "[ERROR] tool missing does not exist")
	require.Len(t, b.invokes, 1)
	assert.Equal(t, "missing", b.invokes[0].name)
}

func TestRun_RecordsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	h, err := memory.OpenHistory(path)
	require.NoError(t, err)

	run(t, &fakeBackend{}, "one\n!tool get_epoch_time\ntwo\n", h)

	msgs, err := memory.LoadHistory(path)
	require.NoError(t, err)
	require.Len(t, msgs, 4)
	assert.Equal(t, memory.Message{Role: memory.RoleUser, Text: "one"}, msgs[0])
	assert.Equal(t, memory.Message{Role: memory.RoleAssistant, Text: "answer to one"}, msgs[1])
	assert.Equal(t, "two", msgs[2].Text)

	reopened, err := memory.OpenHistory(path)
	require.NoError(t, err)
	out := run(t, &fakeBackend{}, "", reopened)
	assert.Contains(t, out, "History: 2 prior exchanges")
}

func TestRun_ContextCancelReturns(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	l := &chat.Loop{Backend: &fakeBackend{}, In: r, Out: io.Discard}

	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not stop on cancellation")
	}
}
