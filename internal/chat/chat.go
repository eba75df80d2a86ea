// Package chat runs the interactive prompt loop in front of a session.
//
// Each input line is one of:
//
//	quit | exit                    end the loop
//	!tool <name> [json-arguments]  call a tool directly, bypassing the model
//	anything else                  resolve as a query
package chat

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/petasbytes/mcp-agent/internal/runner"
	"github.com/petasbytes/mcp-agent/internal/transport"
	"github.com/petasbytes/mcp-agent/memory"
	"github.com/tidwall/gjson"
)

var logger = xlog.NewPackageLogger("github.com/petasbytes/mcp-agent/internal", "chat")

// ToolCommand prefixes a direct invocation.
const ToolCommand = "!tool"

// Backend is what the loop drives. *session.Session implements it.
type Backend interface {
	Query(ctx context.Context, query string) (*runner.Result, error)
	InvokeDirect(ctx context.Context, name string, args json.RawMessage) (*transport.Outcome, error)
	Tools() []string
}

type Loop struct {
	Backend Backend
	In      io.Reader
	Out     io.Writer
	// History, if set, receives every answered query.
	History *memory.History
}

// Run prints the banner and serves input lines until quit, end of input or
// ctx cancellation. None of these is an error; only a failed read is.
func (l *Loop) Run(ctx context.Context) error {
	l.banner()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	scanner := bufio.NewScanner(l.In)
	inputCh := make(chan string)
	go func() {
		defer close(inputCh)
		for scanner.Scan() {
			select {
			case inputCh <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		fmt.Fprint(l.Out, "\nQuery: ")
		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			fmt.Fprintln(l.Out)
			return nil
		case line, ok = <-inputCh:
			if !ok {
				fmt.Fprintln(l.Out)
				if err := scanner.Err(); err != nil {
					return errors.Wrap(err, "read input")
				}
				return nil
			}
		}

		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case strings.EqualFold(line, "quit"), strings.EqualFold(line, "exit"):
			return nil
		case line == ToolCommand || strings.HasPrefix(line, ToolCommand+" "):
			l.invoke(ctx, strings.TrimSpace(strings.TrimPrefix(line, ToolCommand)))
		default:
			l.query(ctx, line)
		}
	}
}

func (l *Loop) banner() {
	fmt.Fprintln(l.Out, "MCP Client Started!")
	fmt.Fprintf(l.Out, "Connected to server with tools: %s\n", strings.Join(l.Backend.Tools(), ", "))
	if l.History != nil {
		if n := l.History.Exchanges(); n > 0 {
			fmt.Fprintf(l.Out, "History: %d prior exchanges in %s\n", n, l.History.Path)
		}
	}
	fmt.Fprintf(l.Out, "Type your queries, %s <name> <json-arguments> to call a tool, or 'quit' to exit.\n", ToolCommand)
}

func (l *Loop) query(ctx context.Context, q string) {
	res, err := l.Backend.Query(ctx, q)
	if err != nil {
		fmt.Fprintf(l.Out, "[ERROR] %v\n", err)
		return
	}
	text := res.Text()
	fmt.Fprintf(l.Out, "\nAnswer:\n%s\n", text)

	if l.History != nil {
		if err := l.History.Record(q, text); err != nil {
			logger.KV(xlog.WARNING, "event", "history_save", "path", l.History.Path, "err", err.Error())
		}
	}
}

func (l *Loop) invoke(ctx context.Context, rest string) {
	name, args, _ := strings.Cut(rest, " ")
	if name == "" {
		fmt.Fprintf(l.Out, "[ERROR] usage: %s <name> <json-arguments>\n", ToolCommand)
		return
	}
	args = strings.TrimSpace(args)
	if args == "" {
		args = "{}"
	}
	if !gjson.Valid(args) {
		fmt.Fprintf(l.Out, "[ERROR] invalid JSON arguments for %s: %s\n", name, args)
		return
	}

	out, err := l.Backend.InvokeDirect(ctx, name, json.RawMessage(args))
	if err != nil {
		fmt.Fprintf(l.Out, "[ERROR] %v\n", err)
		return
	}
	fmt.Fprintf(l.Out, "\nResult:\n")
	for _, item := range out.Content {
		fmt.Fprintln(l.Out, item.String())
	}
}
