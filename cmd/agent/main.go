// Command agent connects to a tool-serving peer and answers operator queries
// with the model, letting it call the peer's tools.
//
//	agent [flags] <path-to-server>
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/joho/godotenv"
	"github.com/petasbytes/mcp-agent/internal/chat"
	"github.com/petasbytes/mcp-agent/internal/config"
	"github.com/petasbytes/mcp-agent/internal/session"
	"github.com/petasbytes/mcp-agent/internal/telemetry"
	"github.com/petasbytes/mcp-agent/memory"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

type flags struct {
	configPath string
	envPath    string
	verbose    bool
	history    string
	observe    bool
	eventsDir  string
	serverPath string
	set        map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (*flags, error) {
	f := &flags{set: map[string]bool{}}
	fs := flag.NewFlagSet("agent", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: agent [flags] <path-to-server>")
		fs.PrintDefaults()
	}
	fs.StringVar(&f.configPath, "config", "", "YAML config file")
	fs.StringVar(&f.envPath, "env", ".env", "dotenv file loaded before the environment is read")
	fs.BoolVar(&f.verbose, "verbose", false, "Enable debug logging")
	fs.BoolVar(&f.verbose, "debug", false, "Alias for -verbose")
	fs.StringVar(&f.history, "history", "", "File that records queries and answers")
	fs.BoolVar(&f.observe, "observe", false, "Write JSONL events")
	fs.StringVar(&f.eventsDir, "events-dir", "", "Directory for events.jsonl")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	// flags may also follow the server path
	if fs.NArg() > 0 {
		f.serverPath = fs.Arg(0)
		if err := fs.Parse(fs.Args()[1:]); err != nil {
			return nil, err
		}
		if fs.NArg() > 0 {
			fs.Usage()
			return nil, errors.Errorf("unexpected arguments: %v", fs.Args())
		}
	}
	if f.serverPath == "" {
		fs.Usage()
		return nil, errors.New("missing server path")
	}
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })
	return f, nil
}

// loadDotEnv loads environment variables from path. Missing files are ignored.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func loadConfig(f *flags) (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return cfg, err
	}
	cfg.ServerPath = f.serverPath
	if f.set["verbose"] || f.set["debug"] {
		cfg.Verbose = f.verbose
	}
	if f.set["history"] {
		cfg.HistoryPath = f.history
	}
	if f.set["observe"] {
		cfg.ObserveJSON = f.observe
	}
	if f.set["events-dir"] {
		cfg.EventsDir = f.eventsDir
	}
	return cfg, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	f, err := parseFlags(args, stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(stderr, "error: %v\n", err)
		}
		return 1
	}

	if err := loadDotEnv(f.envPath); err != nil {
		fmt.Fprintf(stderr, "error: load %s: %v\n", f.envPath, err)
		return 1
	}
	cfg, err := loadConfig(f)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	xlog.SetFormatter(xlog.NewStringFormatter(stderr))
	if cfg.Verbose {
		xlog.SetGlobalLogLevel(xlog.DEBUG)
	} else {
		xlog.SetGlobalLogLevel(xlog.WARNING)
	}
	telemetry.Configure(cfg.ObserveJSON, cfg.EventsDir)

	var history *memory.History
	if cfg.HistoryPath != "" {
		if history, err = memory.OpenHistory(cfg.HistoryPath); err != nil {
			fmt.Fprintf(stderr, "warning: history disabled: %v\n", err)
			history = nil
		}
	}

	s, err := session.Connect(ctx, cfg)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		if err := s.Close(); err != nil {
			fmt.Fprintf(stderr, "warning: close server: %v\n", err)
		}
	}()

	loop := &chat.Loop{Backend: s, In: stdin, Out: stdout, History: history}
	if err := loop.Run(ctx); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, "Exiting...")
	return 0
}
