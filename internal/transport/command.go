package transport

import (
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/petasbytes/mcp-agent/internal/errkind"
)

// Command is the program and arguments used to start a peer.
type Command struct {
	Name string
	Args []string
}

func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// runtimes maps a peer artifact's extension to the runtime that executes it.
var runtimes = map[string]func(path string) Command{
	".py":  func(p string) Command { return Command{Name: "python", Args: []string{p}} },
	".js":  func(p string) Command { return Command{Name: "node", Args: []string{p}} },
	".jar": func(p string) Command { return Command{Name: "java", Args: []string{"-jar", p}} },
	".exe": direct,
	"":     direct,
}

func direct(p string) Command { return Command{Name: p} }

// CommandFor selects the command that starts the peer at path.
// Unsupported extensions yield a configuration error and nothing is spawned.
func CommandFor(path string) (Command, error) {
	if strings.TrimSpace(path) == "" {
		return Command{}, errkind.Configuration(errors.New("server path is required"))
	}
	ext := strings.ToLower(filepath.Ext(path))
	build, ok := runtimes[ext]
	if !ok {
		return Command{}, errkind.Configuration(
			errors.Errorf("unsupported server extension %q: expected .py, .js, .jar, .exe or a binary without extension", ext))
	}
	return build(path), nil
}
