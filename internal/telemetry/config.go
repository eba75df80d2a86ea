package telemetry

import (
	"os"
	"sync"

	"github.com/petasbytes/mcp-agent/internal/config"
)

var (
	mu             sync.RWMutex
	observeEnabled bool
	eventsDir      = config.DefaultEventsDir
)

// Configure enables or disables JSONL emission and sets the directory that
// receives events.jsonl. An empty dir keeps the current one.
func Configure(enabled bool, dir string) {
	mu.Lock()
	defer mu.Unlock()
	observeEnabled = enabled
	if dir != "" {
		eventsDir = dir
	}
}

// ObserveEnabled reports whether JSONL emission is on, either by Configure or
// by AGENT_OBSERVE_JSON=1 in the environment.
func ObserveEnabled() bool {
	if os.Getenv(config.EnvObserveJSON) == "1" {
		return true
	}
	mu.RLock()
	defer mu.RUnlock()
	return observeEnabled
}

// EventsDir returns the directory events are written to.
func EventsDir() string {
	mu.RLock()
	defer mu.RUnlock()
	return eventsDir
}
