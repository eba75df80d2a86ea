// Package telemetry writes structured JSONL events describing query progress.
// Events carry sizes and identifiers only; raw tool arguments and results are
// never written.
package telemetry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/effective-security/xlog"
	"github.com/tidwall/sjson"
)

var logger = xlog.NewPackageLogger("github.com/petasbytes/mcp-agent/internal", "telemetry")

// EventsFile is the file name inside EventsDir.
const EventsFile = "events.jsonl"

// Emit appends a single JSON line to EventsDir()/events.jsonl when observation
// is enabled. The line carries the fields plus "time" (RFC3339Nano) and "event".
// The caller's map is not modified.
func Emit(name string, fields map[string]any) {
	if !ObserveEnabled() {
		return
	}

	b := []byte(`{}`)
	if len(fields) > 0 {
		var err error
		if b, err = json.Marshal(fields); err != nil {
			logger.KV(xlog.WARNING, "event", "telemetry_marshal", "name", name, "err", err.Error())
			return
		}
	}
	b, err := sjson.SetBytes(b, "time", time.Now().UTC().Format(time.RFC3339Nano))
	if err == nil {
		b, err = sjson.SetBytes(b, "event", name)
	}
	if err != nil {
		logger.KV(xlog.WARNING, "event", "telemetry_stamp", "name", name, "err", err.Error())
		return
	}

	dir := EventsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.KV(xlog.WARNING, "event", "telemetry_mkdir", "dir", dir, "err", err.Error())
		return
	}

	path := filepath.Join(dir, EventsFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logger.KV(xlog.WARNING, "event", "telemetry_open", "path", path, "err", err.Error())
		return
	}
	defer f.Close()

	if _, err := f.Write(append(b, '\n')); err != nil {
		logger.KV(xlog.WARNING, "event", "telemetry_write", "path", path, "err", err.Error())
	}
}
