package telemetry

import (
	"context"

	"github.com/petasbytes/mcp-agent/internal/textstats"
)

// EmitQueryFeatures records size features of an operator query.
func EmitQueryFeatures(ctx context.Context, query string) {
	if !ObserveEnabled() {
		return
	}
	turnID, _ := TurnIDFromContext(ctx)
	f := textstats.CountFeatures(query)
	Emit("query_features", map[string]any{
		"turn_id":          turnID,
		"features_version": "1",
		"query": map[string]any{
			"bytes": f.Bytes,
			"runes": f.Runes,
			"words": f.Words,
			"lines": f.Lines,
		},
	})
}
