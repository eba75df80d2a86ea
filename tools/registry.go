package tools

import (
	"context"
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/petasbytes/mcp-agent/internal/errkind"
	"github.com/petasbytes/mcp-agent/internal/transport"
	"github.com/tidwall/gjson"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var logger = xlog.NewPackageLogger("github.com/petasbytes/mcp-agent", "tools")

// Enumerator lists the capabilities of a peer.
type Enumerator interface {
	ListCapabilities(ctx context.Context) ([]transport.Capability, error)
}

// Registry is an immutable snapshot of the capabilities discovered at connect time.
type Registry struct {
	caps *orderedmap.OrderedMap[string, transport.Capability]
}

// Discover enumerates e once and returns the resulting registry.
func Discover(ctx context.Context, e Enumerator) (*Registry, error) {
	caps, err := e.ListCapabilities(ctx)
	if err != nil {
		if errkind.Kind(err) == nil {
			err = errkind.Connection(err)
		}
		return nil, errors.Wrap(err, "discover tools")
	}
	r := NewRegistry(caps...)
	logger.KV(xlog.DEBUG, "event", "tools_discovered", "tools", r.List())
	return r, nil
}

// NewRegistry builds a registry from caps in the given order. Names are unique
// within a session; a repeated name keeps its first occurrence.
func NewRegistry(caps ...transport.Capability) *Registry {
	om := orderedmap.New[string, transport.Capability](len(caps))
	for _, c := range caps {
		if _, dup := om.Get(c.Name); dup {
			logger.KV(xlog.WARNING, "event", "duplicate_tool", "tool", c.Name)
			continue
		}
		om.Set(c.Name, c)
	}
	return &Registry{caps: om}
}

// Resolve returns the capability with the given name, or a NotFound error.
func (r *Registry) Resolve(name string) (transport.Capability, error) {
	if c, ok := r.caps.Get(name); ok {
		return c, nil
	}
	return transport.Capability{}, errkind.NotFound(name)
}

// Has reports whether name was discovered.
func (r *Registry) Has(name string) bool {
	_, ok := r.caps.Get(name)
	return ok
}

// List returns capability names in discovery order.
func (r *Registry) List() []string {
	names := make([]string, 0, r.caps.Len())
	for p := r.caps.Oldest(); p != nil; p = p.Next() {
		names = append(names, p.Key)
	}
	return names
}

// Len returns the number of capabilities.
func (r *Registry) Len() int { return r.caps.Len() }

// Declarations translates every capability, in discovery order, into the
// Messages API tool declaration shape.
func (r *Registry) Declarations() []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, r.caps.Len())
	for p := r.caps.Oldest(); p != nil; p = p.Next() {
		out = append(out, Declaration(p.Value))
	}
	return out
}

// Declaration translates a single capability.
func Declaration(c transport.Capability) anthropic.ToolUnionParam {
	tp := &anthropic.ToolParam{
		Name:        c.Name,
		InputSchema: InputSchemaParam(c.InputSchema),
	}
	if c.Description != "" {
		tp.Description = anthropic.String(c.Description)
	}
	return anthropic.ToolUnionParam{OfTool: tp}
}

// schemaKeysDropped are meta keys the Messages API does not need.
var schemaKeysDropped = map[string]bool{
	"$schema": true,
	"$id":     true,
}

// InputSchemaParam maps a JSON Schema object onto the SDK's input schema param.
// properties and required map to their typed fields; every other keyword is
// carried through ExtraFields so the schema survives unchanged.
func InputSchemaParam(raw json.RawMessage) anthropic.ToolInputSchemaParam {
	var p anthropic.ToolInputSchemaParam
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return p
	}

	if props := gjson.GetBytes(raw, "properties"); props.Exists() {
		p.Properties = props.Value()
	}
	if req := gjson.GetBytes(raw, "required"); req.IsArray() {
		for _, v := range req.Array() {
			p.Required = append(p.Required, v.String())
		}
	}

	extra := map[string]any{}
	gjson.ParseBytes(raw).ForEach(func(key, value gjson.Result) bool {
		switch k := key.String(); {
		case k == "type", k == "properties", k == "required", schemaKeysDropped[k]:
		default:
			extra[k] = value.Value()
		}
		return true
	})
	if len(extra) > 0 {
		p.ExtraFields = extra
	}
	return p
}
