package tools_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	cerrors "github.com/cockroachdb/errors"
	"github.com/petasbytes/mcp-agent/internal/errkind"
	"github.com/petasbytes/mcp-agent/internal/transport"
	"github.com/petasbytes/mcp-agent/tools"
	"github.com/tidwall/gjson"
)

type fakeEnumerator struct {
	caps  []transport.Capability
	err   error
	calls int
}

func (f *fakeEnumerator) ListCapabilities(context.Context) ([]transport.Capability, error) {
	f.calls++
	return f.caps, f.err
}

func sampleCaps() []transport.Capability {
	return []transport.Capability{
		{Name: "get_epoch_time", Description: "Get the current Unix epoch time in seconds.", InputSchema: json.RawMessage(`{"type":"object","properties":{}}`)},
		{Name: "count_characters", Description: "Count characters.", InputSchema: json.RawMessage(`{"type":"object","properties":{"word":{"type":"string","description":"text"}},"required":["word"],"additionalProperties":false}`)},
		{Name: "get_weather", Description: "Weather.", InputSchema: json.RawMessage(`{"$schema":"https://json-schema.org/draft/2020-12/schema","type":"object","properties":{"location":{"type":"string"}},"required":["location"]}`)},
	}
}

func TestDiscover_PreservesOrder(t *testing.T) {
	e := &fakeEnumerator{caps: sampleCaps()}
	r, err := tools.Discover(context.Background(), e)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if e.calls != 1 {
		t.Fatalf("expected exactly one enumeration, got %d", e.calls)
	}
	want := []string{"get_epoch_time", "count_characters", "get_weather"}
	got := r.List()
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("order mismatch: got %v want %v", got, want)
	}
	if r.Len() != 3 {
		t.Fatalf("len: got %d", r.Len())
	}
}

func TestDiscover_EnumerationFailureIsConnectionError(t *testing.T) {
	e := &fakeEnumerator{err: errors.New("pipe closed")}
	_, err := tools.Discover(context.Background(), e)
	if err == nil {
		t.Fatal("expected error")
	}
	if !cerrors.Is(err, errkind.ErrConnection) {
		t.Fatalf("expected connection error, got %v", err)
	}
}

func TestResolve_NotFoundIsStable(t *testing.T) {
	r := tools.NewRegistry(sampleCaps()...)
	for i := 0; i < 3; i++ {
		if _, err := r.Resolve("missing"); !cerrors.Is(err, errkind.ErrNotFound) {
			t.Fatalf("call %d: expected NotFound, got %v", i, err)
		}
		if _, err := r.Resolve("count_characters"); err != nil {
			t.Fatalf("call %d: unexpected err: %v", i, err)
		}
	}
	if r.Has("missing") || !r.Has("get_weather") {
		t.Fatal("Has disagrees with Resolve")
	}
}

func TestNewRegistry_DuplicateKeepsFirst(t *testing.T) {
	r := tools.NewRegistry(
		transport.Capability{Name: "a", Description: "first"},
		transport.Capability{Name: "b"},
		transport.Capability{Name: "a", Description: "second"},
	)
	if fmt.Sprint(r.List()) != "[a b]" {
		t.Fatalf("unexpected names: %v", r.List())
	}
	c, _ := r.Resolve("a")
	if c.Description != "first" {
		t.Fatalf("expected first occurrence, got %q", c.Description)
	}
}

func TestDeclarations_OneToOneSchemaPreserving(t *testing.T) {
	caps := sampleCaps()
	r := tools.NewRegistry(caps...)
	decls := r.Declarations()
	if len(decls) != len(caps) {
		t.Fatalf("expected %d declarations, got %d", len(caps), len(decls))
	}

	for i, d := range decls {
		b, err := json.Marshal(d)
		if err != nil {
			t.Fatalf("marshal declaration %d: %v", i, err)
		}
		if got := gjson.GetBytes(b, "name").String(); got != caps[i].Name {
			t.Fatalf("declaration %d: name %q want %q", i, got, caps[i].Name)
		}
		if got := gjson.GetBytes(b, "description").String(); got != caps[i].Description {
			t.Fatalf("declaration %d: description %q want %q", i, got, caps[i].Description)
		}

		var gotSchema, wantSchema map[string]any
		if err := json.Unmarshal([]byte(gjson.GetBytes(b, "input_schema").Raw), &gotSchema); err != nil {
			t.Fatalf("declaration %d: input_schema: %v", i, err)
		}
		if err := json.Unmarshal(caps[i].InputSchema, &wantSchema); err != nil {
			t.Fatal(err)
		}
		delete(wantSchema, "$schema")
		if fmt.Sprint(gotSchema) != fmt.Sprint(wantSchema) {
			t.Fatalf("declaration %d: schema changed:\n got  %v\n want %v", i, gotSchema, wantSchema)
		}
	}
}

func TestInputSchemaParam_Invalid(t *testing.T) {
	p := tools.InputSchemaParam(json.RawMessage(`{oops`))
	if p.Properties != nil || p.Required != nil || p.ExtraFields != nil {
		t.Fatalf("expected zero param for invalid schema, got %+v", p)
	}
}
