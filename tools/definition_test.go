package tools_test

import (
	"testing"

	"github.com/petasbytes/mcp-agent/tools"
	"github.com/tidwall/gjson"
)

type wordInput struct {
	Word string `json:"word" jsonschema_description:"The text to count characters in"`
}

func TestGenerateSchema_Object(t *testing.T) {
	s := tools.GenerateSchema[wordInput]()
	if got := gjson.GetBytes(s, "type").String(); got != "object" {
		t.Fatalf("type: got %q", got)
	}
	if got := gjson.GetBytes(s, "properties.word.type").String(); got != "string" {
		t.Fatalf("word type: got %q", got)
	}
	if got := gjson.GetBytes(s, "properties.word.description").String(); got != "The text to count characters in" {
		t.Fatalf("word description: got %q", got)
	}
	if req := gjson.GetBytes(s, "required").Array(); len(req) != 1 || req[0].String() != "word" {
		t.Fatalf("required: got %v", req)
	}
	if gjson.GetBytes(s, "$ref").Exists() {
		t.Fatal("schema should be inlined")
	}
}

func TestGenerateSchema_Empty(t *testing.T) {
	s := tools.GenerateSchema[struct{}]()
	if got := gjson.GetBytes(s, "type").String(); got != "object" {
		t.Fatalf("type: got %q", got)
	}
}
