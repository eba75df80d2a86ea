// Package tools holds the capability registry and tool definition helpers.
//
// Includes:
//   - Registry: discovery-ordered snapshot of the peer's capabilities, built once per session.
//   - Declarations: 1:1, order-preserving translation into Messages API tool declarations.
//   - ToolDefinition: name, description, JSON input schema, handler (for serving tools).
//   - GenerateSchema[T](): derive JSON Schema from Go structs.
package tools
