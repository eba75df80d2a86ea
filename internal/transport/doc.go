// Package transport owns the channel to the tool-serving peer.
//
// The peer is a child process speaking MCP over stdio. The channel exposes two
// operations, enumerate and invoke; framing, the initialize handshake and
// process lifetime stay inside this package.
//
// Close must be called exactly once per channel to release the child process.
package transport
