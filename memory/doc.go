// Package memory holds conversation state.
//
// Conversation is the append-only turn sequence for one query; it is replayed
// in full on every completion request and discarded when the query is done.
//
// History is the operator-facing record of past exchanges (role + text only).
// It is persisted to disk but never replayed into a Conversation.
package memory
