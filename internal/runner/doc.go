// Package runner drives one query to completion against the Messages API.
//
// States:
//
//	AwaitingQuery -> RequestingCompletion -> DispatchingTools -> RequestingCompletion ... -> Done
//
// Invariants:
//   - every tool_use is answered by exactly one tool_result with the same id
//     before the next completion request;
//   - tool requests from one response are dispatched sequentially, in emission order;
//   - the full conversation is resent on every request.
//
// Flow:
//
//	user(text) -> assistant(tool_use) -> user(tool_result) -> assistant(text)
package runner
