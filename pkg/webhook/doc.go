// Package webhook turns a single stateless webhook call from a conversational
// platform into a structured conversation turn.
//
// Lifecycle:
//   - Normalize detects which of the four supported request shapes (Actions
//     SDK or Dialogflow, legacy or current schema) produced the body and builds
//     a Conversation with the inputs, resolved arguments, surface capabilities
//     and decoded state tokens for this turn.
//   - Application code accumulates response fragments with Ask (expect a
//     follow-up) or Close (end the conversation).
//   - Finalize composes the fragments exactly once into a rich response plus at
//     most one expected next input, and attaches the state tokens to carry
//     forward.
//   - Serialize renders the composed result into the wire envelope of the
//     calling protocol/version.
//
// The engine performs no I/O, holds no cross-call state and never retries;
// transport glue lives in pkg/httpadapter.
package webhook
