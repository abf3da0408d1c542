// Package memory defines the Provider interface for conversation history.
// A chat session keeps its ordered [ai.Message] history in a Provider; the
// interface covers exactly what a turn-based session needs: append, read
// back (all or the last n), count, and reset to a seed.
// The bundled implementation lives in the sibling package
// [github.com/leofalp/unichat/providers/memory/inmemory].
package memory
