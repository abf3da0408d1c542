// Package inmemory provides a concurrency-safe, slice-backed implementation
// of the [memory.Provider] interface for storing chat message history in process memory.
// Nothing survives a restart.
// The main entry point is [New], which returns a ready-to-use [ArrayMemory] instance.
package inmemory
