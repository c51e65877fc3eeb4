// Package server declares the MCP tool surface and shapes API payloads
// into tool responses. Errors from lower layers are wrapped with an
// operation-specific prefix and returned as tool errors; nothing here is
// fatal to the process.
package server
