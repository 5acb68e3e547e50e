// Package server implements the MCP (Model Context Protocol) server for the
// sprite background remover.
//
// The server speaks JSON-RPC 2.0 over stdio, one request per line. Responses
// go to stdout; logs go to stderr.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Image information:
//   - image_load: Load an image and report its metadata
//   - image_sample_color: Colour at one pixel or several labeled points
//
// Background removal:
//   - sprite_detect_background: Report the edge samples and background colours
//   - sprite_remove_background: Key out one frame and write a transparent PNG
//   - sprite_process_directory: Key out every frame in a directory in parallel
//
// Sheets and palettes:
//   - sprite_compose_sheet: Lay frames out on a sprite sheet
//   - sprite_palette: Dominant colours of a keyed sprite
//
// # Configuration
//
// ConfigFromEnv reads SPRITE_MCP_LOG_LEVEL, SPRITE_MCP_WORKERS,
// SPRITE_MCP_TOLERANCE, SPRITE_MCP_EDGE_SIZE, SPRITE_MCP_PADDING and
// SPRITE_MCP_NO_CROP. Arguments passed to a tool call override these
// defaults for that call only.
//
// # Image Caching
//
// The inspection tools (image_load, image_sample_color,
// sprite_detect_background, sprite_palette) read images through an in-memory
// cache keyed by path. The processing tools never read from it, and evict
// every file they write so later inspections see the new content.
//
// # Error Handling
//
//   - -32601: unknown method
//   - -32602: malformed or out-of-range tool arguments, unknown tool
//   - -32000: tool execution failure; data carries the Go error string
//
// Per-frame failures in sprite_process_directory are not errors: they are
// reported in the returned summary.
package server
