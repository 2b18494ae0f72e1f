// Package bridge maps stateless MCP tool calls onto the state of one
// long-lived pump.fun chat connection.
//
// Three pieces make up the core: a fixed-capacity message buffer with FIFO
// eviction, a connection supervisor that folds chat client events into that
// buffer and a coarse connected flag, and a tool catalog whose handlers read
// supervisor state synchronously. Chat-domain conditions (disconnected, empty
// buffer, unauthenticated send) are successful tool results carrying
// explanatory text; only unknown tools and malformed arguments are JSON-RPC
// errors.
package bridge
