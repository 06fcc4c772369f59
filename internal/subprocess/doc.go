// Package subprocess provides subprocess-based transport for the Agent CLI.
//
// This package implements the Transport interface by spawning the Agent CLI
// as a child process and communicating via stdin/stdout. It handles process
// lifecycle management, message buffering, and error handling.
package subprocess
