package agentcli

import "github.com/agentcli/agentcli-go/internal/config"

// Transport defines the interface for Agent CLI communication.
// Implement this to provide custom transports for testing, mocking,
// or alternative communication methods (e.g., remote connections).
//
// The default implementation is CLITransport which spawns a subprocess.
// Custom transports can be injected via AgentOptions.Transport.
type Transport = config.Transport
