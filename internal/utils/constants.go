package utils

import "time"

// Version is reported by the health endpoint and the CLI
const Version = "1.0.0"

// =============================================================================
// HTTP Server Constants
// =============================================================================

const (
	// ServerReadTimeout bounds reading a request, body included
	ServerReadTimeout = 30 * time.Second

	// ServerWriteTimeout bounds handling and writing a response
	ServerWriteTimeout = 60 * time.Second

	// ServerIdleTimeout closes idle keep-alive connections
	ServerIdleTimeout = 120 * time.Second

	// ShutdownTimeout is the grace period for in-flight requests on shutdown
	ShutdownTimeout = 10 * time.Second

	// BodyLimit caps request bodies in bytes
	BodyLimit = 16 * 1024 * 1024
)
