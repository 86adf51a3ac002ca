package providers

import "time"

const (
	// shutdownTimeout is the maximum time to wait for graceful shutdown of services.
	shutdownTimeout = 30 * time.Second

	// serverVersion is recorded in backup manifests and the OpenAPI document.
	serverVersion = "1.0.0"
)
