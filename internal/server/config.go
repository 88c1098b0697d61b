package server

import "github.com/trusted-tools/ghostjobs/internal/logging"

type Config struct {
	// ListenAddr is the HTTP listen address for the API server.
	ListenAddr string

	// EnableSwagger mounts the OpenAPI UI under /swagger/.
	EnableSwagger bool

	Logger logging.Logger
}
