// Package module holds the module contract and port lookup helpers
// it sits below modkit so module packages can import it without cycles
package module

import phttp "circlesync/internal/platform/net/http"

// Module is anything the API can mount
// Ports returns the module's exported port bundle or nil
type Module interface {
	Name() string
	MountRoutes(r phttp.Router)
	Ports() any
}
