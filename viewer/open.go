//go:build !js

package viewer

import "fmt"

// Open opens the document at path with the configured renderer backend.
// Failures are reported as *LoadError and must not be retried automatically.
func Open(path string, backend string) (Session, error) {
	switch backend {
	case BackendFitz, "":
		return OpenFitz(path)
	case BackendPDFium:
		return OpenPDFium(path)
	default:
		return nil, fmt.Errorf("unknown renderer backend %q", backend)
	}
}
