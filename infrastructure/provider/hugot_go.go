//go:build !ORT

package provider

import "github.com/knights-analytics/hugot"

// newHugotSession uses the pure-Go inference backend. Slower than ONNX
// Runtime but needs no shared library, which keeps the default build
// self-contained.
func newHugotSession() (*hugot.Session, error) {
	return hugot.NewGoSession()
}
