//go:build ORT

package provider

import (
	"os"
	"path/filepath"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/options"
)

// newHugotSession uses the ONNX Runtime backend. Requires libonnxruntime
// on the host; see resolveORTLibDir for where it is looked up.
func newHugotSession() (*hugot.Session, error) {
	opts := []options.WithOption{}
	if libDir := resolveORTLibDir(); libDir != "" {
		opts = append(opts, options.WithOnnxLibraryPath(libDir))
	}
	return hugot.NewORTSession(opts...)
}

// resolveORTLibDir locates the ONNX Runtime shared library directory:
// the ORT_LIB_DIR environment variable wins, then a lib/ directory next
// to the binary, then lib/ under the working directory. An empty return
// leaves the lookup to hugot's platform defaults.
func resolveORTLibDir() string {
	if dir := os.Getenv("ORT_LIB_DIR"); dir != "" {
		return dir
	}

	var candidates []string
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), "lib"))
	}
	if wd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(wd, "lib"))
	}

	for _, dir := range candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return ""
}
