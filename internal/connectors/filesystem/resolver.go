package filesystem

import (
	"os"
	"path/filepath"
	"strings"
)

// ResolvePath converts a file:// URI or a ~-prefixed path to a clean local
// path. Other paths pass through cleaned.
func ResolvePath(uri string) string {
	p := strings.TrimPrefix(uri, "file://")
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	if p == "" {
		return p
	}
	return filepath.Clean(p)
}
