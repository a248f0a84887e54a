package fileops

import (
	"path/filepath"
	"strings"
)

// SafeName reports whether name can be joined to a directory and still
// name a new file directly inside it.
func SafeName(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return filepath.IsLocal(name) &&
		!strings.ContainsAny(name, `/\`+"\x00") &&
		filepath.Base(name) == name
}
