package media

import (
	"path/filepath"
	"strings"
)

// TempSuffix marks outputs that are still being written.
const TempSuffix = ".trimmed."

// TempOutputPath returns where the remux output is written before commit:
// the input path followed by ".trimmed.<ext>".
func TempOutputPath(input, ext string) string {
	return input + TempSuffix + strings.TrimPrefix(ext, ".")
}

// FinalOutputPath returns the committed name: the input path with its
// extension replaced by ext.
func FinalOutputPath(input, ext string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + "." + strings.TrimPrefix(ext, ".")
}

// IsTempOutput reports whether path looks like an uncommitted output.
func IsTempOutput(path string) bool {
	return strings.Contains(filepath.Base(path), TempSuffix)
}
