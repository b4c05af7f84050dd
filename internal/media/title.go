package media

import (
	"path/filepath"
	"strconv"
	"strings"
)

// ExpandTitle fills a per-file title template:
//
//	%t  current title
//	%f  full path
//	%b  base name without extension
//	%e  extension, with the dot
//	%i  zero-based position in the batch
//
// Substitution is a single pass, so text inserted for one token is never
// expanded again.
func ExpandTitle(template, title, path string, index int) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return strings.NewReplacer(
		"%t", title,
		"%f", path,
		"%b", strings.TrimSuffix(base, ext),
		"%e", ext,
		"%i", strconv.Itoa(index),
	).Replace(template)
}
