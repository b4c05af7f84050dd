package media

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"trimmer/internal/model"
	naming "trimmer/internal/util/media"
)

// CollectFiles expands paths into the list of video files to process.
// Directories contribute files with a supported extension, descending into
// subdirectories only when recursive is set. Our own in-progress outputs
// are skipped. An explicitly named file with an unsupported extension is an
// error. Duplicates are removed; order follows the arguments and then
// lexical order within each directory.
func CollectFiles(paths []string, recursive bool) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	add := func(p string) {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, root := range paths {
		fi, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !fi.IsDir() {
			if _, ok := model.ContainerTypeForFile(root); !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnsupportedContainer, root)
			}
			add(root)
			continue
		}

		err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if p != root && !recursive {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() || naming.IsTempOutput(p) {
				return nil
			}
			if _, ok := model.ContainerTypeForFile(p); ok {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
