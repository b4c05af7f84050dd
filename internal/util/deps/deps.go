package deps

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// ErrToolNotFound is returned when ffmpeg or ffprobe cannot be located.
var ErrToolNotFound = errors.New("tool not found")

// FindFFmpeg returns the path to the ffmpeg binary.
// If customPath is non-empty, it tries that path or looks it up in PATH.
func FindFFmpeg(customPath string) (string, error) {
	return find("ffmpeg", customPath)
}

// FindFFprobe returns the path to the ffprobe binary.
// If customPath is non-empty, it tries that path or looks it up in PATH.
func FindFFprobe(customPath string) (string, error) {
	return find("ffprobe", customPath)
}

func find(name, customPath string) (string, error) {
	if customPath != "" {
		if fi, err := os.Stat(customPath); err == nil && !fi.IsDir() {
			return customPath, nil
		}
		if p, err := exec.LookPath(customPath); err == nil {
			return p, nil
		}
		return "", fmt.Errorf("%w: could not find %s at %q", ErrToolNotFound, name, customPath)
	}
	if p, err := exec.LookPath(name); err == nil {
		return p, nil
	}
	return "", fmt.Errorf("%w: could not find %s in PATH. Please install %s", ErrToolNotFound, name, name)
}
