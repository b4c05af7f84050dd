package codec

import (
	"context"
	"fmt"
	"strings"

	"trimmer/internal/util"
)

// DetectSupported asks ffmpeg which encoders it was built with and returns
// the catalog entries that appear in the listing. Each output line counts
// for at most one codec.
func DetectSupported(ctx context.Context, r util.CmdRunner, ffmpegPath string) ([]Codec, error) {
	code, out, err := util.Output(ctx, r, ffmpegPath, "-hide_banner", "-encoders")
	if err != nil {
		return nil, fmt.Errorf("failed to get codecs: %w", err)
	}
	if code != 0 {
		return nil, fmt.Errorf("failed to get codecs (exit %d): %s", code, strings.TrimSpace(out))
	}

	var found []Codec
	seen := make(map[string]bool)
	for _, line := range strings.Split(out, "\n") {
		for _, c := range known {
			if strings.Contains(line, c.Name) {
				if !seen[c.Name] {
					seen[c.Name] = true
					found = append(found, c)
				}
				break
			}
		}
	}
	return found, nil
}

// PreferHEVC picks the default encoder: NVENC when the GPU description
// mentions NVIDIA and ffmpeg has it, otherwise libx265. libx265 is chosen
// over VideoToolbox because it is the faster of the two on Apple Silicon.
func PreferHEVC(supported []Codec, gpuDescription string) (Codec, error) {
	if strings.Contains(strings.ToLower(gpuDescription), "nvidia") && contains(supported, HEVCNvenc.Name) {
		return HEVCNvenc, nil
	}
	if contains(supported, LibX265.Name) {
		return LibX265, nil
	}
	return Codec{}, ErrNoHEVCCodec
}

// Select returns the supported codec called name.
func Select(supported []Codec, name string) (Codec, error) {
	for _, c := range supported {
		if c.Name == name {
			return c, nil
		}
	}
	if _, ok := Lookup(name); ok {
		return Codec{}, fmt.Errorf("%w: %s is not available in this ffmpeg build", ErrUnsupportedCodec, name)
	}
	return Codec{}, fmt.Errorf("%w: %s", ErrUnsupportedCodec, name)
}

func contains(cs []Codec, name string) bool {
	for _, c := range cs {
		if c.Name == name {
			return true
		}
	}
	return false
}
