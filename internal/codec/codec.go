// Package codec describes the HEVC encoders trimmer knows how to drive and
// picks one based on what the local ffmpeg build supports.
package codec

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrNoHEVCCodec is returned when ffmpeg supports none of the preferred encoders.
	ErrNoHEVCCodec = errors.New("cannot find supported HEVC codec")
	// ErrUnsupportedCodec is returned when a requested encoder is unknown or unavailable.
	ErrUnsupportedCodec = errors.New("unsupported codec")
)

// Codec is an encoder name plus the vocabularies ffmpeg accepts for it.
// Values are immutable once built.
type Codec struct {
	Name             string
	Presets          []string
	PreferredPreset  string
	Tunes            []string
	PreferredTune    string
	Profiles         []string
	PreferredProfile string
}

func (c Codec) String() string { return c.Name }

// HasPreset reports whether p is in the preset vocabulary.
func (c Codec) HasPreset(p string) bool { return slices.Contains(c.Presets, p) }

// HasTune reports whether t is in the tune vocabulary.
func (c Codec) HasTune(t string) bool { return slices.Contains(c.Tunes, t) }

// HasProfile reports whether p is in the profile vocabulary.
func (c Codec) HasProfile(p string) bool { return slices.Contains(c.Profiles, p) }

// Validate checks that each preferred value belongs to its vocabulary.
// An empty tune vocabulary means the encoder takes no -tune flag.
func (c Codec) Validate() error {
	if c.Name == "" {
		return errors.New("codec name is empty")
	}
	if !c.HasPreset(c.PreferredPreset) {
		return fmt.Errorf("%s: preferred preset %q not in presets", c.Name, c.PreferredPreset)
	}
	if len(c.Tunes) > 0 && !c.HasTune(c.PreferredTune) {
		return fmt.Errorf("%s: preferred tune %q not in tunes", c.Name, c.PreferredTune)
	}
	if !c.HasProfile(c.PreferredProfile) {
		return fmt.Errorf("%s: preferred profile %q not in profiles", c.Name, c.PreferredProfile)
	}
	return nil
}

var (
	LibX265 = Codec{
		Name: "libx265",
		Presets: []string{
			"ultrafast", "superfast", "veryfast", "faster", "fast",
			"medium", "slow", "slower", "veryslow", "placebo",
		},
		PreferredPreset: "slow",
		Tunes:           []string{"psnr", "ssim", "grain", "fastdecode", "zerolatency", "animation"},
		PreferredTune:   "grain",
		Profiles: []string{
			"main", "main444-8", "main10", "main422-10",
			"main444-10", "main12", "main422-12", "main444-12",
		},
		PreferredProfile: "main",
	}

	HEVCNvenc = Codec{
		Name: "hevc_nvenc",
		Presets: []string{
			"default", "slow", "medium", "fast", "hp", "hq", "bd",
			"ll", "llhq", "llhp", "lossless", "losslesshp",
			"p1", "p2", "p3", "p4", "p5", "p6", "p7",
		},
		PreferredPreset:  "p6",
		Tunes:            []string{"hq", "ll", "ull", "lossless"},
		PreferredTune:    "hq",
		Profiles:         []string{"main", "main10", "rext"},
		PreferredProfile: "main",
	}

	HEVCVideoToolbox = Codec{
		Name:             "hevc_videotoolbox",
		Presets:          []string{"default", "slow", "medium", "fast", "faster", "fastest"},
		PreferredPreset:  "medium",
		Tunes:            []string{"default"},
		PreferredTune:    "default",
		Profiles:         []string{"main", "main10"},
		PreferredProfile: "main",
	}
)

var known = []Codec{LibX265, HEVCNvenc, HEVCVideoToolbox}

// Known returns the catalog in detection order.
func Known() []Codec {
	return slices.Clone(known)
}

// Lookup finds a catalog entry by encoder name.
func Lookup(name string) (Codec, bool) {
	for _, c := range known {
		if c.Name == name {
			return c, true
		}
	}
	return Codec{}, false
}
