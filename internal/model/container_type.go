package model

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ContainerType describes an output wrapper format.
type ContainerType struct {
	Ext         string // without dot
	Description string
}

func (c ContainerType) String() string {
	return fmt.Sprintf("%s (%s)", c.Ext, c.Description)
}

// SupportedContainers is the fixed catalog of output formats. The first
// entry is the default.
var SupportedContainers = []ContainerType{
	{Ext: "mkv", Description: "Matroska Video File"},
	{Ext: "webm", Description: "WebM Video File"},
	{Ext: "mp4", Description: "MPEG-4 Video File"},
	{Ext: "mov", Description: "QuickTime Movie"},
	{Ext: "m2ts", Description: "Blu-ray BDAV Video File"},
}

// DefaultContainer returns the preferred output format.
func DefaultContainer() ContainerType {
	return SupportedContainers[0]
}

// LookupContainerType finds a catalog entry by extension (with or without dot).
func LookupContainerType(ext string) (ContainerType, bool) {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	for _, c := range SupportedContainers {
		if c.Ext == ext {
			return c, true
		}
	}
	return ContainerType{}, false
}

// ContainerTypeForFile resolves the catalog entry matching path's extension.
func ContainerTypeForFile(path string) (ContainerType, bool) {
	return LookupContainerType(filepath.Ext(path))
}
