//go:build !linux

package util

import "os/exec"

func configureChild(_ *exec.Cmd) {}
