// SPDX-FileCopyrightText: Red Hat, Inc.
// SPDX-License-Identifier: LGPL-2.1-or-later

// Package qemuimg wraps the qemu-img tool.
package qemuimg

import (
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
)

// ImageInfo is the part of "qemu-img info" output used to serve local
// images.
type ImageInfo struct {
	Filename        string `json:"filename"`
	Format          string `json:"format"`
	Size            uint64 `json:"virtual-size"`
	BackingFilename string `json:"backing-filename,omitempty"`
}

// Info returns information about image filename.
func Info(filename string) (*ImageInfo, error) {
	out, err := run("qemu-img", "info", "--output", "json", filename)
	if err != nil {
		return nil, err
	}

	var info ImageInfo
	if err = json.Unmarshal(out, &info); err != nil {
		return nil, fmt.Errorf("Cannot parse qemu-img info output: %w", err)
	}

	return &info, nil
}

// Create creates a new image of the specified format and size.
func Create(filename, format string, size uint64) error {
	_, err := run("qemu-img", "create", "-f", format, filename, fmt.Sprint(size))
	return err
}

func run(name string, arg ...string) ([]byte, error) {
	cmd := exec.Command(name, arg...)

	stdout, err := cmd.Output()

	if err != nil {
		var stderr []byte
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			stderr = ee.Stderr
		}
		return stdout, fmt.Errorf(
			"Command %v failed rc=%v: out=%q err=%q",
			cmd.Args,
			cmd.ProcessState.ExitCode(),
			stdout,
			stderr,
		)
	}

	return stdout, nil
}
