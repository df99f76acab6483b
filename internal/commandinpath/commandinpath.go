// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package commandinpath resolves a program name to an executable file, the way a shell would.
package commandinpath

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

var (
	// ErrNotFound is returned when no executable with the given name is on PATH.
	ErrNotFound = errors.New("executable not found in PATH")
	// ErrNotExecutable is returned when an explicit path is a directory or lacks the execute bit.
	ErrNotExecutable = errors.New("file is not executable")
)

// Find returns the absolute path of command.
// A command containing a path separator is checked as is; otherwise every PATH entry is searched in order.
func Find(command string) (string, error) {
	if command == "" {
		return "", ErrNotFound
	}

	if strings.ContainsRune(command, os.PathSeparator) || strings.ContainsRune(command, '/') {
		abs, err := filepath.Abs(command)
		if err != nil {
			return "", fmt.Errorf("resolving %q: %w", command, err)
		}

		if !isExecutable(abs) {
			return "", fmt.Errorf("%w: %s", ErrNotExecutable, abs)
		}

		return abs, nil
	}

	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		if dir == "" {
			dir = "."
		}

		for _, name := range candidates(command) {
			p := filepath.Join(dir, name)
			if isExecutable(p) {
				abs, err := filepath.Abs(p)
				if err != nil {
					return p, nil //nolint:nilerr
				}

				return abs, nil
			}
		}
	}

	return "", fmt.Errorf("%w: %s", ErrNotFound, command)
}

func candidates(command string) []string {
	if runtime.GOOS != "windows" || filepath.Ext(command) != "" {
		return []string{command}
	}

	return []string{command + ".exe", command + ".cmd", command + ".bat", command}
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}

	if runtime.GOOS == "windows" {
		return true
	}

	return info.Mode()&0o111 != 0
}
