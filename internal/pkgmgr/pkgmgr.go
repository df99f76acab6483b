// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package pkgmgr asks the package manager about itself and about what is installed.
package pkgmgr

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/matt-FFFFFF/brim/internal/commandinpath"
	"github.com/matt-FFFFFF/brim/internal/ctxlog"
)

// DefaultProgram is the package manager executable.
const DefaultProgram = "brew"

// DefaultQueryTimeout bounds each query.
const DefaultQueryTimeout = 30 * time.Second

var (
	// ErrUnavailable is returned when the package manager cannot be run.
	ErrUnavailable = errors.New("package manager not available, is it installed and in PATH?")
	// ErrList is returned when the installed packages cannot be listed.
	ErrList = errors.New("failed to list installed packages")
)

// Manager runs read-only queries against the package manager.
type Manager struct {
	Program string
	Timeout time.Duration
}

// New creates a Manager for program.
func New(program string) *Manager {
	if program == "" {
		program = DefaultProgram
	}

	return &Manager{
		Program: program,
		Timeout: DefaultQueryTimeout,
	}
}

// EnsureAvailable checks that the program can be found and answers `--version`.
// It returns the first line of the version output.
func (m *Manager) EnsureAvailable(ctx context.Context) (string, error) {
	out, err := m.query(ctx, "--version")
	if err != nil {
		return "", errors.Join(ErrUnavailable, err)
	}

	first, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	ctxlog.Debug(ctx, "package manager available", "program", m.Program, "version", first)

	return strings.TrimSpace(first), nil
}

// ListInstalled returns the names printed by `list`, in order, without duplicates.
func (m *Manager) ListInstalled(ctx context.Context) ([]string, error) {
	out, err := m.query(ctx, "list")
	if err != nil {
		return nil, errors.Join(ErrList, err)
	}

	names := ParseList(out)
	ctxlog.Debug(ctx, "listed installed packages", "count", len(names))

	return names, nil
}

// ParseList extracts package names from `list` output. Section headers such as
// "==> Formulae" are skipped and column layouts are split on whitespace.
func ParseList(out []byte) []string {
	var names []string

	seen := make(map[string]bool)
	sc := bufio.NewScanner(bytes.NewReader(out))

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "==>") {
			continue
		}

		for _, name := range strings.Fields(line) {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}

	return names
}

func (m *Manager) query(ctx context.Context, args ...string) ([]byte, error) {
	path, err := commandinpath.Find(m.Program)
	if err != nil {
		return nil, err
	}

	if m.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, m.Timeout)
		defer cancel()
	}

	var stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s %s: %w: %s", m.Program, strings.Join(args, " "), err, msg)
		}

		return nil, fmt.Errorf("%s %s: %w", m.Program, strings.Join(args, " "), err)
	}

	return out, nil
}
