// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pkgmgr

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeBrew(t *testing.T, body string) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not supported on windows")
	}

	p := filepath.Join(t.TempDir(), "brew")
	require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\n"+body+"\n"), 0o755))

	return p
}

const fakeBrewScript = `case "$1" in
--version) echo "Homebrew 4.5.0"; echo "Homebrew/homebrew-core (git revision 1)";;
list) printf 'wget\njq\n\n==> Casks\niterm2   firefox\njq\n';;
*) echo "unknown $1" >&2; exit 1;;
esac`

func TestEnsureAvailable(t *testing.T) {
	m := New(fakeBrew(t, fakeBrewScript))

	v, err := m.EnsureAvailable(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Homebrew 4.5.0", v)
}

func TestEnsureAvailableMissing(t *testing.T) {
	m := New(filepath.Join(t.TempDir(), "no-such-brew"))

	_, err := m.EnsureAvailable(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestEnsureAvailableFails(t *testing.T) {
	m := New(fakeBrew(t, `echo "broken install" >&2; exit 3`))

	_, err := m.EnsureAvailable(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "broken install")
}

func TestListInstalled(t *testing.T) {
	m := New(fakeBrew(t, fakeBrewScript))

	names, err := m.ListInstalled(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"wget", "jq", "iterm2", "firefox"}, names)
}

func TestListInstalledFails(t *testing.T) {
	m := New(fakeBrew(t, `exit 1`))

	_, err := m.ListInstalled(context.Background())
	assert.ErrorIs(t, err, ErrList)
}

func TestNewDefaultProgram(t *testing.T) {
	assert.Equal(t, DefaultProgram, New("").Program)
}
