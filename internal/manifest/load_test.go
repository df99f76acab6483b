// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package manifest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"

	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dummyFsWithFiles(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}

	return fs
}

func stubFs(t *testing.T, fs afero.Fs) {
	t.Helper()

	stubs := gostub.Stub(&FsFactory, func() afero.Fs {
		return fs
	})
	t.Cleanup(stubs.Reset)
}

const jsonRecipe = `[
  {"name": "wget", "category": "network"},
  {"name": "jq"},
  {"name": "iterm2", "cask": true, "version": ">= 3.4"}
]`

const yamlRecipe = `
packages:
  - name: jq
    category: json
  - name: htop
`

func TestLoadMergesInOrder(t *testing.T) {
	stubFs(t, dummyFsWithFiles(t, map[string]string{
		"/recipes/base.json": jsonRecipe,
		"/recipes/dev.yaml":  yamlRecipe,
	}))

	pkgs, err := Load(context.Background(), []string{"/recipes/base.json", "/recipes/dev.yaml"})
	require.NoError(t, err)

	assert.Equal(t, []string{"wget", "jq", "iterm2", "htop"}, Names(pkgs))
	assert.Equal(t, "json", pkgs[1].Category, "later sources win")
	assert.True(t, pkgs[2].Cask)
	assert.Equal(t, ">= 3.4", pkgs[2].Version)
}

func TestLoadHCL(t *testing.T) {
	content := `
package "wget" {
  category = "network"
}

package "iterm2" {
  cask    = true
  enabled = os == "` + runtime.GOOS + `"
}

package "linux-only" {
  enabled = os == "not-a-real-os"
}

package "arch-tag" {
  category = "built-for-${arch}"
}
`
	stubFs(t, dummyFsWithFiles(t, map[string]string{"/r/tools.brim.hcl": content}))

	pkgs, err := Load(context.Background(), []string{"/r/tools.brim.hcl"})
	require.NoError(t, err)

	assert.Equal(t, []string{"wget", "iterm2", "arch-tag"}, Names(pkgs))
	assert.True(t, pkgs[1].Cask)
	assert.Equal(t, "built-for-"+runtime.GOARCH, pkgs[2].Category)
}

func TestLoadHCLDirectory(t *testing.T) {
	stubFs(t, dummyFsWithFiles(t, map[string]string{
		"/r/a.brim.hcl": `package "wget" {}`,
		"/r/b.brim.hcl": `package "jq" {}
package "wget" { category = "override" }`,
		"/r/ignored.json": `[{"name": "nope"}]`,
	}))

	pkgs, err := Load(context.Background(), []string{"/r"})
	require.NoError(t, err)

	require.Equal(t, []string{"wget", "jq"}, Names(pkgs))
	assert.Equal(t, "override", pkgs[0].Category)
}

func TestLoadHCLDirectoryEmpty(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/empty", 0o755))
	stubFs(t, fs)

	_, err := Load(context.Background(), []string{"/empty"})
	assert.ErrorIs(t, err, ErrNoHCLFiles)
}

func TestLoadValidationCollectsAllErrors(t *testing.T) {
	stubFs(t, dummyFsWithFiles(t, map[string]string{
		"/a.json": `[{"name": ""}, {"name": "--force"}]`,
		"/b.json": `[{"name": "ok", "version": "not a version!"}]`,
	}))

	_, err := Load(context.Background(), []string{"/a.json", "/b.json"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPackage)
	assert.ErrorIs(t, err, ErrEmptyName)
	assert.ErrorIs(t, err, ErrBadName)
	assert.ErrorIs(t, err, ErrBadVersion)
	assert.Contains(t, err.Error(), "/a.json: entry 2")
}

func TestLoadParseError(t *testing.T) {
	stubFs(t, dummyFsWithFiles(t, map[string]string{
		"/bad.json":     `{"packages": [`,
		"/bad.brim.hcl": `package {`,
	}))

	for _, src := range []string{"/bad.json", "/bad.brim.hcl"} {
		t.Run(src, func(t *testing.T) {
			_, err := Load(context.Background(), []string{src})
			assert.ErrorIs(t, err, ErrParse)
		})
	}
}

func TestLoadNoSources(t *testing.T) {
	_, err := Load(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoSources)
}

func TestLoadRemote(t *testing.T) {
	stubFs(t, afero.NewMemMapFs())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(jsonRecipe))
	}))
	defer srv.Close()

	pkgs, err := Load(context.Background(), []string{srv.URL + "/recipe.json"})
	require.NoError(t, err)
	assert.Equal(t, []string{"wget", "jq", "iterm2"}, Names(pkgs))
}

func TestLoadRemoteNotFound(t *testing.T) {
	stubFs(t, afero.NewMemMapFs())

	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := Load(context.Background(), []string{srv.URL + "/missing.json"})
	assert.ErrorIs(t, err, ErrGetRecipe)
}

func TestMerge(t *testing.T) {
	base := []Package{{Name: "a"}, {Name: "b", Category: "old"}}
	next := []Package{{Name: "c"}, {Name: "b", Category: "new"}}

	merged := Merge(base, next)
	assert.Equal(t, []string{"a", "b", "c"}, Names(merged))
	assert.Equal(t, "new", merged[1].Category)
	assert.Equal(t, "old", base[1].Category, "base is not modified")
}

func TestParseSourceList(t *testing.T) {
	got := ParseSourceList([]string{"a.json, b.yaml", " ", "c.brim.hcl,,", "https://x/y.json?ref=main"})
	assert.Equal(t, []string{"a.json", "b.yaml", "c.brim.hcl", "https://x/y.json?ref=main"}, got)
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, FormatHCL, FormatOf("tools.brim.hcl"))
	assert.Equal(t, FormatHCL, FormatOf("git::https://example.com/r.git//tools.HCL?ref=v1"))
	assert.Equal(t, FormatYAML, FormatOf("tools.json"))
	assert.Equal(t, FormatYAML, FormatOf("https://example.com/tools.yaml?token=abc"))
}
