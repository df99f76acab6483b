// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package manifest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/go-getter/v2"
	"github.com/matt-FFFFFF/brim/internal/ctxlog"
	"github.com/spf13/afero"
)

var (
	// ErrNoSources is returned when Load is called without sources.
	ErrNoSources = errors.New("no recipe sources given")
	// ErrGetRecipe is returned when a source cannot be read or downloaded.
	ErrGetRecipe = errors.New("failed to get recipe")
	// ErrNoHCLFiles is returned for a directory without *.brim.hcl files.
	ErrNoHCLFiles = errors.New("no " + HCLFileExt + " files found")
)

// Load reads every source in order and merges their packages.
// It stops at the first source that cannot be read or parsed. Validation problems
// from all sources are reported together.
func Load(ctx context.Context, sources []string) ([]Package, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}

	logger := ctxlog.Logger(ctx)

	var (
		merged   []Package
		validErr error
	)

	for i, src := range sources {
		pkgs, err := loadSource(ctx, src)
		if err != nil {
			return nil, err
		}

		if err := Validate(src, pkgs); err != nil {
			validErr = errors.Join(validErr, err)
			continue
		}

		merged = Merge(merged, pkgs)

		logger.Info("loaded recipe",
			"source", src,
			"index", i+1,
			"of", len(sources),
			"packages", len(pkgs),
			"merged", len(merged))
	}

	if validErr != nil {
		return nil, validErr
	}

	return merged, nil
}

// Merge adds next to base by package name. An entry in next replaces the one in base
// with the same name, in place. New names are appended in order.
func Merge(base, next []Package) []Package {
	out := make([]Package, len(base), len(base)+len(next))
	copy(out, base)

	index := make(map[string]int, len(out)+len(next))
	for i, p := range out {
		index[p.Name] = i
	}

	for _, p := range next {
		if i, ok := index[p.Name]; ok {
			out[i] = p
			continue
		}

		index[p.Name] = len(out)
		out = append(out, p)
	}

	return out
}

func loadSource(ctx context.Context, src string) ([]Package, error) {
	fs := FsFactory()

	if info, err := fs.Stat(src); err == nil {
		if info.IsDir() {
			return loadHCLDir(fs, src)
		}

		content, err := afero.ReadFile(fs, src)
		if err != nil {
			return nil, errors.Join(ErrGetRecipe, err)
		}

		return Parse(src, content, FormatOf(src))
	}

	content, err := download(ctx, src)
	if err != nil {
		return nil, err
	}

	return Parse(src, content, FormatOf(src))
}

// loadHCLDir reads every *.brim.hcl file of dir in name order.
func loadHCLDir(fs afero.Fs, dir string) ([]Package, error) {
	matches, err := afero.Glob(fs, filepath.Join(dir, "*"+HCLFileExt))
	if err != nil {
		return nil, errors.Join(ErrGetRecipe, err)
	}

	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoHCLFiles, dir)
	}

	sort.Strings(matches)

	var pkgs []Package

	for _, filename := range matches {
		content, err := afero.ReadFile(fs, filename)
		if err != nil {
			return nil, errors.Join(ErrGetRecipe, err)
		}

		filePkgs, err := Parse(filename, content, FormatHCL)
		if err != nil {
			return nil, err
		}

		pkgs = Merge(pkgs, filePkgs)
	}

	return pkgs, nil
}

// download fetches a single file with go-getter into a temporary directory.
func download(ctx context.Context, src string) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "brim-getter-*")
	if err != nil {
		return nil, errors.Join(ErrGetRecipe, err)
	}

	defer os.RemoveAll(tmpDir) //nolint:errcheck

	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Join(ErrGetRecipe, err)
	}

	client := getter.Client{
		DisableSymlinks: true,
	}

	req := &getter.Request{
		Src:     src,
		Dst:     filepath.Join(tmpDir, "recipe"),
		Pwd:     wd,
		GetMode: getter.ModeFile,
	}

	res, err := client.Get(ctx, req)
	if err != nil {
		return nil, errors.Join(ErrGetRecipe, fmt.Errorf("%s: %w", src, err))
	}

	content, err := os.ReadFile(res.Dst)
	if err != nil {
		return nil, errors.Join(ErrGetRecipe, err)
	}

	return content, nil
}
