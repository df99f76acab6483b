// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package manifest

import (
	"errors"
	"fmt"
	"path"
	"runtime"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// HCLFileExt is the suffix of HCL recipe files.
const HCLFileExt = ".brim.hcl"

var (
	// ErrParse is returned when a recipe cannot be decoded.
	ErrParse = errors.New("failed to parse recipe")
)

// Format is the encoding of a recipe.
type Format int

const (
	// FormatYAML covers JSON too, which is a subset of YAML.
	FormatYAML Format = iota
	// FormatHCL is a recipe made of package blocks.
	FormatHCL
)

// FormatOf guesses the format of a source from its file extension, ignoring any query string.
func FormatOf(source string) Format {
	if i := strings.IndexByte(source, '?'); i >= 0 {
		source = source[:i]
	}

	if strings.EqualFold(path.Ext(source), ".hcl") {
		return FormatHCL
	}

	return FormatYAML
}

// Parse decodes a recipe. filename is only used in error messages.
func Parse(filename string, content []byte, format Format) ([]Package, error) {
	var (
		pkgs []Package
		err  error
	)

	switch format {
	case FormatHCL:
		pkgs, err = parseHCL(filename, content)
	default:
		pkgs, err = parseYAML(content)
	}

	if err != nil {
		return nil, errors.Join(ErrParse, fmt.Errorf("%s: %w", filename, err))
	}

	return pkgs, nil
}

type document struct {
	Packages []Package `yaml:"packages"`
}

func parseYAML(content []byte) ([]Package, error) {
	var list []Package

	listErr := yaml.Unmarshal(content, &list)
	if listErr == nil {
		return list, nil
	}

	var doc document
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, listErr
	}

	return doc.Packages, nil
}

type hclRecipe struct {
	Packages []hclPackage `hcl:"package,block"`
}

type hclPackage struct {
	Name     string `hcl:"name,label"`
	Category string `hcl:"category,optional"`
	URL      string `hcl:"url,optional"`
	Cask     bool   `hcl:"cask,optional"`
	Version  string `hcl:"version,optional"`
	// Enabled drops the package when false. Missing means true.
	Enabled *bool `hcl:"enabled,optional"`
}

// EvalContext is the context HCL recipes are evaluated in.
func EvalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"os":   cty.StringVal(runtime.GOOS),
			"arch": cty.StringVal(runtime.GOARCH),
		},
	}
}

func parseHCL(filename string, content []byte) ([]Package, error) {
	file, diags := hclsyntax.ParseConfig(content, filename, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, diags
	}

	var recipe hclRecipe
	if diags := gohcl.DecodeBody(file.Body, EvalContext(), &recipe); diags.HasErrors() {
		return nil, diags
	}

	pkgs := make([]Package, 0, len(recipe.Packages))

	for _, p := range recipe.Packages {
		if p.Enabled != nil && !*p.Enabled {
			continue
		}

		pkgs = append(pkgs, Package{
			Name:     p.Name,
			Category: p.Category,
			URL:      p.URL,
			Cask:     p.Cask,
			Version:  p.Version,
		})
	}

	return pkgs, nil
}
