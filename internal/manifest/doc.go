// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package manifest loads recipe files: lists of packages to install.
//
// A source is a local file, a local directory of *.brim.hcl files, or any URL understood by
// Hashicorp's go-getter. JSON and YAML recipes are a list of package objects, or an object with a
// `packages` list. HCL recipes are `package "name" { ... }` blocks evaluated with the `os` and `arch`
// variables set to the host platform.
//
// Recipes from several sources are merged by package name. A later source overrides an earlier one
// but the package keeps the position where it was first seen.
package manifest
