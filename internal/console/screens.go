// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package console

import (
	"strconv"

	"github.com/matt-FFFFFF/brim/internal/color"
	"github.com/matt-FFFFFF/brim/internal/manifest"
)

// Installed prints the numbered list of installed packages.
func (p *Printer) Installed(names []string) error {
	p.Header("Installed Packages", Cyan)
	p.println()
	p.println(heading("Total: " + strconv.Itoa(len(names)) + " packages"))
	p.println()

	for i, n := range names {
		p.printf("  %s %s\n", ordinal(i, 3), color.Colorize(n, color.FgGreen))
	}

	p.println()

	return p.Err()
}

// Recipe prints the merged recipe with a mark for packages already installed.
func (p *Printer) Recipe(pkgs []manifest.Package, installed []string) error {
	have := make(map[string]bool, len(installed))
	for _, n := range installed {
		have[n] = true
	}

	var already, casks int

	p.Header("Brew Remote Install Manager", Cyan)
	p.println()
	p.println(heading("Legend:"))
	p.printf("  %s Not installed\n", color.Colorize("◯", color.FgGreen))
	p.printf("  %s Installed\n", color.Colorize("●", color.FgGreen, color.Faint))
	p.printf("  %s Cask application\n", color.Colorize("◯", color.FgMagenta))
	p.println()

	for i, pkg := range pkgs {
		icon, codes := "◯", []color.Code{color.FgGreen}
		if pkg.Cask {
			codes[0] = color.FgMagenta
			casks++
		}

		status := ""

		if have[pkg.Name] {
			icon = "●"
			codes = append(codes, color.Faint)
			status = " [installed]"
			already++
		}

		category := ""
		if pkg.Category != "" {
			category = " [" + pkg.Category + "]"
		}

		p.printf("  %s %s\n", ordinal(i, 3), color.Colorize(icon+" "+pkg.Name+status+category, codes...))
	}

	p.println()
	p.println(heading("Summary:"))
	p.printf("  Total packages: %s\n", color.Colorize(strconv.Itoa(len(pkgs)), color.Bold, color.FgCyan))
	p.printf("  Already installed: %s\n", color.Colorize(strconv.Itoa(already), color.FgGreen))
	p.printf("  Casks: %s\n", color.Colorize(strconv.Itoa(casks), color.FgMagenta))
	p.printf("  Formulae: %s\n", color.Colorize(strconv.Itoa(len(pkgs)-casks), color.FgGreen))

	return p.Err()
}

// DryRun previews an operation. action is the past participle, "installed" or "removed".
func (p *Printer) DryRun(pkgs []manifest.Package, action string) error {
	var formulae, casks []string

	for _, pkg := range pkgs {
		if pkg.Cask {
			casks = append(casks, pkg.Name)
			continue
		}

		formulae = append(formulae, pkg.Name)
	}

	p.Header("DRY RUN - Preview Mode", Yellow)
	p.println()
	p.printf("%s The following %d packages would be %s:\n\n",
		color.Colorize("ℹ", color.Bold, color.FgCyan), len(pkgs), color.Colorize(action, color.Bold, color.FgYellow))

	p.group("Formulae:", formulae, color.FgGreen)
	p.group("Casks:", casks, color.FgMagenta)

	p.printf("%s No changes were made. Run without %s to execute.\n\n",
		color.Colorize("✓", color.Bold, color.FgGreen), color.Colorize("--dry-run", color.FgYellow))

	return p.Err()
}

func (p *Printer) group(title string, names []string, fg color.Code) {
	if len(names) == 0 {
		return
	}

	p.printf("  %s %s\n", color.Colorize("→", color.Bold, fg), title)

	for i, n := range names {
		p.printf("    %s %s\n", ordinal(i, 2), color.Colorize(n, fg))
	}

	p.println()
}

// Sync prints the comparison of a recipe with the installed packages.
func (p *Printer) Sync(plan manifest.Plan, dryRun bool) error {
	p.Header("Sync Analysis", Cyan)
	p.println()
	p.println(heading("═══ Summary ═══"))
	p.printf("  %s In sync: %d\n", color.Colorize("✓", color.FgGreen), len(plan.InSync))
	p.printf("  %s To install: %d\n", color.Colorize("+", color.FgGreen), len(plan.ToInstall))
	p.printf("  %s Extra (not in recipe): %d\n", color.Colorize("-", color.FgRed), len(plan.Extra))

	if len(plan.ToInstall) > 0 {
		p.println()
		p.println(color.Colorize("═══ Packages to Install ═══", color.Bold, color.FgGreen))

		for i, pkg := range plan.ToInstall {
			extra := ""
			if pkg.Category != "" {
				extra += " [" + pkg.Category + "]"
			}

			if pkg.Cask {
				extra += " [cask]"
			}

			p.printf("  %s %s %s%s\n", ordinal(i, 2), color.Colorize("+", color.Bold, color.FgGreen),
				color.Colorize(pkg.Name, color.FgGreen), color.Colorize(extra, color.Faint))
		}
	}

	if len(plan.Extra) > 0 {
		p.println()
		p.println(heading("═══ Extra Packages (not in recipe) ═══"))
		p.printf("  %s These are installed but not in your recipe:\n", color.Colorize("ℹ", color.FgCyan))

		for i, n := range plan.Extra {
			p.printf("  %s %s %s\n", ordinal(i, 2), color.Colorize("-", color.FgYellow), color.Colorize(n, color.Faint))
		}
	}

	p.println()

	if plan.InSyncAll() {
		p.printf("%s All packages are in sync!\n", color.Colorize("✓", color.Bold, color.FgGreen))
		p.printf("  %d packages match your recipe.\n\n", len(plan.InSync))

		return p.Err()
	}

	if dryRun {
		p.printf("%s This is a dry-run. No changes were made.\n", color.Colorize("ℹ", color.Bold, color.FgCyan))
	} else {
		p.printf("%s Sync analysis complete.\n", color.Colorize("✓", color.Bold, color.FgGreen))
	}

	p.println()
	p.println("To apply changes:")
	p.printf("  • Install missing: %s\n", color.Colorize(`brim install --url "your-recipe.json"`, color.FgCyan))
	p.printf("  • Remove extras: %s\n\n", color.Colorize("brim remove <name>...", color.FgCyan))

	return p.Err()
}
