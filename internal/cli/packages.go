package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gitpkg/pkg/errors"
	"github.com/matzehuels/gitpkg/pkg/registry"
)

// listCommand creates the list command.
func (c *CLI) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List installed packages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			spinner := newSpinnerProgress(ctx)
			s, err := c.openSession(ctx, spinner)
			if err != nil {
				return err
			}
			defer s.close()

			if err := s.refresh(ctx); err != nil {
				return err
			}

			recs := s.orch.Records()
			if len(recs) == 0 {
				printInfo("No packages installed")
				printNextStep("Install one with", appName+" add <url>")
				return nil
			}
			printPackages(recs)
			return nil
		},
	}
}

// addCommand creates the add command.
func (c *CLI) addCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <url>...",
		Short: "Install packages from git URLs",
		Long: `Install packages from git URLs, following their git dependencies.

A URL may end in #<branch> or #<tag> to install that revision.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, url := range args {
				if err := errors.ValidateGitURL(url); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			s, err := c.openSession(ctx, newSpinnerProgress(ctx))
			if err != nil {
				return err
			}
			defer s.close()

			prog := newProgress(s.logger)
			for _, url := range args {
				s.orch.Enqueue(ctx, url)
			}
			if err := s.run(ctx); err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Processed %d package(s)", len(args)))

			failed := 0
			for _, url := range args {
				rec, ok := findByURL(s.orch.Records(), url)
				if !ok {
					printError("%s was not installed", url)
					failed++
					continue
				}
				printSuccess("Installed %s %s", StyleHighlight.Render(rec.Name), StyleDim.Render(rec.Version))
			}
			if failed > 0 {
				return errors.New(errors.ErrCodeCloneFailed, "%d of %d package(s) failed to install", failed, len(args))
			}
			return nil
		},
	}
}

// updateCommand creates the update command.
func (c *CLI) updateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Reinstall every installed package from its source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.openSession(ctx, newSpinnerProgress(ctx))
			if err != nil {
				return err
			}
			defer s.close()

			if err := s.refresh(ctx); err != nil {
				return err
			}
			before := s.orch.Records()
			if len(before) == 0 {
				printInfo("No packages installed")
				return nil
			}

			prog := newProgress(s.logger)
			s.orch.QueueReinstallAll(ctx)
			if err := s.run(ctx); err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Updated %d package(s)", len(before)))

			printPackages(s.orch.Records())
			return nil
		},
	}
}

// reinstallCommand creates the reinstall command.
func (c *CLI) reinstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reinstall <name>",
		Short: "Reinstall one package from its source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.openSession(ctx, newSpinnerProgress(ctx))
			if err != nil {
				return err
			}
			defer s.close()

			rec, err := s.find(ctx, args[0])
			if err != nil {
				return err
			}

			s.orch.QueueReinstall(ctx, rec)
			if err := s.run(ctx); err != nil {
				return err
			}

			updated, ok := findByURL(s.orch.Records(), rec.URL)
			if !ok {
				return errors.New(errors.ErrCodeCloneFailed, "reinstalling %s failed", rec.Name)
			}
			printSuccess("Reinstalled %s %s", StyleHighlight.Render(updated.Name), StyleDim.Render(updated.Version))
			return nil
		},
	}
}

// removeCommand creates the remove command.
func (c *CLI) removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Uninstall a package",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.openSession(ctx, newSpinnerProgress(ctx))
			if err != nil {
				return err
			}
			defer s.close()

			rec, err := s.find(ctx, args[0])
			if err != nil {
				return err
			}
			if err := s.orch.RemovePackage(ctx, rec); err != nil {
				return err
			}
			if err := s.refresh(ctx); err != nil {
				return err
			}
			if _, ok := s.orch.Find(rec.Name); ok {
				return errors.New(errors.ErrCodeRemoveFailed, "removing %s failed", rec.Name)
			}
			printSuccess("Removed %s", StyleHighlight.Render(rec.Name))
			return nil
		},
	}
}

// =============================================================================
// Helpers
// =============================================================================

// find refreshes the registry and looks up a package by name.
func (s *session) find(ctx context.Context, name string) (registry.Record, error) {
	if err := s.refresh(ctx); err != nil {
		return registry.Record{}, err
	}
	rec, ok := s.orch.Find(name)
	if !ok {
		return registry.Record{}, errors.New(errors.ErrCodePackageNotFound, "package %s is not installed", name)
	}
	return rec, nil
}

func findByURL(recs []registry.Record, url string) (registry.Record, bool) {
	for _, rec := range recs {
		if rec.URL == url {
			return rec, true
		}
	}
	return registry.Record{}, false
}

// printPackages prints records as a table sorted by name.
func printPackages(recs []registry.Record) {
	sorted := make([]registry.Record, len(recs))
	copy(sorted, recs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	fmt.Println(packageTable(sorted, -1).Render())
	printDetail("%d package(s)", len(sorted))
}

// packageTable renders records; the row at cursor is highlighted.
func packageTable(recs []registry.Record, cursor int) *table.Table {
	rows := make([][]string, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, []string{rec.DisplayName, rec.Version, rec.Author, rec.URL})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Package", "Version", "Author", "Source").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case row == cursor:
				return listSelectedStyle
			case col == 3:
				return listDimStyle
			default:
				return listNormalStyle
			}
		})
}
