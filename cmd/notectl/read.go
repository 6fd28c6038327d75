package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"vocabnotes/internal/impex"
	"vocabnotes/internal/notes"
	"vocabnotes/internal/service"
	"vocabnotes/internal/storage/jsonfile"
)

func (c *cli) newListCmd() *cobra.Command {
	var (
		query  service.ListQuery
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the notes of one category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			found, err := c.app.Notes.List(cmd.Context(), query)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(notes.ToRecords(found))
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, n := range found {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", n.ID, n.PrimaryText(), n.SecondaryText())
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&query.Category, "category", "c", "", "Category to list (defaults to DEFAULT_CATEGORY)")
	cmd.Flags().StringVarP(&query.Search, "search", "s", "", "Only notes whose primary or secondary text contains this term")
	cmd.Flags().StringVar(&query.Tag, "tag", "", "Only grammar notes carrying this tag")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

func (c *cli) newImportCmd() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "import <file|dir>",
		Short: "Import notes from .txt or .json files",
		Long: `Import appends the notes in file. Text files hold one "primary | secondary"
line per note; malformed lines are skipped and reported. JSON files are imported
whole or not at all. Given a directory, every .txt and .json file below it is
imported in name order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := args[0]

			info, err := os.Stat(path)
			if err != nil {
				return err
			}
			if !info.IsDir() {
				format, err := impex.FormatFromPath(path)
				if err != nil {
					return err
				}
				return c.importFile(cmd, impex.ScannedFile{RelPath: filepath.Base(path), AbsPath: path, Format: format}, category)
			}

			files, err := impex.ScanDir(ctx, path, jsonfile.TempFilePrefix)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no .txt or .json files under %s", path)
			}
			for _, f := range files {
				if err := c.importFile(cmd, f, category); err != nil {
					return fmt.Errorf("%s: %w", f.RelPath, err)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "Category for imported notes that do not name one")
	return cmd
}

func (c *cli) importFile(cmd *cobra.Command, file impex.ScannedFile, category string) error {
	f, err := os.Open(file.AbsPath)
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := c.app.Notes.Import(cmd.Context(), file.Format, f, category)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %s\n", file.RelPath, res.Message)
	for _, s := range res.Skipped {
		fmt.Fprintf(out, "  line %d: %s\n", s.Line, s.Reason)
	}
	return nil
}

func (c *cli) newExportCmd() *cobra.Command {
	var (
		rawFormat string
		outPath   string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every note as text or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				format impex.Format
				err    error
			)
			switch {
			case rawFormat != "":
				format, err = impex.ParseFormat(rawFormat)
			case outPath != "":
				format, err = impex.FormatFromPath(outPath)
			default:
				format = impex.FormatJSON
			}
			if err != nil {
				return err
			}

			if outPath == "" {
				return c.app.Notes.Export(cmd.Context(), format, cmd.OutOrStdout())
			}

			if info, err := os.Stat(outPath); err == nil && info.IsDir() {
				outPath = filepath.Join(outPath, impex.FileName(format, time.Now()))
			}
			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			if err := c.app.Notes.Export(cmd.Context(), format, f); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported to %s\n", outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&rawFormat, "format", "f", "", "txt or json (defaults to the --out extension, then json)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "File or directory to write to (defaults to stdout)")
	return cmd
}

func (c *cli) newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show note counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats := c.app.Notes.Stats(cmd.Context())
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Total: %d\n", stats.Total)
			for _, category := range notes.Categories {
				fmt.Fprintf(out, "  %-10s %d\n", category, stats.ByCategory[category])
			}
			fmt.Fprintf(out, "With note: %d\n", stats.WithNote)
			if len(stats.TopTags) > 0 {
				fmt.Fprint(out, "Top tags:")
				for _, tc := range stats.TopTags {
					fmt.Fprintf(out, " %s(%d)", tc.Tag, tc.Count)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}
