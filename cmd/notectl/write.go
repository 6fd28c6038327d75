package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vocabnotes/internal/notes"
)

type noteFlags struct {
	category  string
	note      string
	examples  []string
	tags      []string
	primary   string
	secondary string
}

func (f *noteFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.category, "category", "c", "", "Category: vocabulary, grammar or idiom")
	cmd.Flags().StringVarP(&f.note, "note", "n", "", "Example or explanation")
	cmd.Flags().StringArrayVar(&f.examples, "example", nil, "Example sentence (grammar notes, repeatable)")
	cmd.Flags().StringSliceVar(&f.tags, "tag", nil, "Tag (grammar notes, repeatable)")
}

func (c *cli) newAddCmd() *cobra.Command {
	var f noteFlags
	cmd := &cobra.Command{
		Use:   "add <primary> <secondary>",
		Short: "Add a note",
		Long: `Add appends a note to the end of the store. The primary text is the word,
structure or phrase; the secondary text is its meaning or explanation.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.app.Notes.Add(cmd.Context(), notes.Candidate{
				Category:      notes.Category(f.category),
				PrimaryText:   args[0],
				SecondaryText: args[1],
				Note:          f.note,
				Examples:      f.examples,
				Tags:          f.tags,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", res.Message, res.Note.ID)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func (c *cli) newEditCmd() *cobra.Command {
	var f noteFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a note",
		Long:  `Edit replaces the fields given as flags and keeps the rest.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			existing, err := c.app.Notes.Get(ctx, args[0])
			if err != nil {
				return err
			}

			candidate := notes.ToRecord(existing).Candidate()
			flags := cmd.Flags()
			if flags.Changed("primary") {
				candidate.PrimaryText = f.primary
			}
			if flags.Changed("secondary") {
				candidate.SecondaryText = f.secondary
			}
			if flags.Changed("category") {
				candidate.Category = notes.Category(f.category)
			}
			if flags.Changed("note") {
				candidate.Note = f.note
			}
			if flags.Changed("example") {
				candidate.Examples = f.examples
			}
			if flags.Changed("tag") {
				candidate.Tags = f.tags
			}

			res, err := c.app.Notes.Update(ctx, args[0], candidate)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&f.primary, "primary", "", "New word, structure or phrase")
	cmd.Flags().StringVar(&f.secondary, "secondary", "", "New meaning or explanation")
	return cmd
}

func (c *cli) newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.app.Notes.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			return nil
		},
	}
}

func (c *cli) newDeleteAllCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete-all",
		Short: "Delete every note in every category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete every note without --yes")
			}
			res, err := c.app.Notes.DeleteAll(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm deleting every note")
	return cmd
}

func (c *cli) newSortCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sort [category]",
		Short: "Sort one category A-Z by primary text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var category string
			if len(args) == 1 {
				category = args[0]
			}
			res, err := c.app.Notes.Sort(cmd.Context(), category)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			return nil
		},
	}
}
