package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/lingo/internal/catalog"
	"github.com/abhisek/lingo/internal/mastery"
)

func newCollectionsCommand(ctx *commandContext) *cobra.Command {
	var language string

	cmd := &cobra.Command{
		Use:     "collections",
		Aliases: []string{"ls"},
		Short:   "List available collections with your mastery",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(a *app) error {
				collections := a.catalog.List()
				if language != "" {
					collections = a.catalog.ForLanguage(language)
				}
				if len(collections) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No collections found. Languages: %s\n",
						strings.Join(a.catalog.Languages(), ", "))
					return nil
				}

				rows := make([][]string, 0, len(collections))
				for _, c := range collections {
					progress, err := a.mastery.Progress(cmd.Context(), a.userID, c.ID)
					if err != nil {
						return err
					}
					rows = append(rows, []string{
						c.ID,
						c.LanguageCode,
						collectionName(c),
						strconv.Itoa(len(c.Items)),
						fmt.Sprintf("%d%%", mastery.MasteryPercent(c.ItemIDs(), progress)),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Lang", "Name", "Items", "Mastered"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&language, "lang", "l", "", "Only show collections for this language code")
	return cmd
}

func collectionName(c *catalog.Collection) string {
	if c.NameNative != "" && c.NameNative != c.Name {
		return c.Name + " (" + c.NameNative + ")"
	}
	return c.Name
}
