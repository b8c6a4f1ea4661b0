package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/lex-research/internal/model"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the supported jurisdictions and research questions",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog := model.DefaultCatalog()

		cmd.Println("Jurisdictions:")
		for _, j := range catalog.Jurisdictions() {
			marker := ""
			if catalog.IsEUMember(j) {
				marker = " (EU)"
			}
			cmd.Println(fmt.Sprintf("  %s%s", j, marker))
		}

		cmd.Println("\nQuestions:")
		for _, q := range catalog.Questions() {
			cmd.Println(fmt.Sprintf("  %s. %s", q.ID, q.Title))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}
