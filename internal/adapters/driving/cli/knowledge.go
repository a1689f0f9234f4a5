package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docask/internal/adapters/driven/config/file"
)

var knowledgeCmd = &cobra.Command{
	Use:   "knowledge",
	Short: "Manage the product and vendor knowledge table",
	Long: `The knowledge table defines products and vendors. Questions naming an
entry, or one of its aliases, search for the canonical name, and when no
document mentions it the entry's description is the answer.`,
}

var knowledgeImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Replace the knowledge table from a TOML or JSON file",
	Long: `Replaces the whole knowledge table with the entries in a file.

TOML files use [[entries]] tables:

  [[entries]]
  name = "Dealertrack"
  category = "vendor"
  description = "Dealer management software used by our stores."
  aliases = ["dealer track", "DT"]

JSON files (*.json) hold the same fields, either as an array or under
an "entries" key. Entry order is kept; the first matching entry wins.`,
	Args: cobra.ExactArgs(1),
	RunE: runKnowledgeImport,
}

var knowledgeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List knowledge table entries",
	Args:  cobra.NoArgs,
	RunE:  runKnowledgeList,
}

func init() {
	knowledgeCmd.AddCommand(knowledgeImportCmd)
	knowledgeCmd.AddCommand(knowledgeListCmd)
	rootCmd.AddCommand(knowledgeCmd)
}

func runKnowledgeImport(cmd *cobra.Command, args []string) error {
	entries, err := file.LoadKnowledge(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	if err := requireServices(cmd); err != nil {
		return err
	}
	if err := knowledgeStore.Replace(cmd.Context(), entries); err != nil {
		return fmt.Errorf("saving knowledge: %w", err)
	}

	cmd.Printf("Imported %d knowledge entries.\n", len(entries))
	return nil
}

func runKnowledgeList(cmd *cobra.Command, _ []string) error {
	if err := requireServices(cmd); err != nil {
		return err
	}

	table, err := knowledgeStore.Table(cmd.Context())
	if err != nil {
		return fmt.Errorf("loading knowledge: %w", err)
	}
	if table.Len() == 0 {
		cmd.Println("Knowledge table is empty. Use 'docask knowledge import' to add entries.")
		return nil
	}

	for _, e := range table.Entries() {
		cmd.Printf("%s", e.Name)
		if e.Category != "" {
			cmd.Printf(" [%s]", e.Category)
		}
		cmd.Println()
		if len(e.Aliases) > 0 {
			cmd.Printf("  aliases: %s\n", strings.Join(e.Aliases, ", "))
		}
		if e.Description != "" {
			cmd.Printf("  %s\n", e.Description)
		}
	}
	return nil
}
