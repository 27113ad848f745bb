package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/landinghub/pagekit/core/library"
	"github.com/landinghub/pagekit/core/page"
	"github.com/spf13/cobra"
)

var (
	flagTemplateName        string
	flagTemplateDescription string
	flagTemplateCategory    string
	flagTemplateTags        string
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Manage the local template library",
}

var libraryAddCmd = &cobra.Command{
	Use:   "add <page.json>",
	Short: "Add a page document to the template library",
	Args:  cobra.ExactArgs(1),
	RunE:  runLibraryAdd,
}

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List library templates",
	Args:  cobra.NoArgs,
	RunE:  runLibraryList,
}

var libraryShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a template as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runLibraryShow,
}

var libraryDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a template",
	Args:  cobra.ExactArgs(1),
	RunE:  runLibraryDelete,
}

func init() {
	rootCmd.AddCommand(libraryCmd)
	libraryCmd.AddCommand(libraryAddCmd, libraryListCmd, libraryShowCmd, libraryDeleteCmd)

	libraryAddCmd.Flags().StringVar(&flagTemplateName, "name", "", "Template name (default: page title)")
	libraryAddCmd.Flags().StringVar(&flagTemplateDescription, "description", "", "Template description")
	libraryAddCmd.Flags().StringVar(&flagTemplateCategory, "category", "", "Marketplace category")
	libraryAddCmd.Flags().StringVar(&flagTemplateTags, "tags", "", "Comma-separated keywords")
}

func openLibrary() (*library.Store, error) {
	store, err := library.Open(cfg.Library.Path)
	if err != nil {
		return nil, fmt.Errorf("opening template library: %w", err)
	}
	return store, nil
}

func runLibraryAdd(cmd *cobra.Command, args []string) error {
	doc, err := readPage(args[0])
	if err != nil {
		return err
	}
	store, err := openLibrary()
	if err != nil {
		return err
	}
	defer store.Close()

	name := flagTemplateName
	if name == "" {
		name = doc.Meta.Title
	}
	if name == "" {
		name = baseName(args[0])
	}
	t, err := store.Add(cmd.Context(), library.Template{
		Name:        name,
		Description: flagTemplateDescription,
		Category:    flagTemplateCategory,
		Keywords:    page.ParseKeywords(flagTemplateTags),
		PageData:    doc,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Added template %s (%s)\n", t.Name, t.ID)
	return nil
}

func runLibraryList(cmd *cobra.Command, _ []string) error {
	store, err := openLibrary()
	if err != nil {
		return err
	}
	defer store.Close()

	templates, err := store.List(cmd.Context())
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tKEYWORDS\tCREATED")
	for _, t := range templates {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Name, t.Category, strings.Join(t.Keywords, ", "), t.CreatedAt)
	}
	return tw.Flush()
}

func runLibraryShow(cmd *cobra.Command, args []string) error {
	store, err := openLibrary()
	if err != nil {
		return err
	}
	defer store.Close()

	t, err := store.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(t)
}

func runLibraryDelete(cmd *cobra.Command, args []string) error {
	store, err := openLibrary()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Deleted template %s\n", args[0])
	return nil
}
