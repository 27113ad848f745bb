// Package cmd: import command.
// Converts HTML into an editable page document:
// read/fetch → import → metadata → write page JSON.
package cmd

import (
	"fmt"
	"os"

	"github.com/landinghub/pagekit/core/extract"
	"github.com/landinghub/pagekit/core/output"
	"github.com/landinghub/pagekit/core/page"
	"github.com/landinghub/pagekit/core/render"
	"github.com/spf13/cobra"
)

var (
	flagTitle       string
	flagDescription string
	flagTags        string
	flagMeta        string
)

var importCmd = &cobra.Command{
	Use:   "import <file.html|url>",
	Short: "Import HTML as an editable page document",
	Long: `Import reconstructs a page document from HTML. Pages exported by pagekit
are rebuilt exactly; any other HTML is converted heuristically.

Metadata guessed from the HTML head is replaced by --title, --description
and --tags, or by a YAML --meta file holding the same fields.

Examples:
  pagekit import landing.html --title "Spring launch" --tags "saas, launch"
  pagekit import https://example.com --meta meta.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&flagTitle, "title", "", "Page title")
	importCmd.Flags().StringVar(&flagDescription, "description", "", "Page description")
	importCmd.Flags().StringVar(&flagTags, "tags", "", "Comma-separated keywords")
	importCmd.Flags().StringVar(&flagMeta, "meta", "", "YAML file with title, description and tags")
	importCmd.Flags().String("name", "", "Output file name (default: page title)")
}

func runImport(cmd *cobra.Command, args []string) error {
	src, err := loadHTML(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	doc, err := extract.New().Import(src)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	meta, err := importMeta(cmd, doc.Meta)
	if err != nil {
		return err
	}
	doc.Meta = meta

	writer, err := output.New(cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("initializing output writer: %w", err)
	}
	data, err := render.NewJSONRenderer().Render(doc)
	if err != nil {
		return fmt.Errorf("encode page: %w", err)
	}
	path, err := writer.Write(outputName(cmd.Flags(), doc, args[0]), data, ".json")
	if err != nil {
		return err
	}

	logger.WithField("elements", len(doc.Elements)).Debug("page imported")
	fmt.Fprintf(os.Stdout, "✓ Written: %s\n", path)
	return nil
}

// importMeta builds the authoritative metadata: the --meta file first, then
// explicitly set flags on top. Without either, the guessed metadata stays.
func importMeta(cmd *cobra.Command, guessed *page.Meta) (*page.Meta, error) {
	flags := cmd.Flags()
	if flagMeta == "" && !flags.Changed("title") && !flags.Changed("description") && !flags.Changed("tags") {
		return guessed, nil
	}

	var fields metaFile
	if flagMeta != "" {
		m, err := readMetaFile(flagMeta)
		if err != nil {
			return nil, err
		}
		fields = *m
	}
	if flags.Changed("title") {
		fields.Title = flagTitle
	}
	if flags.Changed("description") {
		fields.Description = flagDescription
	}
	if flags.Changed("tags") {
		fields.Tags = flagTags
	}
	return page.NewMeta(fields.Title, fields.Description, fields.Tags, timeNow()), nil
}
