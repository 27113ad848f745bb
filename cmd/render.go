// Package cmd: render command.
// Renders a page document: page.json → validate → render → write.
// Exactly one output format is chosen per run; --zip writes the
// downloadable bundle of HTML, JSON and Markdown instead.
package cmd

import (
	"fmt"
	"os"

	"github.com/landinghub/pagekit/core"
	"github.com/landinghub/pagekit/core/output"
	"github.com/landinghub/pagekit/core/page"
	"github.com/landinghub/pagekit/core/render"
	"github.com/spf13/cobra"
)

// Flag variables.
var (
	flagHTML     bool
	flagMarkdown bool
	flagPDF      bool
	flagJSON     bool
	flagZip      bool
)

var renderCmd = &cobra.Command{
	Use:   "render <page.json>",
	Short: "Render a page document to the specified output format",
	Long: `Render validates a page document and converts it to static HTML,
Markdown, a PDF proof, or normalized JSON. --zip writes index.html, page.json
and page.md together as a zip bundle.

Examples:
  pagekit render page.json --html
  pagekit render page.json --markdown --output_dir ./out
  pagekit render page.json --zip --name "Spring launch"`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	// Output format flags (mutually exclusive).
	renderCmd.Flags().BoolVar(&flagHTML, "html", false, "Output static HTML")
	renderCmd.Flags().BoolVar(&flagMarkdown, "markdown", false, "Output Markdown")
	renderCmd.Flags().BoolVar(&flagPDF, "pdf", false, "Output a PDF proof")
	renderCmd.Flags().BoolVar(&flagJSON, "json", false, "Output normalized page JSON")
	renderCmd.Flags().BoolVar(&flagZip, "zip", false, "Output a zip bundle (HTML, JSON, Markdown)")

	renderCmd.Flags().String("name", "", "Output file name (default: page title)")
}

func runRender(cmd *cobra.Command, args []string) error {
	if err := validateFormatFlags(); err != nil {
		return err
	}

	doc, err := readPage(args[0])
	if err != nil {
		return err
	}

	writer, err := output.New(cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("initializing output writer: %w", err)
	}
	name := outputName(cmd.Flags(), doc, args[0])

	var path string
	if flagZip {
		files, err := bundleFiles(doc)
		if err != nil {
			return err
		}
		path, err = writer.WriteBundle(name, files)
		if err != nil {
			return err
		}
	} else {
		renderer := selectRenderer()
		data, err := renderer.Render(doc)
		if err != nil {
			return fmt.Errorf("render: %w", err)
		}
		path, err = writer.Write(name, data, renderer.Extension())
		if err != nil {
			return err
		}
	}

	fmt.Fprintf(os.Stdout, "✓ Written: %s\n", path)
	return nil
}

// bundleFiles renders the files of the downloadable zip bundle.
func bundleFiles(doc *page.PageData) (map[string][]byte, error) {
	files := map[string][]byte{"index.html": render.HTML(doc)}
	for name, r := range map[string]core.Renderer{
		"page.json": render.NewJSONRenderer(),
		"page.md":   render.NewMarkdownRenderer(),
	} {
		data, err := r.Render(doc)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", name, err)
		}
		files[name] = data
	}
	return files, nil
}

// validateFormatFlags checks that exactly one output format is chosen.
func validateFormatFlags() error {
	formatCount := 0
	for _, set := range []bool{flagHTML, flagMarkdown, flagPDF, flagJSON, flagZip} {
		if set {
			formatCount++
		}
	}

	if formatCount == 0 {
		return fmt.Errorf("exactly one output format is required: --html, --markdown, --pdf, --json, or --zip")
	}
	if formatCount > 1 {
		return fmt.Errorf("only one output format allowed per run (got %d)", formatCount)
	}
	return nil
}

// selectRenderer creates the appropriate Renderer based on flags.
func selectRenderer() core.Renderer {
	switch {
	case flagMarkdown:
		return render.NewMarkdownRenderer()
	case flagPDF:
		return render.NewPDFRenderer()
	case flagJSON:
		return render.NewJSONRenderer()
	default:
		return render.NewHTMLRenderer()
	}
}
