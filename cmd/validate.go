package cmd

import (
	"fmt"
	"os"

	"github.com/landinghub/pagekit/core/asset"
	"github.com/landinghub/pagekit/core/page"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <page.json>...",
	Short: "Check page documents against the page model",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, args []string) error {
	var failed int
	for _, path := range args {
		doc, err := readPage(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "✗ %v\n", err)
			failed++
			continue
		}

		var elements, external int
		page.Walk(doc.Elements, func(page.Path, *page.Element) bool {
			elements++
			return true
		})
		refs := asset.NewQueue()
		refs.Add(doc.AssetRefs()...)
		for _, ref := range refs.All() {
			if asset.Classify(ref) != asset.KindDataURI {
				external++
			}
		}
		fmt.Fprintf(os.Stdout, "✓ %s: %d elements, %d assets (%d not embedded)\n", path, elements, refs.Len(), external)
	}

	if failed > 0 {
		return fmt.Errorf("%d/%d documents invalid", failed, len(args))
	}
	return nil
}
