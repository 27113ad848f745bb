// Package cmd: pack and unpack commands.
// pack bundles a page with its images into a portable .iuhpage file;
// unpack restores an editable page with the images embedded inline.
package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/landinghub/pagekit/core"
	"github.com/landinghub/pagekit/core/asset"
	"github.com/landinghub/pagekit/core/fetch"
	"github.com/landinghub/pagekit/core/iuhpage"
	"github.com/landinghub/pagekit/core/output"
	"github.com/landinghub/pagekit/core/render"
	"github.com/spf13/cobra"
)

var (
	flagLenient      bool
	flagRenderUnpack bool
)

var packCmd = &cobra.Command{
	Use:   "pack <page.json>",
	Short: "Bundle a page and its images into a .iuhpage file",
	Long: `Pack resolves every image source and background image of a page to an
embedded data URI and writes the page with its image table as a .iuhpage file.

Relative references and storage keys are read from --assets-dir, then from
object storage when configured; absolute URLs are downloaded.

Examples:
  pagekit pack page.json --assets-dir ./images
  pagekit pack page.json --lenient`,
	Args: cobra.ExactArgs(1),
	RunE: runPack,
}

var unpackCmd = &cobra.Command{
	Use:   "unpack <file.iuhpage>",
	Short: "Restore an editable page from a .iuhpage file",
	Args:  cobra.ExactArgs(1),
	RunE:  runUnpack,
}

func init() {
	rootCmd.AddCommand(packCmd)
	rootCmd.AddCommand(unpackCmd)

	packCmd.Flags().String("assets-dir", ".", "Directory holding relative image references")
	packCmd.Flags().BoolVar(&flagLenient, "lenient", false, "Skip images that cannot be resolved")
	packCmd.Flags().String("name", "", "Output file name (default: page title)")
	mustBind("assets.dir", packCmd.Flags().Lookup("assets-dir"))

	unpackCmd.Flags().BoolVar(&flagRenderUnpack, "render", false, "Also write the rendered HTML")
	unpackCmd.Flags().String("name", "", "Output file name (default: page title)")
}

func runPack(cmd *cobra.Command, args []string) error {
	doc, err := readPage(args[0])
	if err != nil {
		return err
	}

	resolver, err := newResolver()
	if err != nil {
		return err
	}
	packer := iuhpage.New(resolver, logger)
	packer.Lenient = flagLenient

	env, err := packer.Pack(cmd.Context(), doc)
	if err != nil {
		return fmt.Errorf("pack: %w", err)
	}

	var buf bytes.Buffer
	if err := iuhpage.Encode(&buf, env); err != nil {
		return err
	}
	writer, err := output.New(cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("initializing output writer: %w", err)
	}
	path, err := writer.Write(outputName(cmd.Flags(), doc, args[0]), buf.Bytes(), iuhpage.Extension)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Written: %s (%d images embedded)\n", path, len(env.EmbeddedImages))
	return nil
}

func runUnpack(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening package: %w", err)
	}
	defer f.Close()

	env, err := iuhpage.Decode(f)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	doc, err := iuhpage.Unpack(env)
	if err != nil {
		return err
	}

	writer, err := output.New(cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("initializing output writer: %w", err)
	}
	name := outputName(cmd.Flags(), doc, args[0])

	renderers := []core.Renderer{render.NewJSONRenderer()}
	if flagRenderUnpack {
		renderers = append(renderers, render.NewHTMLRenderer())
	}
	for _, r := range renderers {
		data, err := r.Render(doc)
		if err != nil {
			return fmt.Errorf("render: %w", err)
		}
		path, err := writer.Write(name, data, r.Extension())
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "✓ Written: %s\n", path)
	}
	return nil
}

// newResolver builds the asset resolver chain from configuration: the
// assets directory, then object storage when configured, with external
// URLs downloaded over HTTP.
func newResolver() (core.AssetResolver, error) {
	fetcher := fetch.New()
	if cfg.Assets.HTTPTimeout > 0 {
		fetcher = fetch.NewWithClient(newHTTPClient(cfg.Assets.HTTPTimeout))
	}
	fetcher.MaxBytes = cfg.Assets.MaxBytes

	router := &asset.Router{
		External: asset.NewHTTPResolver(fetcher),
		Keys:     []core.AssetResolver{asset.NewFileResolver(cfg.Assets.Dir)},
		Logger:   logger,
	}
	if cfg.StorageEnabled() {
		store, err := asset.NewMinioStore(cfg.Storage, cfg.Assets.MaxBytes, logger)
		if err != nil {
			return nil, fmt.Errorf("initializing object storage: %w", err)
		}
		router.Keys = append(router.Keys, asset.NewStorageResolver(store, cfg.Assets.Prefix))
	}
	return router, nil
}
