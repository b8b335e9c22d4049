package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"sheetpress/pkg/pipeline"
	"sheetpress/pkg/publish"
)

// generateOpts holds the command-line flags for the generate command.
type generateOpts struct {
	output   string // output directory for the published sheet set
	format   string // sheet format name, empty selects the smallest fitting format
	scale    int    // scale denominator, 0 selects the largest fitting scale
	title    string // overrides the scene's own title
	catalog  string // external TOML format catalog
	jobs     int    // concurrent sheet assembly workers
	noCache  bool   // disable the stage cache
	refresh  bool   // recompute and rewrite cached stages
	redisURL string // use Redis instead of the file cache
}

// newGenerateCmd creates the generate command: the full import → layout →
// assemble → publish run for one source file.
func newGenerateCmd() *cobra.Command {
	var opts generateOpts

	cmd := &cobra.Command{
		Use:   "generate [source]",
		Short: "Generate a published sheet set from a scene source",
		Long: `Generate reads a scene source (.json, .txt, .csv, .xml or SQLite
database), lays it out onto scaled sheets and publishes the set as HTML
pages with a manifest. Content that exceeds one sheet at the minimum
scale is split across numbered sheets with continuation references.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "out", "o", "", "output directory (default: <source>_sheets)")
	cmd.Flags().StringVarP(&opts.format, "sheet-format", "f", "", "sheet format name (default: auto)")
	cmd.Flags().IntVarP(&opts.scale, "scale", "s", 0, "scale denominator, e.g. 500 for 1:500 (default: auto)")
	cmd.Flags().StringVar(&opts.title, "title", "", "override the drawing title")
	cmd.Flags().StringVar(&opts.catalog, "catalog", "", "external sheet format catalog (TOML)")
	cmd.Flags().IntVar(&opts.jobs, "jobs", 0, "concurrent sheet assembly workers")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the stage cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute cached stages")
	cmd.Flags().StringVar(&opts.redisURL, "redis", "", "Redis URL for the stage cache")

	return cmd
}

func runGenerate(ctx context.Context, source string, opts *generateOpts) error {
	outDir := opts.output
	if outDir == "" {
		outDir = strings.TrimSuffix(source, filepath.Ext(source)) + "_sheets"
	}

	runner, err := newRunner(ctx, opts.noCache, opts.redisURL)
	if err != nil {
		return err
	}
	defer runner.Close()

	pOpts := pipeline.Options{
		Source:      source,
		Format:      opts.format,
		Scale:       opts.scale,
		Title:       opts.title,
		Catalog:     opts.catalog,
		Parallelism: opts.jobs,
		Refresh:     opts.refresh,
		Logger:      loggerFromContext(ctx),
	}
	if err := pOpts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Importing %s...", source))
	spinner.Start()
	s, sceneHit, err := runner.ImportWithCacheInfo(ctx, pOpts)
	if err != nil {
		spinner.StopWithError("Import failed")
		return err
	}
	spinner.Stop()
	printInfo("Imported %s", source)
	printStats(s.NodeCount(), s.ConnectorCount(), sceneHit)

	if ctx.Err() != nil {
		return ctx.Err()
	}

	spinner = newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()
	res, _, err := runner.BuildLayoutWithCacheInfo(ctx, s, pOpts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	spinner = newSpinnerWithContext(ctx, "Assembling sheets...")
	spinner.Start()
	sheets, _, err := runner.AssembleWithCacheInfo(ctx, res, pOpts)
	if err != nil {
		spinner.StopWithError("Assembly failed")
		return err
	}
	spinner.Stop()

	p, err := publish.New(outDir)
	if err != nil {
		return err
	}
	manifest, err := p.Publish(res, sheets)
	if err != nil {
		return err
	}

	printSuccess("Published %d sheet(s) at 1:%d on %s",
		res.PageCount(), res.Scale, res.Format.Name)
	for _, entry := range manifest.Entries {
		printFile(filepath.Join(outDir, entry.Sheet+".html"))
	}
	printFile(filepath.Join(outDir, "manifest.json"))
	printNextStep("Preview the set", fmt.Sprintf("sheetpress serve --dir %s", outDir))
	return nil
}
