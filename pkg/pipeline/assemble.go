package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"

	"sheetpress/pkg/assemble"
	"sheetpress/pkg/layout"
)

// AssembleSheets renders every page of a layout into a complete SVG
// sheet. Pages are independent, so assembly fans out across a bounded
// worker group; results are written by page index, keeping the output in
// page order regardless of completion order.
func AssembleSheets(ctx context.Context, res *layout.Result, opts Options) ([][]byte, error) {
	opts.SetAssembleDefaults()

	doc := assemble.NewDoc(res)
	sheets := make([][]byte, len(res.Pages))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Parallelism)
	for i, page := range res.Pages {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sheets[i] = assemble.Page(page, doc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sheets, nil
}
