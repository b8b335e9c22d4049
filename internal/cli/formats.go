package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"sheetpress/pkg/sheet"
)

// newFormatsCmd creates the formats command, listing the sheet format
// catalog the layout engine selects from.
func newFormatsCmd() *cobra.Command {
	var catalogPath string

	cmd := &cobra.Command{
		Use:   "formats",
		Short: "List available sheet formats",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := sheet.Builtin()
			if catalogPath != "" {
				c, err := sheet.Load(catalogPath)
				if err != nil {
					return err
				}
				catalog = c
			}

			fmt.Println(StyleTitle.Render("Sheet formats") + " " + StyleDim.Render(fmt.Sprintf("(catalog v%d)", catalog.Version())))
			for _, f := range catalog.ByArea() {
				d := f.DrawingRect()
				printKeyValue(f.Name, fmt.Sprintf("%.0f×%.0f mm, drawing area %.0f×%.0f mm, %d dpi",
					f.WidthMM, f.HeightMM, d.W, d.H, f.DPI))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "external sheet format catalog (TOML)")
	return cmd
}
