package cmd

import (
	"fmt"
	"image"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/image/draw"

	"github.com/Saratii/texpack/pkg/tile"
)

var resizeCmd = &cobra.Command{
	Use:   "resize INPUT OUTPUT SIZE",
	Short: "Resize a raw asset image into a square source tile",
	Long: `Resize a raw asset image down to a SIZE x SIZE source tile.

The input must be at least SIZE pixels on both axes; upscaling raw assets
is refused. Resampling uses the Catmull-Rom kernel.

Examples:
  texpack resize assets/raw/gravelly_sand_diff_4k.jpg assets/source_tiles/sand2.png 400`,
	Args: cobra.ExactArgs(3),
	RunE: runResize,
}

func init() {
	rootCmd.AddCommand(resizeCmd)
}

func runResize(cmd *cobra.Command, args []string) error {
	input, output := args[0], args[1]

	size, err := strconv.Atoi(args[2])
	if err != nil || size <= 0 {
		return fmt.Errorf("SIZE must be a positive integer, got %q", args[2])
	}

	src, err := tile.Load(input)
	if err != nil {
		return err
	}

	if src.Width < size || src.Height < size {
		return fmt.Errorf("image too small: %dx%d, need at least %dx%d",
			src.Width, src.Height, size, size)
	}

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src.RGBA(), image.Rect(0, 0, src.Width, src.Height), draw.Src, nil)

	if err := tile.WritePNG(output, tile.FromImage(dst)); err != nil {
		return fmt.Errorf("failed to write %s: %v", output, err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "saved: %s\n", output)
	return nil
}
