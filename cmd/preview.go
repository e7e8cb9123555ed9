package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Saratii/texpack/internal/preview"
	"github.com/Saratii/texpack/pkg/tile"
)

var previewCmd = &cobra.Command{
	Use:   "preview IMAGE",
	Short: "Tile an image in a grid for visual seam inspection",
	Long: `Repeat a tile image in an NxN grid so seams and padding artifacts can be
inspected the way the tile repeats in-engine.

The grid can be written to a file or served over HTTP for a browser.

Examples:
  # Write a 3x3 preview grid
  texpack preview assets/source_tiles/dirt.png -o dirt_preview.png

  # Serve the preview at http://localhost:8080/preview.png
  texpack preview assets/source_tiles/dirt.png --serve

  # Larger grid on a custom port
  texpack preview dirt.png --grid 5 --serve --port 3000`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().IntP("grid", "g", 3, "grid size (N tiles per side)")
	previewCmd.Flags().StringP("out", "o", "", "write the preview grid to this PNG file")
	previewCmd.Flags().Bool("serve", false, "serve the preview over HTTP")
	previewCmd.Flags().StringP("bind", "b", "localhost", "bind address (serve mode)")
	previewCmd.Flags().Int("port", 8080, "port to listen on (serve mode)")

	viper.BindPFlag("preview.grid", previewCmd.Flags().Lookup("grid"))
	viper.BindPFlag("preview.out", previewCmd.Flags().Lookup("out"))
	viper.BindPFlag("preview.serve", previewCmd.Flags().Lookup("serve"))
	viper.BindPFlag("preview.bind", previewCmd.Flags().Lookup("bind"))
	viper.BindPFlag("preview.port", previewCmd.Flags().Lookup("port"))
}

func runPreview(cmd *cobra.Command, args []string) error {
	grid := viper.GetInt("preview.grid")
	out := viper.GetString("preview.out")
	serve := viper.GetBool("preview.serve")

	if out == "" && !serve {
		return fmt.Errorf("specify --out and/or --serve")
	}

	src, err := tile.Load(args[0])
	if err != nil {
		return err
	}

	img, err := preview.Grid(src, grid)
	if err != nil {
		return err
	}

	if out != "" {
		if err := tile.WritePNG(out, img); err != nil {
			return fmt.Errorf("failed to write preview: %v", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Preview saved: %s (%dx%d)\n", out, img.Width, img.Height)
	}

	if !serve {
		return nil
	}

	srv, err := preview.NewServer(img)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", viper.GetString("preview.bind"), viper.GetInt("preview.port"))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      srv.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		fmt.Fprintf(cmd.ErrOrStderr(), "\nShutting down preview server...\n")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	fmt.Fprintf(cmd.ErrOrStderr(), "Serving preview on http://%s/preview.png\n", addr)
	fmt.Fprintf(cmd.ErrOrStderr(), "Health check: http://%s/health\n", addr)

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("server error: %v", err)
	}

	return nil
}
