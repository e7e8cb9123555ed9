package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Saratii/texpack/internal/builder"
	"github.com/Saratii/texpack/internal/ktx"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "texpack",
	Short: "Pack padded tiles into a mip-mapped KTX2 atlas or texture array",
	Long: `texpack builds GPU-ready textures from individual tile images.

Each tile is edge-extruded into a padding border so mip filtering and
atlas sampling never bleed across tile seams. The padded tiles are packed
into a horizontal atlas (or staged as texture-array layers) and handed to
the toktx tool from KTX-Software, which generates the mip chain and
writes the final KTX2 container.

Examples:
  # Pack two tiles into a padded atlas
  texpack --tile assets/source_tiles/dirt.png --tile assets/source_tiles/grass.png -o assets/texture_atlas.ktx2

  # Same tiles as a texture array with one layer per tile
  texpack --tile dirt.png --tile grass.png --array -o assets/texture_array.ktx2

  # Wider padding and a capped mip chain
  texpack --tile dirt.png --tile grass.png --pad 4 --levels 3 -o atlas.ktx2

  # Preview how a tile repeats
  texpack preview assets/source_tiles/dirt.png --serve`,
	RunE: runBuild,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.texpack.yaml)")

	// Input options
	rootCmd.Flags().StringSliceP("tile", "t", []string{}, "source tile image (repeatable, order is layout/layer order)")
	rootCmd.Flags().IntP("pad", "p", 2, "edge-extrusion width in pixels")

	// Output options
	rootCmd.Flags().String("padded-dir", "assets/padded_tiles", "directory for intermediate padded tiles")
	rootCmd.Flags().String("atlas", "assets/texture_atlas_padded.png", "intermediate atlas image path")
	rootCmd.Flags().StringP("output", "o", "assets/texture_atlas.ktx2", "final KTX2 container path")
	rootCmd.Flags().Bool("array", false, "build a texture array instead of an atlas")

	// Tool options
	rootCmd.Flags().String("toktx", "toktx", "path to the toktx executable")
	rootCmd.Flags().Int("levels", 0, "cap the mip chain at N levels (0 = full chain)")

	// Bind flags to viper for root command
	viper.BindPFlag("tile", rootCmd.Flags().Lookup("tile"))
	viper.BindPFlag("pad", rootCmd.Flags().Lookup("pad"))
	viper.BindPFlag("padded-dir", rootCmd.Flags().Lookup("padded-dir"))
	viper.BindPFlag("atlas", rootCmd.Flags().Lookup("atlas"))
	viper.BindPFlag("output", rootCmd.Flags().Lookup("output"))
	viper.BindPFlag("array", rootCmd.Flags().Lookup("array"))
	viper.BindPFlag("toktx", rootCmd.Flags().Lookup("toktx"))
	viper.BindPFlag("levels", rootCmd.Flags().Lookup("levels"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".texpack" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".texpack")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func runBuild(cmd *cobra.Command, args []string) error {
	tiles := viper.GetStringSlice("tile")
	if len(tiles) == 0 {
		return cmd.Help()
	}

	pad := viper.GetInt("pad")
	if pad < 0 {
		return fmt.Errorf("padding must not be negative (got %d)", pad)
	}

	levels := viper.GetInt("levels")
	if levels < 0 {
		return fmt.Errorf("levels must not be negative (got %d)", levels)
	}

	cfg := builder.Config{
		Tiles:     tiles,
		Pad:       pad,
		PaddedDir: viper.GetString("padded-dir"),
		AtlasPNG:  viper.GetString("atlas"),
		Output:    viper.GetString("output"),
		Layered:   viper.GetBool("array"),
	}

	invoker := ktx.New(viper.GetString("toktx"))
	invoker.Levels = levels

	return builder.New(cfg, invoker).Build()
}
