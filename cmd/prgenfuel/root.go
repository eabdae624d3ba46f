package main

import (
	"errors"
	"io"
	"io/fs"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"prgenfuel/internal/config"

	// register all backends with the storage factory.
	_ "prgenfuel/internal/storage/all"
)

var (
	cfgFile string
	envFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "prgenfuel",
	Short: "Reshape EIA-923 Puerto Rico generation and fuel data",
	Long: `prgenfuel reads the wide EIA-923 Puerto Rico generation/fuel extract,
melts its twelve monthly columns per metric into one row per plant, fuel and
month, applies known data corrections and writes monthly and annual parquet
tables. Both tables can also be mirrored into a database.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
		}
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "pipeline config (.json, .yaml); defaults are used when empty")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with PRGENFUEL_* overrides")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logs")
}

// loadConfig loads the pipeline and prints validation findings. It fails when
// any finding is an error.
func loadConfig(w io.Writer) (config.Pipeline, error) {
	p, err := config.Load(cfgFile)
	if err != nil {
		return config.Pipeline{}, err
	}
	issues := config.ValidatePipeline(p)
	for _, iss := range issues {
		printf(w, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		return config.Pipeline{}, errors.New("configuration is invalid")
	}
	return p, nil
}
