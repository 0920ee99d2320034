package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "photo-insight",
	Short: "A CLI tool that fuses weak perception signals into image insights",
	Long: `Photo Insight fuses noisy per-source perception outputs about a still
image (classifications, object detections, scene tags, recognized text,
saliency, named people) into ranked primary subjects, a purpose category,
and a purpose-aware quality assessment.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
