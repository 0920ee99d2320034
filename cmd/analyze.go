package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	_ "golang.org/x/image/bmp"

	"github.com/mkralik/photo-insight/internal/analyzer"
	"github.com/mkralik/photo-insight/internal/config"
	"github.com/mkralik/photo-insight/internal/perception"
	"github.com/mkralik/photo-insight/internal/signal"
	"github.com/mkralik/photo-insight/internal/vocab"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [image-file]",
	Short: "Analyze a single image",
	Long: `Analyze a single image: detect its primary subjects, purpose and a
purpose-aware quality assessment.

Perception signals come either from a vision backend (--provider) or from
a pre-computed signals JSON file (--signals).

Examples:
  # Analyze with the OpenAI vision backend
  photo-insight analyze --provider openai photo.jpg

  # Analyze with pre-computed signals, no backend call
  photo-insight analyze --signals photo.signals.json photo.jpg

  # Output as JSON
  photo-insight analyze --provider gemini --json photo.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().String("provider", "", "Perception backend: openai, gemini or ollama")
	analyzeCmd.Flags().String("signals", "", "Path to a pre-computed signals JSON file")
	analyzeCmd.Flags().Bool("json", false, "Output as JSON")
	analyzeCmd.Flags().Bool("trace", false, "Print scoring diagnostics")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	providerName := mustGetString(cmd, "provider")
	signalsPath := mustGetString(cmd, "signals")
	jsonOutput := mustGetBool(cmd, "json")
	trace := mustGetBool(cmd, "trace")

	if providerName == "" && signalsPath == "" {
		return errors.New("either --provider or --signals is required")
	}

	cfg := config.Load()
	provider, err := buildProvider(cmd.Context(), cfg, providerName, signalsPath)
	if err != nil {
		return err
	}

	table := vocab.MustLoad()
	var opts []analyzer.Option
	if trace {
		opts = append(opts, analyzer.WithTrace(func(format string, a ...any) {
			fmt.Fprintf(os.Stderr, format+"\n", a...)
		}))
	}
	a := analyzer.New(table, opts...)

	result, err := analyzeFile(cmd.Context(), a, provider, args[0])
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printResult(args[0], result)
	return nil
}

// buildProvider resolves the perception source: a signals file takes
// precedence over a backend.
func buildProvider(ctx context.Context, cfg *config.Config, name, signalsPath string) (perception.Provider, error) {
	if signalsPath != "" {
		return perception.NewFileProvider(signalsPath), nil
	}
	switch name {
	case "openai":
		if cfg.OpenAI.Token == "" {
			return nil, errors.New("OPENAI_TOKEN is not set")
		}
		return perception.NewOpenAIProvider(cfg.OpenAI.Token), nil
	case "gemini":
		if cfg.Gemini.APIKey == "" {
			return nil, errors.New("GEMINI_API_KEY is not set")
		}
		return perception.NewGeminiProvider(ctx, cfg.Gemini.APIKey)
	case "ollama":
		return perception.NewOllamaProvider(cfg.Ollama.URL, cfg.Ollama.Model), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (want openai, gemini or ollama)", name)
	}
}

// analyzeFile runs perception and analysis for one image on disk.
func analyzeFile(ctx context.Context, a *analyzer.Analyzer, provider perception.Provider, path string) (*signal.Result, error) {
	imageData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	sig, err := provider.Perceive(ctx, imageData)
	if err != nil {
		return nil, fmt.Errorf("perception failed for %s: %w", path, err)
	}

	// A broken image is not fatal: quality assessment degrades to its
	// neutral default.
	var img image.Image
	if decoded, _, err := image.Decode(bytes.NewReader(imageData)); err == nil {
		img = decoded
	}

	result := a.Analyze(img, sig)
	return &result, nil
}

func printResult(path string, result *signal.Result) {
	fmt.Printf("%s\n", path)
	fmt.Printf("  Purpose: %s\n", result.Purpose)

	fmt.Println("  Subjects:")
	if len(result.Subjects) == 0 {
		fmt.Println("    (none)")
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for i, s := range result.Subjects {
		detail := s.Detail
		if detail == "" {
			detail = string(s.Source)
		}
		fmt.Fprintf(w, "    %d. %s\t%.0f%%\t%s\n", i+1, s.Label, s.Confidence*100, detail)
	}
	w.Flush()

	q := result.Quality
	fmt.Printf("  Quality: %s (%.1f MP, sharpness %.2f, exposure %.2f)\n",
		q.Quality, q.Metrics.Megapixels, q.Metrics.Sharpness, q.Metrics.Exposure)
	fmt.Printf("  %s\n", q.Summary)
	for _, issue := range q.Issues {
		fmt.Printf("    - %s: %s\n", issue.Title, issue.Detail)
	}
}
