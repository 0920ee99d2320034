package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/mkralik/photo-insight/internal/analyzer"
	"github.com/mkralik/photo-insight/internal/config"
	"github.com/mkralik/photo-insight/internal/signal"
	"github.com/mkralik/photo-insight/internal/vocab"
)

var batchCmd = &cobra.Command{
	Use:   "batch [directory]",
	Short: "Analyze every image in a directory",
	Long: `Analyze every image in a directory with a worker pool and print a
per-file summary.

Examples:
  # Analyze a folder with the Ollama backend, 3 parallel workers
  photo-insight batch --provider ollama --concurrency 3 ./photos

  # Write all results to a JSON file
  photo-insight batch --provider openai --output results.json ./photos`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().String("provider", "", "Perception backend: openai, gemini or ollama")
	batchCmd.Flags().Int("concurrency", 5, "Number of parallel workers")
	batchCmd.Flags().String("output", "", "Write results to a JSON file")
}

// imageExtensions lists the formats the batch walker picks up.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
}

// batchResult holds the result of processing a single file.
type batchResult struct {
	Path   string         `json:"path"`
	Result *signal.Result `json:"result,omitempty"`
	Err    string         `json:"error,omitempty"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	providerName := mustGetString(cmd, "provider")
	concurrency := mustGetInt(cmd, "concurrency")
	outputPath := mustGetString(cmd, "output")

	if providerName == "" {
		return errors.New("--provider is required")
	}
	if concurrency <= 0 {
		concurrency = 5
	}

	cfg := config.Load()
	provider, err := buildProvider(cmd.Context(), cfg, providerName, "")
	if err != nil {
		return err
	}

	paths, err := collectImages(args[0])
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no images found in %s", args[0])
	}

	table := vocab.MustLoad()
	a := analyzer.New(table)

	bar := progressbar.NewOptions(len(paths),
		progressbar.OptionSetDescription(fmt.Sprintf("Analyzing images (%d workers)", concurrency)),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("images"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)

	results := make([]batchResult, len(paths))
	semaphore := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	ctx := cmd.Context()
	for i, path := range paths {
		wg.Add(1)
		go func(idx int, p string) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()
			defer bar.Add(1)

			if ctx.Err() != nil {
				results[idx] = batchResult{Path: p, Err: ctx.Err().Error()}
				return
			}

			result, err := analyzeFile(ctx, a, provider, p)
			if err != nil {
				results[idx] = batchResult{Path: p, Err: err.Error()}
				return
			}
			results[idx] = batchResult{Path: p, Result: result}
		}(i, path)
	}
	wg.Wait()
	fmt.Println()

	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", outputPath, err)
		}
		defer f.Close()
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return fmt.Errorf("failed to write results: %w", err)
		}
		fmt.Printf("Wrote %d results to %s\n", len(results), outputPath)
		return nil
	}

	var failed int
	for _, r := range results {
		if r.Err != "" {
			failed++
			fmt.Printf("%s: ERROR: %s\n", r.Path, r.Err)
			continue
		}
		subjects := make([]string, len(r.Result.Subjects))
		for i, s := range r.Result.Subjects {
			subjects[i] = s.Label
		}
		fmt.Printf("%s: %s | %s | quality %s\n",
			r.Path, r.Result.Purpose, strings.Join(subjects, ", "), r.Result.Quality.Quality)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d images failed", failed, len(paths))
	}
	return nil
}

func collectImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
