package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/docbase-labs/docbase-cli/internal/adapters/driven/vocabsource"
	"github.com/docbase-labs/docbase-cli/internal/core/ports/driving"
	"github.com/docbase-labs/docbase-cli/internal/logger"
)

// watchDebounce is how long to wait for further changes before
// re-importing a modified vocabulary source.
const watchDebounce = 500 * time.Millisecond

var vocabJSON bool

var vocabCmd = &cobra.Command{
	Use:   "vocab",
	Short: "Manage the tag vocabulary",
	Long:  `Import, inspect, or watch the human-authored tag vocabulary.`,
}

var vocabImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import a vocabulary source file",
	Long: `Imports a TOML vocabulary source into the workspace taxonomy.
Import is idempotent: re-running the same source produces no duplicate
terms, folders or links.`,
	Args: cobra.ExactArgs(1),
	RunE: runVocabImport,
}

var vocabListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the imported vocabulary",
	Args:  cobra.NoArgs,
	RunE:  runVocabList,
}

var vocabWatchCmd = &cobra.Command{
	Use:   "watch [file]",
	Short: "Re-import a vocabulary source on change",
	Long:  `Watches a vocabulary source file and re-imports it whenever it changes.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runVocabWatch,
}

func init() {
	vocabListCmd.Flags().BoolVar(&vocabJSON, "json", false, "output as JSON")

	vocabCmd.AddCommand(vocabImportCmd)
	vocabCmd.AddCommand(vocabListCmd)
	vocabCmd.AddCommand(vocabWatchCmd)
	rootCmd.AddCommand(vocabCmd)
}

func runVocabImport(cmd *cobra.Command, args []string) error {
	if vocabService == nil {
		return errors.New("vocabulary service not configured")
	}

	stats, err := importVocabFile(context.Background(), args[0])
	if err != nil {
		return err
	}

	printImportStats(cmd, stats)
	return nil
}

func importVocabFile(ctx context.Context, path string) (*driving.ImportStats, error) {
	entries, err := vocabsource.ReadFile(path)
	if err != nil {
		return nil, err
	}

	stats, err := vocabService.Import(ctx, entries)
	if err != nil {
		return nil, fmt.Errorf("import failed: %w", err)
	}
	return stats, nil
}

func printImportStats(cmd *cobra.Command, stats *driving.ImportStats) {
	cmd.Printf("Imported %d entries: %d terms, %d folders, %d links\n",
		stats.Entries, stats.Terms, stats.Folders, stats.Links)
	if stats.AliasConflicts > 0 {
		cmd.Printf("Warning: %d alias conflict(s), see log for details\n", stats.AliasConflicts)
	}
}

func runVocabList(cmd *cobra.Command, _ []string) error {
	if vocabService == nil {
		return errors.New("vocabulary service not configured")
	}

	vocab, err := vocabService.Load(context.Background())
	if err != nil {
		return fmt.Errorf("load vocabulary: %w", err)
	}

	if vocabJSON {
		data, err := json.MarshalIndent(vocab, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal vocabulary: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(vocab) == 0 {
		cmd.Println("No vocabulary imported.")
		return nil
	}

	canonicals := make([]string, 0, len(vocab))
	for canonical := range vocab {
		canonicals = append(canonicals, canonical)
	}
	sort.Strings(canonicals)

	cmd.Printf("Vocabulary (%d terms):\n\n", len(vocab))
	for _, canonical := range canonicals {
		meta := vocab[canonical]
		cmd.Printf("  %s\n", canonical)

		folders := make([]string, 0, len(meta.Folders))
		for folder := range meta.Folders {
			folders = append(folders, folder)
		}
		sort.Strings(folders)
		for _, folder := range folders {
			cmd.Printf("    %s (%.1f)\n", folder, meta.Folders[folder])
		}
	}
	return nil
}

func runVocabWatch(cmd *cobra.Command, args []string) error {
	if vocabService == nil {
		return errors.New("vocabulary service not configured")
	}

	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initial import before watching.
	stats, err := importVocabFile(ctx, path)
	if err != nil {
		return err
	}
	printImportStats(cmd, stats)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory, not the file: editors replace files on
	// save, which would drop a file-level watch.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	cmd.Printf("Watching %s (Ctrl-C to stop)\n", path)

	var debounce *time.Timer
	reimport := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			// Debounce: editors emit bursts of events per save.
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, func() {
				select {
				case reimport <- struct{}{}:
				default:
				}
			})

		case <-reimport:
			stats, err := importVocabFile(ctx, path)
			if err != nil {
				// A malformed save keeps the previous taxonomy intact.
				logger.Error("Re-import failed: %v", err)
				continue
			}
			printImportStats(cmd, stats)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("Watcher error: %v", err)
		}
	}
}
