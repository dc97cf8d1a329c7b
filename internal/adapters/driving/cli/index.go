package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/docbase-labs/docbase-cli/internal/core/domain"
)

var indexCmd = &cobra.Command{
	Use:   "index [paths...]",
	Short: "Index documents into the knowledge base",
	Long: `Chunks, embeds and persists documents. Indexing is idempotent:
re-indexing unchanged content inserts no new rows. An unreachable
embedding provider degrades to zero embeddings instead of aborting.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if indexerService == nil {
		return errors.New("indexer service not configured")
	}

	docs, err := loadDocuments(args)
	if err != nil {
		return err
	}

	reports, err := indexerService.IndexBatch(context.Background(), docs)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	var chunks, inserted, failures int
	for _, report := range reports {
		chunks += report.ChunksTotal
		inserted += report.Inserted
		failures += report.EmbedFailures
		cmd.Printf("%s: %d chunks, %d inserted, %d embed failures\n",
			report.SourceID, report.ChunksTotal, report.Inserted, report.EmbedFailures)
	}
	cmd.Printf("\nIndexed %d document(s): %d chunks, %d inserted, %d embed failures\n",
		len(reports), chunks, inserted, failures)

	return nil
}

// loadDocuments reads the given files into documents. The source_id is
// the workspace-relative path, so the same file always maps to the
// same lineage.
func loadDocuments(paths []string) ([]*domain.Document, error) {
	docs := make([]*domain.Document, 0, len(paths))
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", path, err)
		}

		sourceID := filepath.ToSlash(path)
		if ws != nil {
			rel, err := filepath.Rel(ws.Root(), abs)
			if err == nil {
				if normalized, nerr := domain.NormalizeFolderPath(filepath.ToSlash(rel)); nerr == nil {
					sourceID = normalized
				}
			}
		}

		data, err := os.ReadFile(abs)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		docs = append(docs, &domain.Document{
			SourceID: sourceID,
			Path:     sourceID,
			Content:  string(data),
		})
	}
	return docs, nil
}
