package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show knowledge base statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if vocabStore == nil || chunkStore == nil {
		return errors.New("stores not configured")
	}

	ctx := context.Background()

	terms, folders, links, err := vocabStore.Counts(ctx)
	if err != nil {
		return fmt.Errorf("taxonomy counts: %w", err)
	}

	documents, chunks, embeddings, err := chunkStore.Counts(ctx)
	if err != nil {
		return fmt.Errorf("lineage counts: %w", err)
	}

	cmd.Println("Taxonomy:")
	cmd.Printf("  terms:        %d\n", terms)
	cmd.Printf("  folders:      %d\n", folders)
	cmd.Printf("  links:        %d\n", links)
	cmd.Println()
	cmd.Println("Index:")
	cmd.Printf("  documents:    %d\n", documents)
	cmd.Printf("  chunks:       %d\n", chunks)
	cmd.Printf("  embeddings:   %d\n", embeddings)

	return nil
}
