package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/docbase-labs/docbase-cli/internal/core/domain"
)

var (
	queryK          int
	queryCandidates int
	queryBudget     time.Duration
	queryAuto       bool
	queryJSON       bool
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Retrieve evidence for a query",
	Long: `Embeds the query, scores candidate chunks by cosine similarity within
the latency budget and returns the top-k evidence. Every response gets
a write-once audit manifest recording which evidence was used.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryK, "k", "k", domain.DefaultK, "number of evidence items to select")
	queryCmd.Flags().IntVar(&queryCandidates, "candidates", domain.DefaultCandidateLimit, "maximum candidates to score")
	queryCmd.Flags().DurationVar(&queryBudget, "budget", domain.DefaultLatencyBudget, "latency budget")
	queryCmd.Flags().BoolVar(&queryAuto, "auto", false, "size the candidate set from the remaining budget")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output result as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	opts := domain.RetrievalOptions{
		K:              queryK,
		CandidateLimit: queryCandidates,
		LatencyBudget:  queryBudget,
		AutoByBudget:   queryAuto,
	}

	result, err := retrievalService.Retrieve(context.Background(), args[0], opts)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	if queryJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Response %s (%s)\n", result.ResponseID, result.Elapsed.Round(time.Millisecond))
	if result.BudgetHit {
		cmd.Println("Latency budget hit: partial results")
	}
	if len(result.Evidence) == 0 {
		cmd.Println("No evidence found.")
		return nil
	}

	cmd.Println()
	for _, ev := range result.Evidence {
		cmd.Printf("  [%d] %.4f  %s  %s\n", ev.Rank, ev.Score, ev.SourceID, ev.ChunkID)
	}
	return nil
}
