// Package cli provides the docbase command-line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docbase-labs/docbase-cli/internal/adapters/driven/config/file"
	"github.com/docbase-labs/docbase-cli/internal/adapters/driven/embedding/ollama"
	"github.com/docbase-labs/docbase-cli/internal/adapters/driven/embedding/openai"
	"github.com/docbase-labs/docbase-cli/internal/adapters/driven/manifest"
	"github.com/docbase-labs/docbase-cli/internal/adapters/driven/storage/sqlite"
	"github.com/docbase-labs/docbase-cli/internal/chunker"
	"github.com/docbase-labs/docbase-cli/internal/core/ports/driven"
	"github.com/docbase-labs/docbase-cli/internal/core/ports/driving"
	"github.com/docbase-labs/docbase-cli/internal/core/services"
	"github.com/docbase-labs/docbase-cli/internal/logger"
	"github.com/docbase-labs/docbase-cli/internal/workspace"
)

// version is set at build time via ldflags.
var version = "dev"

// Services wired at startup (or injected by tests).
var (
	vocabService     driving.VocabularyService
	indexerService   driving.Indexer
	retrievalService driving.RetrievalService
	vocabStore       driven.VocabularyStore
	chunkStore       driven.ChunkStore
	configStore      driven.ConfigStore
	ws               *workspace.Workspace
)

// Root flags.
var (
	verbose      bool
	workspaceDir string
)

var rootCmd = &cobra.Command{
	Use:   "docbase",
	Short: "Workspace knowledge base: taxonomy, indexing and retrieval",
	Long: `docbase maintains a per-workspace knowledge base: a tag taxonomy
imported from a human-authored vocabulary, a lineage-aware chunk index
with embeddings, and budget-bounded evidence retrieval with audit
manifests.`,
	SilenceUsage:      true,
	PersistentPreRunE: initServices,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&workspaceDir, "workspace", "w", "", "workspace root (default: current directory)")
}

// initServices wires the real adapters. Tests inject their own
// services first, which short-circuits the wiring.
func initServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	switch cmd.Name() {
	case "version", "help", "completion":
		return nil
	}

	if vocabService != nil || indexerService != nil || retrievalService != nil {
		return nil
	}

	var err error
	ws, err = workspace.New(workspaceDir)
	if err != nil {
		return fmt.Errorf("workspace: %w", err)
	}

	store, err := sqlite.NewStore(ws)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	vocabStore = store.VocabularyStore()
	chunkStore = store.ChunkStore()

	configStore, err = file.NewConfigStore(ws)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}

	manifests, err := manifest.NewFileStore(ws)
	if err != nil {
		return fmt.Errorf("open manifest store: %w", err)
	}

	embedder := buildEmbedder(configStore)

	split := chunker.New(
		chunker.WithChunkSize(configStore.GetInt("index.chunk_size")),
		chunker.WithOverlap(configStore.GetInt("index.chunk_overlap")),
	)

	vocabService = services.NewVocabularyService(vocabStore)
	indexerService = services.NewIndexerService(chunkStore, embedder, split,
		services.WithWorkers(configStore.GetInt("index.workers")))
	retrievalService = services.NewRetrievalService(chunkStore, embedder, manifests)

	return nil
}

// buildEmbedder constructs the configured embedding provider. A
// missing or unknown provider yields ollama with its defaults; the
// services degrade gracefully when the provider is unreachable.
func buildEmbedder(cfg driven.ConfigStore) driven.EmbeddingService {
	switch cfg.GetString("embedding.provider") {
	case "openai":
		svc, err := openai.NewEmbeddingService(openai.Config{
			APIKey:  cfg.GetString("embedding.api_key"),
			BaseURL: cfg.GetString("embedding.base_url"),
			Model:   cfg.GetString("embedding.model"),
		})
		if err != nil {
			logger.Warn("OpenAI embedding unavailable: %v", err)
			return nil
		}
		return svc
	default:
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL:    cfg.GetString("embedding.base_url"),
			Model:      cfg.GetString("embedding.model"),
			Dimensions: cfg.GetInt("embedding.dimensions"),
		})
	}
}
