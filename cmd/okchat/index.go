package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	searchrepo "github.com/belljun3395/okchat/internal/repository/search"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Create the chunk search index if it does not exist",
	Args:  cobra.NoArgs,
	RunE:  runIndex,
}

func init() {
	indexCmd.Flags().Bool("recreate", false, "drop and recreate an existing index (documents are kept)")

	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	recreate, _ := cmd.Flags().GetBool("recreate")
	cfg := searchrepo.IndexConfig{
		Name:        a.cfg.Search.IndexName,
		KeyPrefix:   a.cfg.Search.ChunkPrefix,
		VectorDim:   a.cfg.LLM.Embedding.Dimensions,
		HNSWM:       a.cfg.Search.HNSWM,
		EFConstruct: a.cfg.Search.HNSWEFConstruct,
	}

	created, err := searchrepo.EnsureIndex(cmd.Context(), a.store, cfg, recreate)
	if err != nil {
		return fmt.Errorf("ensure index: %w", err)
	}

	chunks, err := searchrepo.ChunkCount(cmd.Context(), a.store, cfg.Name)
	if err != nil {
		return fmt.Errorf("count chunks: %w", err)
	}

	a.logger.Info("Chunk index ready",
		zap.String("index", cfg.Name),
		zap.Bool("created", created),
		zap.Int("vector_dim", cfg.VectorDim),
		zap.Int("chunks", chunks),
	)
	if created {
		fmt.Fprintf(cmd.OutOrStdout(), "created index %s (%d chunks)\n", cfg.Name, chunks)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "index %s already exists (%d chunks)\n", cfg.Name, chunks)
	}
	return nil
}
