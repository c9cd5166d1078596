package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/cardwise/internal/cli"
	"github.com/Veraticus/cardwise/internal/common"
	"github.com/Veraticus/cardwise/internal/embed"
)

func indexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Embed the card catalog for semantic search",
		Long: `Embed every card in the catalog with the configured embedding model and
store the vectors. Run this after importing or updating cards, or after
changing embedding.model.`,
		Args: cobra.NoArgs,
		RunE: runIndex,
	}
}

func runIndex(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	embedder := newEmbedder(cfg.Embedding)
	if embedder == nil {
		return common.NewUserError("semantic search is disabled (embedding.provider is none)", common.ErrEmbeddingUnavailable)
	}

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Run 'cardwise index' again to rebuild the index.")
	ctx, cancel := handler.HandleInterrupts(cmd.Context())
	defer cancel()

	store, err := initStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	cards, err := store.GetAllCards(ctx)
	if err != nil {
		return err
	}
	if len(cards) == 0 {
		return common.NewUserError("no cards to index, run 'cardwise import cards' first", common.ErrCardNotFound)
	}

	slog.Info("🔎 Indexing cards...", "cards", len(cards), "provider", cfg.Embedding.Provider, "model", embedder.Model())

	progress := cli.NewProgress(os.Stderr, len(cards), "Embedding cards...")
	retriever := embed.NewRetriever(embedder, slog.Default())

	n, err := retriever.Build(ctx, store, progress.Step)
	if handler.WasInterrupted() {
		return nil
	}
	if errors.Is(err, common.ErrEmbeddingUnavailable) {
		return common.NewUserError(fmt.Sprintf("embedding service %s is not reachable", cfg.Embedding.Provider), err)
	}
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Indexed %d cards with %s", n, embedder.Model())))
	return nil
}
