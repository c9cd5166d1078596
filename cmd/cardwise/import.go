package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Veraticus/cardwise/internal/cli"
	"github.com/Veraticus/cardwise/internal/importer"
	"github.com/Veraticus/cardwise/internal/model"
	"github.com/Veraticus/cardwise/internal/ofx"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import cards, users, model scores, spending or bank statements",
		Long: `Load data into the local database.

Tables are read from CSV (or TSV, by file extension) with a header row:

  cardwise import cards cards.csv
  cardwise import users users.csv
  cardwise import scores model_recommendations.csv
  cardwise import spending user_spending.csv

Bank and credit card statements in OFX/QFX format add to a user's
spending by category:

  cardwise import statement --user u42 ~/Downloads/*.qfx`,
	}

	cmd.AddCommand(tableImportCmd(importer.KindCards, "Import the card catalog"))
	cmd.AddCommand(tableImportCmd(importer.KindUsers, "Import user profiles"))
	cmd.AddCommand(tableImportCmd(importer.KindScores, "Import precomputed per-user card scores"))
	cmd.AddCommand(tableImportCmd(importer.KindSpending, "Import per-category spending totals"))
	cmd.AddCommand(statementImportCmd())

	return cmd
}

func tableImportCmd(kind importer.Kind, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(kind) + " FILE...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := initStorage(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			total := 0
			for _, path := range args {
				n, err := importer.ImportFile(ctx, store, kind, path)
				if err != nil {
					return fmt.Errorf("failed to import %s: %w", filepath.Base(path), err)
				}
				slog.Info("Imported file", "kind", kind, "file", filepath.Base(path), "rows", n)
				total += n
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Imported %d %s rows", total, kind)))
			return nil
		},
	}
}

func statementImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "statement FILE...",
		Short: "Import OFX/QFX statements into a user's spending",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runStatementImport,
	}

	cmd.Flags().StringP("user", "u", "", "user the statements belong to (required)")
	cmd.Flags().BoolP("dry-run", "d", false, "Preview import without saving")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func runStatementImport(cmd *cobra.Command, args []string) error {
	userID, _ := cmd.Flags().GetString("user")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	ctx := cmd.Context()

	files, err := expandFiles(args)
	if err != nil {
		return err
	}

	slog.Info("💳 Importing statements...", "user", userID, "file_count", len(files), "dry_run", dryRun)

	txns := parseStatements(ctx, ofx.NewParser(slog.Default()), files, userID)
	if len(txns) == 0 {
		slog.Warn("No purchases found in any file")
		return nil
	}

	out := cmd.OutOrStdout()
	if dryRun {
		fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Found %d purchases (dry run, nothing saved)", len(txns))))
		printSpending(cmd, ofx.Aggregate(txns))
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := initStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	added, err := saveStatement(ctx, store, userID, txns)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d new purchases (%d already present)", len(added), len(txns)-len(added))))
	printSpending(cmd, ofx.Aggregate(added))
	return nil
}

// parseStatements reads every file, skipping unreadable ones, and drops
// transactions already seen in an earlier file.
func parseStatements(ctx context.Context, parser *ofx.Parser, files []string, userID string) []model.SpendTransaction {
	seen := make(map[string]bool)
	var all []model.SpendTransaction

	for _, path := range files {
		f, err := os.Open(path) //nolint:gosec // user-supplied statement path
		if err != nil {
			slog.Error("Failed to open file", "file", path, "error", err)
			continue
		}
		txns, err := parser.ParseFile(ctx, f, userID)
		_ = f.Close()
		if err != nil {
			slog.Error("Failed to parse OFX file", "file", path, "error", err)
			continue
		}

		added := 0
		for _, tx := range txns {
			if seen[tx.Hash] {
				continue
			}
			seen[tx.Hash] = true
			all = append(all, tx)
			added++
		}
		slog.Info("Processed file",
			"file", filepath.Base(path),
			"purchases", len(txns),
			"duplicates", len(txns)-added)
	}

	return all
}

// statementStore is the persistence used by statement import.
type statementStore interface {
	SaveSpendTransactions(ctx context.Context, transactions []model.SpendTransaction) (int, error)
	AddSpending(ctx context.Context, userID string, amounts map[string]float64) error
}

// saveStatement stores the transactions and adds only the newly stored ones
// to the user's spending, so importing a statement twice does not double it.
func saveStatement(ctx context.Context, store statementStore, userID string, txns []model.SpendTransaction) ([]model.SpendTransaction, error) {
	var added []model.SpendTransaction
	for _, tx := range txns {
		n, err := store.SaveSpendTransactions(ctx, []model.SpendTransaction{tx})
		if err != nil {
			return added, fmt.Errorf("failed to save transactions: %w", err)
		}
		if n > 0 {
			added = append(added, tx)
		}
	}

	if err := store.AddSpending(ctx, userID, ofx.Aggregate(added)); err != nil {
		return added, fmt.Errorf("failed to update spending: %w", err)
	}
	return added, nil
}

func printSpending(cmd *cobra.Command, amounts map[string]float64) {
	if len(amounts) == 0 {
		return
	}
	out := cmd.OutOrStdout()
	for _, category := range sortedKeys(amounts) {
		fmt.Fprintf(out, "  - %-10s %10.2f\n", category, amounts[category])
	}
}
