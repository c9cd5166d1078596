package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/cardwise/internal/cli"
	"github.com/Veraticus/cardwise/internal/recommend"
)

func recommendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend QUERY...",
		Short: "Recommend cards for a question",
		Long: `Recommend credit cards for a free-text question, ranked by combining the
user's precomputed card scores with a semantic search over the catalog.

Examples:
  cardwise recommend --user u42 "which card is best for eating out"
  cardwise recommend --user u42 --summary --save cards for overseas travel
  cardwise recommend cashback on groceries`,
		Args: cobra.MinimumNArgs(1),
		RunE: runRecommend,
	}

	cmd.Flags().StringP("user", "u", "", "user to personalize for (optional)")
	cmd.Flags().IntP("limit", "n", 0, "number of cards to return (default recommend.limit)")
	cmd.Flags().Bool("save", false, "save the result to the user's recommendation history")
	cmd.Flags().Bool("summary", false, "ask the language model for a written summary")
	cmd.Flags().Bool("json", false, "print the result as JSON")

	return cmd
}

func runRecommend(cmd *cobra.Command, args []string) error {
	userID, _ := cmd.Flags().GetString("user")
	limit, _ := cmd.Flags().GetInt("limit")
	save, _ := cmd.Flags().GetBool("save")
	summary, _ := cmd.Flags().GetBool("summary")
	asJSON, _ := cmd.Flags().GetBool("json")

	if limit < 0 {
		return fmt.Errorf("limit must be positive, got %d", limit)
	}
	if save && userID == "" {
		return fmt.Errorf("--save requires --user")
	}

	ctx := cmd.Context()
	a, err := buildApp(ctx, summary)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.service.Recommend(ctx, recommend.Request{
		UserID:  userID,
		Query:   strings.Join(args, " "),
		Limit:   limit,
		Save:    save,
		Summary: summary,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Fprint(out, cli.FormatResult(result))
	return nil
}
