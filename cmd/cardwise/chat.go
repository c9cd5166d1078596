package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/Veraticus/cardwise/internal/cli"
	"github.com/Veraticus/cardwise/internal/common"
	"github.com/Veraticus/cardwise/internal/recommend"
	"github.com/Veraticus/cardwise/internal/tui"
)

func chatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Ask for card recommendations interactively",
		Long: `Start an interactive session: type a question, get ranked cards back,
repeat. Type exit or quit to leave.

A full-screen interface is used on a terminal; piped input is read one
question per line.`,
		Args: cobra.NoArgs,
		RunE: runChat,
	}

	cmd.Flags().StringP("user", "u", "", "user to personalize for (optional)")
	cmd.Flags().IntP("limit", "n", 0, "number of cards per answer (default recommend.limit)")
	cmd.Flags().Bool("summary", false, "ask the language model for a written summary of each answer")
	cmd.Flags().Bool("plain", false, "use the line-based interface even on a terminal")

	return cmd
}

func runChat(cmd *cobra.Command, _ []string) error {
	userID, _ := cmd.Flags().GetString("user")
	limit, _ := cmd.Flags().GetInt("limit")
	summary, _ := cmd.Flags().GetBool("summary")
	plain, _ := cmd.Flags().GetBool("plain")

	ctx := cmd.Context()
	a, err := buildApp(ctx, summary)
	if err != nil {
		return err
	}
	defer a.Close()

	if userID != "" {
		if _, err := a.store.GetUserProfile(ctx, userID); errors.Is(err, common.ErrUserNotFound) {
			fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatWarning(fmt.Sprintf("User %s not found, answers will not be personalized", userID)))
		}
	}

	if !plain && isatty.IsTerminal(os.Stdin.Fd()) {
		return tui.Run(ctx, tui.Config{
			Recommender: a.service,
			UserID:      userID,
			Limit:       limit,
			Summary:     summary,
		})
	}

	return chatLoop(ctx, a.service, cmd.InOrStdin(), cmd.OutOrStdout(), recommend.Request{
		UserID:  userID,
		Limit:   limit,
		Summary: summary,
	})
}

// chatLoop answers one question per input line until exit, EOF or cancellation.
func chatLoop(ctx context.Context, rec tui.Recommender, in io.Reader, out io.Writer, base recommend.Request) error {
	reader := cli.NewLineReader(in)

	fmt.Fprintln(out, cli.FormatTitle("Card recommendations"))
	fmt.Fprintln(out, cli.FormatInfo("Ask about your spending, e.g. \"which card is best for eating out\". Type exit to quit."))

	for {
		fmt.Fprint(out, cli.FormatPrompt("> "))

		line, err := reader.ReadLine(ctx)
		if errors.Is(err, io.EOF) || errors.Is(err, cli.ErrInputCancelled) {
			fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			return err
		}

		switch strings.ToLower(line) {
		case "exit", "quit", "q":
			fmt.Fprintln(out, "Goodbye!")
			return nil
		case "":
			continue
		}

		req := base
		req.Query = line
		result, err := rec.Recommend(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if msg, ok := common.UserMessage(err); ok {
				fmt.Fprintln(out, cli.FormatWarning(msg))
				continue
			}
			fmt.Fprintln(out, cli.FormatError(err.Error()))
			continue
		}
		fmt.Fprintln(out, cli.FormatResult(result))
	}
}
