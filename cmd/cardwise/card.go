package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/cardwise/internal/benefit"
	"github.com/Veraticus/cardwise/internal/cli"
	"github.com/Veraticus/cardwise/internal/common"
)

func cardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "card ID",
		Short: "Show the details of one card",
		Args:  cobra.ExactArgs(1),
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

			card, err := store.GetCard(ctx, args[0])
			if errors.Is(err, common.ErrCardNotFound) {
				return common.NewUserError(fmt.Sprintf("card %s not found", args[0]), err)
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatCard(card, benefit.Parse(card.RawBenefits)))
			return nil
		},
	}
}
