package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newScoresCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "scores",
		Short: "List recent match results, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result ScoreList

			if err := client.Get(cmd.Context(), fmt.Sprintf("/api/v1/scores?limit=%d", limit), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of results")

	return cmd
}

func newLeaderboardCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show players ranked by wins",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Leaderboard

			if err := client.Get(cmd.Context(), fmt.Sprintf("/api/v1/leaderboard?limit=%d", limit), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of players")

	return cmd
}

func newWinsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wins <player>",
		Short: "Show a player's win count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result PlayerWins

			path := fmt.Sprintf("/api/v1/players/%s/wins", url.PathEscape(args[0]))
			if err := client.Get(cmd.Context(), path, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}
