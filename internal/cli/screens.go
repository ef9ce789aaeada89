package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newScreensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "screens [id]",
		Short: "Show every screen, or one screen with its live game",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				var result Screen
				if err := client.Get(cmd.Context(), "/api/v1/screens/"+url.PathEscape(args[0]), &result); err != nil {
					return err
				}
				output(cmd).Print(result)
				return nil
			}

			var result ScreenList
			if err := client.Get(cmd.Context(), "/api/v1/screens", &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <screen>",
		Short: "Abandon a screen's match and clear its queue (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result ResetResult

			path := fmt.Sprintf("/api/v1/screens/%s/reset", url.PathEscape(args[0]))
			if err := client.AdminPost(cmd.Context(), path, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}
