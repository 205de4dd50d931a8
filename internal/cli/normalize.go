package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/welth-app/welth/internal/identity"
)

func newNormalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <username>",
		Short: "Show the login handle and account email a username maps to",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := strings.Join(args, " ")
			handle := identity.Normalize(raw)

			result := map[string]string{
				"handle": handle,
				"email":  identity.SyntheticEmail(raw),
			}
			if err := identity.ValidateHandle(handle); err != nil {
				result["error"] = err.Error()
			}

			if getOutputFormat() != "table" {
				return printOutput(result)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Handle: %s\n", handle)
			fmt.Fprintf(out, "Email:  %s\n", result["email"])
			if msg, ok := result["error"]; ok {
				fmt.Fprintf(out, "Invalid: %s\n", msg)
			}
			return nil
		},
	}
}
