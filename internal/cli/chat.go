package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/welth-app/welth/pkg/client"
)

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat <message>",
		Short: "Ask WelthIA and stream the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				return fmt.Errorf("message is empty")
			}

			// Ctrl-C abandons the reply; the server then stores nothing for it
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			out := cmd.OutOrStdout()
			_, err := apiClient.Chat().Send(ctx, []client.Message{client.UserMessage(text)}, func(delta string) {
				fmt.Fprint(out, delta)
			})
			fmt.Fprintln(out)
			if err != nil {
				return fmt.Errorf("chat failed: %w", err)
			}
			return nil
		},
	}
}

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show the recent conversation with WelthIA",
		RunE: func(cmd *cobra.Command, args []string) error {
			msgs, err := apiClient.Chat().History(context.Background())
			if err != nil {
				return fmt.Errorf("failed to load history: %w", err)
			}

			format := getOutputFormat()
			if format != "table" {
				return printOutput(msgs)
			}

			if len(msgs) == 0 {
				fmt.Println("No messages yet")
				return nil
			}

			table := NewTableTo(cmd.OutOrStdout(), "ROLE", "MESSAGE")
			for _, m := range msgs {
				table.AddRow(m.Role, truncate(strings.ReplaceAll(m.Text(), "\n", " "), 100))
			}
			table.Render()
			return nil
		},
	}
}
