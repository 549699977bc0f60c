package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game session commands",
	}

	cmd.AddCommand(newGameNewCmd())
	cmd.AddCommand(newGameListCmd())
	cmd.AddCommand(newGameShowCmd())
	cmd.AddCommand(newGameRevealCmd())
	cmd.AddCommand(newGameFlagCmd())
	cmd.AddCommand(newGameChordCmd())
	cmd.AddCommand(newGameResetCmd())
	cmd.AddCommand(newGameDeleteCmd())
	cmd.AddCommand(newGameHistoryCmd())

	return cmd
}

func newGameNewCmd() *cobra.Command {
	var rows, cols, mines int

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a new game session",
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]int{"rows": rows, "cols": cols, "mines": mines}

			var result GameState
			if err := client.Post("/api/v1/games", body, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&rows, "rows", 9, "Number of rows")
	cmd.Flags().IntVar(&cols, "cols", 9, "Number of columns")
	cmd.Flags().IntVar(&mines, "mines", 10, "Number of mines")

	return cmd
}

func newGameListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List game sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result SessionList
			if err := client.Get("/api/v1/games", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a session and its board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GameState
			if err := client.Get(fmt.Sprintf("/api/v1/games/%s", args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

// cellCommand builds a command that posts a row/col action and prints
// the resulting board.
func cellCommand(use, short, action string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid row: %s", args[1])
			}
			col, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid column: %s", args[2])
			}

			body := map[string]int{"row": row, "col": col}

			var result Board
			path := fmt.Sprintf("/api/v1/games/%s/%s", args[0], action)
			if err := client.Post(path, body, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameRevealCmd() *cobra.Command {
	return cellCommand("reveal <id> <row> <col>", "Reveal a cell", "reveal")
}

func newGameFlagCmd() *cobra.Command {
	return cellCommand("flag <id> <row> <col>", "Toggle a flag on a cell", "flag")
}

func newGameChordCmd() *cobra.Command {
	return cellCommand("chord <id> <row> <col>", "Reveal neighbors of a satisfied cell", "chord")
}

func newGameResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <id>",
		Short: "Reset a session to a fresh board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Board
			if err := client.Post(fmt.Sprintf("/api/v1/games/%s/reset", args[0]), nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a session and its history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete(fmt.Sprintf("/api/v1/games/%s", args[0])); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage(fmt.Sprintf("Deleted session %s", args[0]))
			return nil
		},
	}
}

func newGameHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <id>",
		Short: "List a session's completed games",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result SummaryList
			if err := client.Get(fmt.Sprintf("/api/v1/games/%s/summaries", args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
