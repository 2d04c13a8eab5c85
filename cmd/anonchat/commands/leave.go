package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"anonchat/internal/domain"
)

func leaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leave <code>",
		Short: "Forget a room's stored session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := appCtx.Rooms.Leave(domain.RoomCode(args[0])); err != nil {
				return err
			}
			fmt.Println("left")
			return nil
		},
	}
}

func roomsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rooms",
		Short: "List rooms with a stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			codes, err := appCtx.Rooms.Rooms()
			if err != nil {
				return err
			}
			if len(codes) == 0 {
				fmt.Println("no stored rooms")
				return nil
			}
			for _, c := range codes {
				fmt.Println(c)
			}
			return nil
		},
	}
}
