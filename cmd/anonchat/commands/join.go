package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"anonchat/internal/domain"
)

// join <code>: run the key exchange and save the room locally.
func joinCmd() *cobra.Command {
	var nickname string
	cmd := &cobra.Command{
		Use:   "join <code>",
		Short: "Join an existing room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			d, err := appCtx.Rooms.Join(cmd.Context(), passphrase, nickname, domain.RoomCode(args[0]))
			if err != nil {
				return err
			}
			fmt.Printf("Joined room %s as %s.\nKey fingerprint: %s\n",
				d.RoomCode, d.Nickname, keyFingerprint(d))
			return nil
		},
	}
	cmd.Flags().StringVar(&nickname, "nickname", "", "display name (server-assigned when empty)")
	return cmd
}
