package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"anonchat/internal/domain"
)

func createCmd() *cobra.Command {
	var (
		nickname string
		code     string
		expires  int
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a room and become its host",
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			d, err := appCtx.Rooms.Create(cmd.Context(), passphrase, nickname, domain.RoomCode(code), expires)
			if err != nil {
				return err
			}
			fmt.Printf("Room created.\nCode: %s\nNickname: %s\nKey fingerprint: %s\nExpires in: %d minutes\n",
				d.RoomCode, d.Nickname, keyFingerprint(d), expires)
			return nil
		},
	}
	cmd.Flags().StringVar(&nickname, "nickname", "", "display name (server-assigned when empty)")
	cmd.Flags().StringVar(&code, "code", "", "room code (server-assigned when empty)")
	cmd.Flags().IntVar(&expires, "expires", 10, "room lifetime in minutes")
	return cmd
}
