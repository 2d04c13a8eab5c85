package commands

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"anonchat/internal/app"
	"anonchat/internal/crypto"
	"anonchat/internal/domain"
	"anonchat/internal/util/memzero"
)

var (
	home       string
	passphrase string
	apiURL     string
	wsURL      string
	verbose    bool

	appCtx *app.Wire
)

func Execute() error {
	root := &cobra.Command{
		Use:   "anonchat",
		Short: "End-to-end encrypted ephemeral chat rooms",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".anonchat")
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}

			log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				With().Timestamp().Logger().
				Level(zerolog.WarnLevel)
			if verbose {
				log = log.Level(zerolog.DebugLevel)
			}

			wire, err := app.NewWire(app.Config{
				Home:   home,
				APIURL: apiURL,
				WSURL:  wsURL,
				Log:    log,
			})
			if err != nil {
				return err
			}
			appCtx = wire
			return nil
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "config dir (default ~/.anonchat)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting stored room keys")
	root.PersistentFlags().StringVar(&apiURL, "api", "http://127.0.0.1:8000/chat-api", "room API base URL")
	root.PersistentFlags().StringVar(&wsURL, "ws", "ws://127.0.0.1:8000/chat", "realtime base URL")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(createCmd(), joinCmd(), chatCmd(), leaveCmd(), roomsCmd())
	return root.Execute()
}

// keyFingerprint renders the room key's short fingerprint so participants
// can compare keys out of band.
func keyFingerprint(d domain.RoomDescriptor) string {
	raw, err := crypto.UnB64(d.GroupKey)
	if err != nil {
		return "(unavailable)"
	}
	defer memzero.Zero(raw)
	return crypto.Fingerprint(raw)
}
