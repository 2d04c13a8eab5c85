package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"anonchat/internal/domain"
	"anonchat/internal/pipeline"
	"anonchat/internal/protocol/keydist"
	"anonchat/internal/room"
	"anonchat/internal/session"
)

// sessionEnd is what finished a chat session. discard means the room is
// gone (left, expired, or dismissed) and the stored descriptor goes too.
type sessionEnd struct {
	reason  string
	discard bool
}

// roomLeaver is the slice of the pipeline the teardown needs.
type roomLeaver interface {
	Leave(code domain.RoomCode)
}

// endSession carries out the leave sequence for a room the session will
// not return to: the leave_room frame goes out while the channel is
// still up, then the stored descriptor is discarded.
func endSession(p roomLeaver, rooms domain.RoomService, code domain.RoomCode) error {
	p.Leave(code)
	return rooms.Leave(code)
}

// chat <code>: restore the stored session and run the interactive loop.
func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat <code>",
		Short: "Open an interactive session in a joined room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			code := domain.RoomCode(args[0])

			d, ok, err := appCtx.Rooms.Load(passphrase, code)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no stored session for room %s; create or join it first", code)
			}
			ex, err := keydist.Restore(d)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			info, err := appCtx.API.RoomInfo(ctx, code)
			if err != nil {
				return err
			}
			roster, err := appCtx.API.RoomParticipants(ctx, code)
			if err != nil {
				return err
			}
			history, err := appCtx.API.RoomMessages(ctx, code)
			if err != nil {
				return err
			}

			mgr := session.NewManager(session.Config{
				URL:           appCtx.WSURL,
				RoomCode:      code,
				ParticipantID: d.ParticipantID,
				Log:           appCtx.Log,
			})
			defer mgr.Close()
			p := pipeline.New(d.Self(), ex.Keyring(), mgr, appCtx.Log)
			p.SetRoster(roster)
			p.Preload(history)

			// A failed first dial is the same as a drop: the manager has
			// already armed its backoff timer, so the session carries on
			// and the channel comes up when a dial lands.
			if err := mgr.Connect(ctx); err != nil {
				fmt.Printf("-- connection failed, retrying: %v --\n", err)
			}

			for _, m := range p.Messages() {
				printMessage(m)
			}
			fmt.Printf("-- room %s as %s, %d minutes remaining --\n",
				code, d.Nickname, info.ExpirationDuration)

			// Holds whatever ends the session first.
			quit := make(chan sessionEnd, 1)
			end := func(reason string, discard bool) {
				select {
				case quit <- sessionEnd{reason: reason, discard: discard}:
				default:
				}
			}

			ctrl := room.Start(room.Config{
				ExpirationMinutes: info.ExpirationDuration,
				OnWarning: func() {
					fmt.Println("-- room expires in one minute --")
				},
				OnExpire: func() { end("room expired", true) },
			})
			defer ctrl.Stop()

			go func() {
				printed := len(p.Messages())
				for {
					select {
					case ev := <-mgr.Events():
						effect := p.Apply(ev)
						msgs := p.Messages()
						for ; printed < len(msgs); printed++ {
							printMessage(msgs[printed])
						}
						switch ev.ResponseType {
						case domain.EventJoinParticipant:
							if ev.Participant != nil {
								fmt.Printf("-- %s joined --\n", ev.Participant.Nickname)
							}
						case domain.EventLeaveParticipant:
							if ev.Participant != nil {
								fmt.Printf("-- %s left --\n", ev.Participant.Nickname)
							}
						}
						if effect == pipeline.EffectNavigate {
							end("room dismissed by host", true)
							return
						}
					case <-mgr.Done():
						return
					}
				}
			}()

			lines := make(chan string)
			go func() {
				sc := bufio.NewScanner(os.Stdin)
				for sc.Scan() {
					lines <- sc.Text()
				}
				end("input closed", false)
			}()

			for {
				select {
				case line := <-lines:
					line = strings.TrimSpace(line)
					switch {
					case line == "":
					case line == "/quit":
						end("quit", false)
					case line == "/leave":
						end("left room", true)
					default:
						if _, err := p.Send(line); err != nil {
							fmt.Printf("-- not sent: %v --\n", err)
						}
					}
				case e := <-quit:
					if e.discard {
						if err := endSession(p, appCtx.Rooms, code); err != nil {
							return err
						}
					}
					fmt.Printf("-- %s --\n", e.reason)
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		},
	}
}

func printMessage(m domain.Message) {
	text := m.Text
	if m.Undecryptable {
		text = "[message could not be decrypted]"
	}
	marker := ""
	if m.Status == domain.StatusPending {
		marker = " (sending)"
	}
	fmt.Printf("[%s] %s: %s%s\n", m.CreatedAt, m.Sender.Nickname, text, marker)
}
