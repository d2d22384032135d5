package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bellhop-dev/bellhop/internal/config"
	"github.com/bellhop-dev/bellhop/pkg/client"
)

func runCmd() *cobra.Command {
	var (
		configPath string
		roomID     int32
		walkEvery  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Connect the configured accounts and keep them online",
		Long: `Run connects every configured account and holds the sessions open
until interrupted. With --room each session enters the given room
after login; with --walk-every each session wanders to a random
walkable tile on that interval.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFleet(configPath, roomID, walkEvery)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "bellhop.toml", "Path to the configuration file")
	cmd.Flags().Int32Var(&roomID, "room", 0, "Room to enter after login (0 = stay out)")
	cmd.Flags().DurationVar(&walkEvery, "walk-every", 0, "Random walk interval once in a room (0 = off)")

	return cmd
}

func runFleet(configPath string, roomID int32, walkEvery time.Duration) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := cfg.Logger()
	slog.SetDefault(log)

	reg, err := cfg.Registry()
	if err != nil {
		return err
	}

	sessions := make([]*client.Session, len(cfg.Accounts))
	for i := range cfg.Accounts {
		sc, err := cfg.SessionConfig(i, reg, log)
		if err != nil {
			return err
		}
		if sessions[i], err = client.NewSession(sc); err != nil {
			return fmt.Errorf("account %q: %w", cfg.Accounts[i].Name, err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cfg.Ops.Disabled {
		go serveOps(ctx, cfg.Ops.Listen, sessions, log)
	}

	var wg sync.WaitGroup
	for i, s := range sessions {
		wg.Add(1)
		go func(name string, s *client.Session) {
			defer wg.Done()
			runSession(ctx, s, name, roomID, walkEvery, log)
		}(cfg.Accounts[i].Name, s)
	}

	<-ctx.Done()
	log.Info("shutting down")
	for _, s := range sessions {
		s.Close()
	}
	wg.Wait()
	return nil
}

// runSession drives one account: connect, optionally enter a room, then
// consume events until the session or the run ends.
func runSession(ctx context.Context, s *client.Session, name string, roomID int32, walkEvery time.Duration, log *slog.Logger) {
	log = log.With("account", name)

	if err := s.Connect(ctx); err != nil {
		log.Error("connect failed", "err", err)
		return
	}
	if roomID != 0 {
		if err := s.JoinRoom(roomID); err != nil {
			log.Error("join room failed", "room", roomID, "err", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			s.Close()
			return

		case <-s.Done():
			if err := s.Err(); err != nil {
				log.Error("session ended", "err", err)
			}
			return

		case ev := <-s.Events():
			switch e := ev.(type) {
			case client.RoomJoinedEvent:
				log.Info("entered room", "occupants", len(s.Room().Occupants()))
				if walkEvery > 0 {
					if err := s.StartRandomWalk(walkEvery); err != nil {
						log.Warn("random walk failed to start", "err", err)
					}
				}
			case client.ChatEvent:
				log.Info("chat", "from", e.Name, "message", e.Message)
			case client.ProfileEvent:
				log.Info("logged in", "name", e.Profile.Name, "web_id", e.Profile.WebID)
			case client.FloodEvent:
				log.Warn("flood control", "remaining", e.Remaining)
			case client.DisconnectEvent:
				log.Warn("server disconnect notice", "reason", e.Reason, "text", e.Text)
			case client.RoomCreatedEvent:
				log.Info("room created", "room", e.RoomID)
			case client.NavigatorEvent:
				log.Info("navigator results", "rooms", len(e.Rooms))
			}
		}
	}
}
