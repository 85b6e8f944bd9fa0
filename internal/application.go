package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/peerchess/tcp-chess/internal/config"
	"github.com/peerchess/tcp-chess/internal/console"
	"github.com/peerchess/tcp-chess/internal/session"
	"github.com/peerchess/tcp-chess/internal/transport/tcp"
)

// RunApp - runs the application: establishes the single peer connection per
// the configured role, then drives one session plus its console until either
// side is done.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	if err := conf.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	conn, err := establishConnection(ctx, log, conf)
	if err != nil {
		return err
	}

	defer func() {
		if err = conn.Close(); err != nil {
			log.Debug("could not close peer connection", "error", err)
		}
	}()

	// closing the connection is what unblocks the session's pending read
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	role := session.RoleGuest
	if conf.Role == config.RoleHost {
		role = session.RoleHost
	}
	sess := session.New(logger, role, conn)

	sessionErrCh := make(chan error, 1)
	go func() {
		sessionErrCh <- sess.Run(ctx)
	}()

	if role == session.RoleHost {
		if err = sess.StartNewGame(); err != nil {
			return fmt.Errorf("could not start game: %w", err)
		}
	}

	consoleErrCh := make(chan error, 1)
	go func() {
		consoleErrCh <- console.New(logger, sess, os.Stdin, os.Stdout).Run(ctx)
	}()

	select {
	case err = <-consoleErrCh:
		if err != nil {
			return fmt.Errorf("console error: %w", err)
		}
		return nil
	case err = <-sessionErrCh:
		if err != nil {
			return fmt.Errorf("session error: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

// establishConnection - host listens for the single guest, guest dials the
// host. Port mapping is assumed done; the core only consumes the stream.
func establishConnection(ctx context.Context, log *slog.Logger, conf *config.Config) (*tcp.Conn, error) {
	if conf.Role == config.RoleHost {
		log.Info("Waiting for peer", "port", conf.ListenPort)

		conn, err := tcp.Listen(ctx, conf.ListenPort)
		if err != nil {
			return nil, fmt.Errorf("could not accept peer: %w", err)
		}

		log.Info("Peer connected", "addr", conn.RemoteAddr())
		return conn, nil
	}

	log.Info("Connecting to host", "addr", conf.PeerAddr)

	conn, err := tcp.Dial(ctx, conf.PeerAddr)
	if err != nil {
		return nil, fmt.Errorf("could not connect to host: %w", err)
	}

	log.Info("Connected", "addr", conn.RemoteAddr())
	return conn, nil
}
