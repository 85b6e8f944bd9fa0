package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/peerchess/tcp-chess/internal/apperror"
	"github.com/peerchess/tcp-chess/internal/chess"
	"github.com/peerchess/tcp-chess/internal/session"
)

// Console is the stand-in for the graphical input collaborator: it reads
// long-algebraic moves from one stream and renders board snapshots to
// another. The session core never depends on it.
type Console struct {
	logger  *slog.Logger
	session *session.Session
	in      io.Reader
	out     io.Writer
}

func New(logger *slog.Logger, sess *session.Session, in io.Reader, out io.Writer) *Console {
	return &Console{
		logger:  logger.With("component", "console"),
		session: sess,
		in:      in,
		out:     out,
	}
}

// Run - drives the two local activities: a reader goroutine for operator
// input and this loop consuming session updates. Input is never blocked by
// the network; a move typed while awaiting the remote side is simply refused.
func (that *Console) Run(ctx context.Context) error {
	lines := make(chan string)
	go that.readLines(ctx, lines)

	fmt.Fprintln(that.out, `commands: moves like "e2e4" or "e7e8q", "resign", "quit"; host may type "new" after a game`)

	for {
		select {
		case <-ctx.Done():
			return nil

		case update, ok := <-that.session.Updates():
			if !ok {
				return nil
			}
			that.render(update)

		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if done := that.handleCommand(line); done {
				return nil
			}
		}
	}
}

func (that *Console) readLines(ctx context.Context, lines chan<- string) {
	defer close(lines)

	scanner := bufio.NewScanner(that.in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		select {
		case lines <- line:
		case <-ctx.Done():
			return
		}
	}
}

// handleCommand - one operator line; the return value reports whether the
// console should exit.
func (that *Console) handleCommand(line string) bool {
	switch strings.ToLower(line) {
	case "quit", "exit":
		if err := that.session.Quit(); err != nil {
			that.logger.Error("failed to quit", "error", err)
		}
		return true

	case "resign":
		if err := that.session.Resign(); err != nil {
			that.logger.Error("failed to resign", "error", err)
		}
		return false

	case "new":
		if err := that.session.StartNewGame(); err != nil {
			fmt.Fprintf(that.out, "cannot start a new game: %v\n", err)
		}
		return false
	}

	from, to, promotion, err := ParseMove(line)
	if err != nil {
		fmt.Fprintf(that.out, "cannot read %q: %v\n", line, err)
		return false
	}

	if _, err = that.session.ProposeMove(from, to, promotion); err != nil {
		switch {
		case errors.Is(err, apperror.ErrNotYourTurn):
			fmt.Fprintln(that.out, "not your turn, waiting for the peer")
		case errors.Is(err, apperror.ErrIllegalMove):
			fmt.Fprintf(that.out, "illegal move: %s\n", line)
		case errors.Is(err, apperror.ErrGameNotStarted), errors.Is(err, apperror.ErrGameFinished):
			fmt.Fprintf(that.out, "no active game: %v\n", err)
		default:
			that.logger.Error("failed to propose move", "error", err)
		}
	}

	return false
}

// ParseMove - parses long algebraic input like "e2e4" or "e7e8q".
func ParseMove(line string) (chess.Square, chess.Square, chess.PieceType, error) {
	if len(line) != 4 && len(line) != 5 {
		return chess.SquareNone, chess.SquareNone, chess.NoPiece,
			fmt.Errorf("want a move like e2e4 or e7e8q, got %q", line)
	}

	from, err := chess.ParseSquare(line[0:2])
	if err != nil {
		return chess.SquareNone, chess.SquareNone, chess.NoPiece, err
	}

	to, err := chess.ParseSquare(line[2:4])
	if err != nil {
		return chess.SquareNone, chess.SquareNone, chess.NoPiece, err
	}

	promotion := chess.NoPiece
	if len(line) == 5 {
		promotion, err = chess.ParsePieceType(line[4:5])
		if err != nil {
			return chess.SquareNone, chess.SquareNone, chess.NoPiece, err
		}
	}

	return from, to, promotion, nil
}

// render - one snapshot to the output stream, board oriented from the local
// player's side like the original board display.
func (that *Console) render(update session.Update) {
	if update.Phase == session.PhaseEnded {
		fmt.Fprintf(that.out, "game over: %s", update.EndReason)
		if update.Detail != "" {
			fmt.Fprintf(that.out, " (%s)", update.Detail)
		}
		fmt.Fprintln(that.out)
		return
	}

	if update.LastMove != "" {
		fmt.Fprintf(that.out, "last move: %s\n", update.LastMove)
	}
	fmt.Fprint(that.out, RenderBoard(update.Board, update.Color))

	switch {
	case update.InCheck && update.YourTurn:
		fmt.Fprintln(that.out, "you are in check")
	case update.YourTurn:
		fmt.Fprintf(that.out, "your move (%s)\n", update.Color)
	default:
		fmt.Fprintln(that.out, "waiting for the peer")
	}
}

// RenderBoard - ASCII board, white pieces uppercase, viewed from the given
// player's perspective.
func RenderBoard(board chess.Board, viewpoint chess.Color) string {
	var b strings.Builder

	ranks := []int{7, 6, 5, 4, 3, 2, 1, 0}
	files := []int{0, 1, 2, 3, 4, 5, 6, 7}
	if viewpoint == chess.Black {
		ranks = []int{0, 1, 2, 3, 4, 5, 6, 7}
		files = []int{7, 6, 5, 4, 3, 2, 1, 0}
	}

	for _, rank := range ranks {
		fmt.Fprintf(&b, "%d ", rank+1)
		for _, file := range files {
			b.WriteString(" " + board.At(chess.NewSquare(file, rank)).String())
		}
		b.WriteString("\n")
	}

	b.WriteString("  ")
	for _, file := range files {
		b.WriteString(" " + string(rune('a'+file)))
	}
	b.WriteString("\n")

	return b.String()
}
