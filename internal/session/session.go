package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/peerchess/tcp-chess/internal/apperror"
	"github.com/peerchess/tcp-chess/internal/chess"
	"github.com/peerchess/tcp-chess/internal/protocol"
)

type Role string

const (
	RoleHost  Role = "host"
	RoleGuest Role = "guest"
)

// Phase of the session lifecycle: Connecting until the start handshake,
// Active while a game runs, Ended afterwards. Ended is rematch-eligible as
// long as the connection itself is still up.
type Phase uint8

const (
	PhaseConnecting Phase = iota
	PhaseActive
	PhaseEnded
)

func (that Phase) String() string {
	switch that {
	case PhaseConnecting:
		return "connecting"
	case PhaseActive:
		return "active"
	default:
		return "ended"
	}
}

// EndReason - why a session left the Active phase. A protocol fault or
// disconnect leaves the game undecided.
type EndReason string

const (
	EndCheckmate     EndReason = "checkmate"
	EndStalemate     EndReason = "stalemate"
	EndQuit          EndReason = "quit"
	EndResignation   EndReason = "resignation"
	EndDisconnect    EndReason = "disconnect"
	EndProtocolFault EndReason = "protocol fault"
)

// Conn - the established byte-stream the session consumes. Listening,
// dialing and port mapping are somebody else's problem.
type Conn interface {
	Send(msg protocol.Message) error
	Receive() (protocol.Message, error)
	Close() error
}

// Update - a state snapshot handed to the local input collaborator after
// every change it needs to render.
type Update struct {
	Phase     Phase
	EndReason EndReason
	Detail    string

	GameID   string
	Color    chess.Color
	Board    chess.Board
	Turn     chess.Color
	YourTurn bool
	InCheck  bool
	LastMove string
}

// Session - one process's half of the peer protocol. It owns the local
// authoritative Game copy; the remote peer owns its own. The two copies stay
// consistent only through the strict move alternation plus the receiver-side
// re-validation of every incoming move (trust-but-verify).
//
// Two goroutines touch a Session: the local input collaborator calling
// ProposeMove/Quit/Resign/StartNewGame, and the receive loop in Run. All
// state is guarded by one mutex; the phases guarantee the two never want to
// mutate in the same half-move anyway.
type Session struct {
	logger *slog.Logger
	role   Role
	conn   Conn

	mu        sync.Mutex
	phase     Phase
	endReason EndReason
	gameID    string
	color     chess.Color
	game      *chess.Game

	updates  chan Update
	handlers map[string]func(msg protocol.Message) error
}

func New(logger *slog.Logger, role Role, conn Conn) *Session {
	session := &Session{
		logger: logger.With("component", "session", "role", string(role)),
		role:   role,
		conn:   conn,

		phase:   PhaseConnecting,
		updates: make(chan Update, 16),
	}

	session.handlers = map[string]func(msg protocol.Message) error{
		protocol.ActionGameStart: session.handleStart,
		protocol.ActionMove:      session.handleMove,
		protocol.ActionQuit:      session.handleQuit,
	}

	return session
}

// Updates - snapshots for the input collaborator, one per applied change.
func (that *Session) Updates() <-chan Update {
	return that.updates
}

// Run - the network-receive activity. Blocks on the connection until it is
// closed; closing the connection is the sole way to cancel it. Returns nil on
// an orderly end, the protocol error otherwise.
func (that *Session) Run(ctx context.Context) error {
	log := that.logger.With("method", "Run")

	for {
		if ctx.Err() != nil {
			return nil
		}

		msg, err := that.conn.Receive()
		if err != nil {
			if errors.Is(err, apperror.ErrMalformedMessage) {
				log.Error("received undecodable message", "error", err)
				that.fault("undecodable message")
				return err
			}

			that.mu.Lock()
			ended := that.phase == PhaseEnded
			that.mu.Unlock()

			if ended || ctx.Err() != nil {
				// orderly: the session was already over when the stream went away
				return nil
			}

			log.Info("peer connection lost", "error", err)
			that.end(EndDisconnect, "connection to peer lost")
			return nil
		}

		handler, ok := that.handlers[msg.Action]
		if !ok {
			log.Error("unknown action from peer", "action", msg.Action)
			that.fault(fmt.Sprintf("unknown action %q", msg.Action))
			return apperror.ErrProtocolFault
		}

		if err = handler(msg); err != nil {
			log.Error("peer message rejected", "action", msg.Action, "error", err)
			that.fault(err.Error())
			return fmt.Errorf("%w: %w", apperror.ErrProtocolFault, err)
		}
	}
}

// handleStart - guest side of the (re)start handshake.
func (that *Session) handleStart(msg protocol.Message) error {
	payload, color, err := protocol.DecodeStart(msg)
	if err != nil {
		return err
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if that.role != RoleGuest {
		return fmt.Errorf("host received %s", protocol.ActionGameStart)
	}
	if that.phase == PhaseActive {
		return fmt.Errorf("%s while a game is active", protocol.ActionGameStart)
	}

	that.gameID = payload.GameID
	that.color = color
	that.game = chess.NewGame()
	that.phase = PhaseActive
	that.endReason = ""

	that.logger.Info("game started", "game_id", that.gameID, "color", that.color.String())
	that.emitLocked("")

	return nil
}

// handleMove - re-validates a received move through the local legality engine
// before applying it. Any rejection here is a protocol fault: the two boards
// would otherwise silently diverge.
func (that *Session) handleMove(msg protocol.Message) error {
	move, moveNumber, err := protocol.DecodeMove(msg)
	if err != nil {
		return err
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if that.phase != PhaseActive {
		return fmt.Errorf("move in phase %s", that.phase)
	}
	if that.game.Turn == that.color {
		return errors.New("peer moved during our turn")
	}
	if want := len(that.game.History) + 1; moveNumber != want {
		return fmt.Errorf("move number %d, expected %d: peers desynchronized", moveNumber, want)
	}

	if err = that.game.Apply(move); err != nil {
		return fmt.Errorf("re-validation rejected %s: %w", move, err)
	}

	that.logger.Info("applied remote move", "move", move.String(), "number", moveNumber)
	that.finishOrEmitLocked(move)

	return nil
}

// handleQuit - explicit termination by the peer, plain quit or resignation.
func (that *Session) handleQuit(msg protocol.Message) error {
	payload, err := protocol.DecodeQuit(msg)
	if err != nil {
		return err
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if that.phase == PhaseEnded {
		return nil
	}

	switch payload.Reason {
	case protocol.ReasonResign:
		that.endLocked(EndResignation, "peer resigned")
	default:
		that.endLocked(EndQuit, "peer quit")
	}

	return nil
}

// ProposeMove - called by the local input collaborator. Accepted only during
// the local side's half-move; an engine rejection is recoverable, the caller
// may simply try another move.
func (that *Session) ProposeMove(from, to chess.Square, promotion chess.PieceType) (Update, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	switch that.phase {
	case PhaseConnecting:
		return Update{}, apperror.ErrGameNotStarted
	case PhaseEnded:
		return Update{}, apperror.ErrGameFinished
	}

	if that.game.Turn != that.color {
		return Update{}, apperror.ErrNotYourTurn
	}

	move, ok := that.game.FindMove(from, to, promotion)
	if !ok {
		return Update{}, fmt.Errorf("%w: %s%s", apperror.ErrIllegalMove, from, to)
	}

	if err := that.game.Apply(move); err != nil {
		return Update{}, err
	}

	msg, err := protocol.NewMoveMessage(move, len(that.game.History))
	if err != nil {
		return Update{}, err
	}
	if err = that.conn.Send(msg); err != nil {
		that.endLocked(EndDisconnect, "failed to transmit move")
		return that.snapshotLocked(move.String()), err
	}

	that.finishOrEmitLocked(move)

	return that.snapshotLocked(move.String()), nil
}

// StartNewGame - host-only operator action; first game and every rematch go
// through the same handshake. Rejected while a game is still active.
func (that *Session) StartNewGame() error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.role != RoleHost {
		return apperror.ErrNotHost
	}
	if that.phase == PhaseActive {
		return apperror.ErrRematchNotReady
	}

	gameID := uuid.NewString()

	msg, err := protocol.NewStartMessage(gameID, chess.Black)
	if err != nil {
		return err
	}
	if err = that.conn.Send(msg); err != nil {
		return fmt.Errorf("failed to send game start: %w", err)
	}

	that.gameID = gameID
	that.color = chess.White
	that.game = chess.NewGame()
	that.phase = PhaseActive
	that.endReason = ""

	that.logger.Info("game started", "game_id", gameID, "color", that.color.String())
	that.emitLocked("")

	return nil
}

// Quit - orderly local termination. The connection stays open so that an
// Ended host can still offer a rematch; the process closes it on exit.
func (that *Session) Quit() error {
	return that.sendTermination(protocol.ReasonQuit, EndQuit, "you quit")
}

// Resign - concede the active game.
func (that *Session) Resign() error {
	return that.sendTermination(protocol.ReasonResign, EndResignation, "you resigned")
}

func (that *Session) sendTermination(reason string, endReason EndReason, detail string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.phase == PhaseEnded {
		return nil
	}

	msg, err := protocol.NewQuitMessage(reason)
	if err != nil {
		return err
	}
	if err = that.conn.Send(msg); err != nil {
		that.endLocked(EndDisconnect, "failed to notify peer")
		return err
	}

	that.endLocked(endReason, detail)

	return nil
}

// Phase - current phase and, once Ended, the reason.
func (that *Session) Phase() (Phase, EndReason) {
	that.mu.Lock()
	defer that.mu.Unlock()
	return that.phase, that.endReason
}

// GameID - identifier of the current (or last) game.
func (that *Session) GameID() string {
	that.mu.Lock()
	defer that.mu.Unlock()
	return that.gameID
}

// FEN - the local game copy in FEN form, empty before the first handshake.
func (that *Session) FEN() string {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.game == nil {
		return ""
	}
	return that.game.FEN()
}

// Snapshot - current state for rendering.
func (that *Session) Snapshot() Update {
	that.mu.Lock()
	defer that.mu.Unlock()
	return that.snapshotLocked("")
}

// finishOrEmitLocked - after an applied move: end the session on a terminal
// position, otherwise publish the new state.
func (that *Session) finishOrEmitLocked(move chess.Move) {
	switch that.game.Status() {
	case chess.StatusCheckmate:
		winner, _ := that.game.Winner()
		that.endLocked(EndCheckmate, fmt.Sprintf("checkmate, %s wins", winner))
	case chess.StatusStalemate:
		that.endLocked(EndStalemate, "stalemate")
	default:
		that.emitLocked(move.String())
	}
}

// fault - fatal protocol violation: close the link, end with the game
// undecided. The local game copy is left exactly as it was.
func (that *Session) fault(detail string) {
	if err := that.conn.Close(); err != nil {
		that.logger.Debug("failed to close connection", "error", err)
	}

	that.end(EndProtocolFault, detail)
}

func (that *Session) end(reason EndReason, detail string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.phase == PhaseEnded {
		return
	}
	that.endLocked(reason, detail)
}

func (that *Session) endLocked(reason EndReason, detail string) {
	that.phase = PhaseEnded
	that.endReason = reason

	that.logger.Info("session ended", "reason", string(reason), "detail", detail)
	that.emitLocked(detail)
}

func (that *Session) emitLocked(detail string) {
	update := that.snapshotLocked(detail)

	select {
	case that.updates <- update:
	default:
		that.logger.Warn("update dropped, collaborator not draining")
	}
}

func (that *Session) snapshotLocked(detail string) Update {
	update := Update{
		Phase:     that.phase,
		EndReason: that.endReason,
		Detail:    detail,
		GameID:    that.gameID,
		Color:     that.color,
	}

	if that.game != nil {
		update.Board = that.game.Board
		update.Turn = that.game.Turn
		update.YourTurn = that.phase == PhaseActive && that.game.Turn == that.color
		update.InCheck = that.game.InCheck(that.game.Turn)
		if n := len(that.game.History); n > 0 {
			update.LastMove = that.game.History[n-1].String()
		}
	}

	return update
}
