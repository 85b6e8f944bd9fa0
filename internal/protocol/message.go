package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/peerchess/tcp-chess/internal/apperror"
	"github.com/peerchess/tcp-chess/internal/chess"
)

// Actions exchanged between the two peers. The protocol is strictly
// alternating: exactly one MOVE is in flight per half-move, so no
// acknowledgements or sequence windows are needed. The move number is carried
// anyway for desync detection.
const (
	ActionGameStart = "game:start"
	ActionMove      = "game:move"
	ActionQuit      = "game:quit"
)

// Quit reasons.
const (
	ReasonQuit   = "quit"
	ReasonResign = "resign"
)

// Message - one framed wire record.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// StartPayload - sent by the host to begin a game (and every rematch).
// YourColor names the color the receiving guest plays.
type StartPayload struct {
	GameID    string `json:"game_id"`
	YourColor string `json:"your_color"`
}

// MovePayload - one half-move, squares in algebraic notation. MoveNumber is
// the 1-based half-move index the sender assigned to it.
type MovePayload struct {
	From       string `json:"from"`
	To         string `json:"to"`
	Promotion  string `json:"promotion,omitempty"`
	SpecialTag string `json:"special_tag,omitempty"`
	MoveNumber int    `json:"move_number"`
}

// QuitPayload - explicit session termination, plain quit or resignation.
type QuitPayload struct {
	Reason string `json:"reason"`
}

func newMessage(action string, payload any) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("failed to marshal %s payload: %w", action, err)
	}

	return Message{Action: action, Payload: json.RawMessage(raw)}, nil
}

// NewStartMessage - host-side game start record.
func NewStartMessage(gameID string, guestColor chess.Color) (Message, error) {
	return newMessage(ActionGameStart, StartPayload{
		GameID:    gameID,
		YourColor: guestColor.String(),
	})
}

// NewMoveMessage - encodes an already-validated move.
func NewMoveMessage(move chess.Move, moveNumber int) (Message, error) {
	payload := MovePayload{
		From:       move.From.String(),
		To:         move.To.String(),
		SpecialTag: move.Tag.String(),
		MoveNumber: moveNumber,
	}
	if move.Promotion != chess.NoPiece {
		payload.Promotion = move.Promotion.String()
	}

	return newMessage(ActionMove, payload)
}

// NewQuitMessage - explicit termination record.
func NewQuitMessage(reason string) (Message, error) {
	return newMessage(ActionQuit, QuitPayload{Reason: reason})
}

// DecodeStart - parses a game:start payload.
func DecodeStart(msg Message) (StartPayload, chess.Color, error) {
	var payload StartPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return StartPayload{}, chess.White, fmt.Errorf("%w: %w", apperror.ErrMalformedMessage, err)
	}

	color, err := chess.ParseColor(payload.YourColor)
	if err != nil {
		return StartPayload{}, chess.White, fmt.Errorf("%w: %w", apperror.ErrMalformedMessage, err)
	}

	return payload, color, nil
}

// DecodeMove - parses a game:move payload back into a chess.Move. The result
// still has to pass the receiver's own legality engine before it is applied.
func DecodeMove(msg Message) (chess.Move, int, error) {
	var payload MovePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return chess.Move{}, 0, fmt.Errorf("%w: %w", apperror.ErrMalformedMessage, err)
	}

	from, err := chess.ParseSquare(payload.From)
	if err != nil {
		return chess.Move{}, 0, fmt.Errorf("%w: %w", apperror.ErrMalformedMessage, err)
	}

	to, err := chess.ParseSquare(payload.To)
	if err != nil {
		return chess.Move{}, 0, fmt.Errorf("%w: %w", apperror.ErrMalformedMessage, err)
	}

	promotion := chess.NoPiece
	if payload.Promotion != "" {
		parsed, err := chess.ParsePieceType(payload.Promotion)
		if err != nil {
			return chess.Move{}, 0, fmt.Errorf("%w: %w", apperror.ErrMalformedMessage, err)
		}
		promotion = parsed
	}

	tag, err := chess.ParseMoveTag(payload.SpecialTag)
	if err != nil {
		return chess.Move{}, 0, fmt.Errorf("%w: %w", apperror.ErrMalformedMessage, err)
	}

	move := chess.Move{From: from, To: to, Promotion: promotion, Tag: tag}

	return move, payload.MoveNumber, nil
}

// DecodeQuit - parses a game:quit payload.
func DecodeQuit(msg Message) (QuitPayload, error) {
	var payload QuitPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return QuitPayload{}, fmt.Errorf("%w: %w", apperror.ErrMalformedMessage, err)
	}

	return payload, nil
}
