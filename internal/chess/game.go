package chess

import (
	"fmt"

	"github.com/peerchess/tcp-chess/internal/apperror"
)

// Status of the side to move.
type Status uint8

const (
	StatusOngoing Status = iota
	StatusCheckmate
	StatusStalemate
)

func (that Status) String() string {
	switch that {
	case StatusCheckmate:
		return "checkmate"
	case StatusStalemate:
		return "stalemate"
	default:
		return "ongoing"
	}
}

// Game - one side's authoritative copy of the game state. Each peer owns its
// own Game; the session protocol keeps the two copies consistent, this type
// never sees the network.
type Game struct {
	Board          Board
	Turn           Color
	Castling       CastlingRights
	EnPassant      Square
	HalfmoveClock  int
	FullmoveNumber int
	History        []Move
}

// NewGame - the initial chess position, white to move.
func NewGame() *Game {
	return &Game{
		Board:          StartingBoard(),
		Turn:           White,
		Castling:       allCastlingRights(),
		EnPassant:      SquareNone,
		FullmoveNumber: 1,
	}
}

// clone - scratch copy for move simulation. History is not carried over; the
// copy exists only to be mutated and inspected.
func (that *Game) clone() *Game {
	scratch := *that
	scratch.History = nil
	return &scratch
}

// Apply - validates the move through the legality engine and mutates the game
// on success. An illegal or malformed move is rejected with no state change.
func (that *Game) Apply(move Move) error {
	if !that.IsLegal(move) {
		return fmt.Errorf("%w: %s", apperror.ErrIllegalMove, move)
	}

	that.applyUnchecked(move)

	return nil
}

// applyUnchecked - board mutation core. The caller guarantees legality.
func (that *Game) applyUnchecked(move Move) {
	piece := that.Board.At(move.From)
	isCapture := !that.Board.At(move.To).IsEmpty()

	switch move.Tag {
	case TagCastleKingside:
		rank := move.From.Rank()
		that.Board.Put(NewSquare(5, rank), that.Board.At(NewSquare(7, rank)))
		that.Board.Clear(NewSquare(7, rank))
	case TagCastleQueenside:
		rank := move.From.Rank()
		that.Board.Put(NewSquare(3, rank), that.Board.At(NewSquare(0, rank)))
		that.Board.Clear(NewSquare(0, rank))
	case TagEnPassant:
		// the captured pawn sits beside the destination, not on it
		that.Board.Clear(NewSquare(move.To.File(), move.From.Rank()))
		isCapture = true
	}

	placed := piece
	if move.Promotion != NoPiece {
		placed.Type = move.Promotion
	}
	that.Board.Clear(move.From)
	that.Board.Put(move.To, placed)

	that.updateCastlingRights(piece, move)
	that.updateEnPassantTarget(piece, move)

	if piece.Type == Pawn || isCapture {
		that.HalfmoveClock = 0
	} else {
		that.HalfmoveClock++
	}

	if that.Turn == Black {
		that.FullmoveNumber++
	}

	that.History = append(that.History, move)
	that.Turn = that.Turn.Opposite()
}

// updateCastlingRights - rights die the moment the king moves, the rook
// leaves its home square, or the home square is captured.
func (that *Game) updateCastlingRights(piece Piece, move Move) {
	if piece.Type == King {
		if piece.Color == White {
			that.Castling.WhiteKingside = false
			that.Castling.WhiteQueenside = false
		} else {
			that.Castling.BlackKingside = false
			that.Castling.BlackQueenside = false
		}
	}

	for _, sq := range []Square{move.From, move.To} {
		switch sq {
		case squareA1:
			that.Castling.WhiteQueenside = false
		case squareH1:
			that.Castling.WhiteKingside = false
		case squareA8:
			that.Castling.BlackQueenside = false
		case squareH8:
			that.Castling.BlackKingside = false
		}
	}
}

// updateEnPassantTarget - set the bypassed square after a double pawn
// advance, cleared again by whatever move comes next.
func (that *Game) updateEnPassantTarget(piece Piece, move Move) {
	that.EnPassant = SquareNone

	if piece.Type != Pawn {
		return
	}

	rankDelta := move.To.Rank() - move.From.Rank()
	if rankDelta == 2 || rankDelta == -2 {
		that.EnPassant = NewSquare(move.From.File(), (move.From.Rank()+move.To.Rank())/2)
	}
}

// Status - terminal detection for the side to move: zero legal moves means
// checkmate when in check, stalemate otherwise.
func (that *Game) Status() Status {
	if len(that.LegalMoves()) > 0 {
		return StatusOngoing
	}

	if that.InCheck(that.Turn) {
		return StatusCheckmate
	}
	return StatusStalemate
}

// Winner - the winning color, valid only when Status is checkmate.
func (that *Game) Winner() (Color, bool) {
	if that.Status() != StatusCheckmate {
		return White, false
	}
	return that.Turn.Opposite(), true
}
