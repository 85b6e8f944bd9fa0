package chess

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidSquare = errors.New("invalid square")

// Color of a piece or a player. White moves first.
type Color uint8

const (
	White Color = iota
	Black
)

func (that Color) Opposite() Color {
	if that == White {
		return Black
	}
	return White
}

func (that Color) String() string {
	if that == White {
		return "white"
	}
	return "black"
}

// ParseColor - parses the wire form produced by Color.String.
func ParseColor(s string) (Color, error) {
	switch s {
	case "white":
		return White, nil
	case "black":
		return Black, nil
	default:
		return White, fmt.Errorf("unknown color %q", s)
	}
}

type PieceType uint8

const (
	NoPiece PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

// letter - lowercase FEN/wire letter for the piece type.
func (that PieceType) letter() string {
	switch that {
	case Pawn:
		return "p"
	case Knight:
		return "n"
	case Bishop:
		return "b"
	case Rook:
		return "r"
	case Queen:
		return "q"
	case King:
		return "k"
	default:
		return ""
	}
}

// String - lowercase letter form, the one used on the wire.
func (that PieceType) String() string {
	return that.letter()
}

// ParsePieceType - parses the wire form produced by PieceType.String.
func ParsePieceType(s string) (PieceType, error) {
	pieceType, ok := pieceTypeFromLetter(s)
	if !ok || pieceType == NoPiece {
		return NoPiece, fmt.Errorf("unknown piece type %q", s)
	}
	return pieceType, nil
}

func pieceTypeFromLetter(s string) (PieceType, bool) {
	switch strings.ToLower(s) {
	case "p":
		return Pawn, true
	case "n":
		return Knight, true
	case "b":
		return Bishop, true
	case "r":
		return Rook, true
	case "q":
		return Queen, true
	case "k":
		return King, true
	default:
		return NoPiece, false
	}
}

// Piece - a piece occupying a square. The zero value means an empty square.
type Piece struct {
	Type  PieceType
	Color Color
}

func (that Piece) IsEmpty() bool {
	return that.Type == NoPiece
}

// String - FEN letter, uppercase for white.
func (that Piece) String() string {
	if that.IsEmpty() {
		return "."
	}
	letter := that.Type.letter()
	if that.Color == White {
		return strings.ToUpper(letter)
	}
	return letter
}

// Square - one of the 64 board squares, rank*8+file with a1 == 0.
// SquareNone marks "no square" (e.g. no en passant target).
type Square uint8

const SquareNone Square = 64

func NewSquare(file, rank int) Square {
	return Square(rank*8 + file)
}

func (that Square) File() int {
	return int(that % 8)
}

func (that Square) Rank() int {
	return int(that / 8)
}

func (that Square) IsValid() bool {
	return that < 64
}

// String - algebraic form, e.g. "e4". SquareNone renders as "-".
func (that Square) String() string {
	if !that.IsValid() {
		return "-"
	}
	return string(rune('a'+that.File())) + string(rune('1'+that.Rank()))
}

// ParseSquare - parses algebraic notation like "e4". "-" parses to SquareNone.
func ParseSquare(s string) (Square, error) {
	if s == "-" {
		return SquareNone, nil
	}

	if len(s) != 2 {
		return SquareNone, fmt.Errorf("%w: %q", ErrInvalidSquare, s)
	}

	file := int(s[0] - 'a')
	rank := int(s[1] - '1')
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return SquareNone, fmt.Errorf("%w: %q", ErrInvalidSquare, s)
	}

	return NewSquare(file, rank), nil
}

// MoveTag marks the special moves the board mutation has to treat differently.
type MoveTag uint8

const (
	TagNone MoveTag = iota
	TagCastleKingside
	TagCastleQueenside
	TagEnPassant
)

func (that MoveTag) String() string {
	switch that {
	case TagCastleKingside:
		return "castle-kingside"
	case TagCastleQueenside:
		return "castle-queenside"
	case TagEnPassant:
		return "en-passant"
	default:
		return ""
	}
}

func ParseMoveTag(s string) (MoveTag, error) {
	switch s {
	case "":
		return TagNone, nil
	case "castle-kingside":
		return TagCastleKingside, nil
	case "castle-queenside":
		return TagCastleQueenside, nil
	case "en-passant":
		return TagEnPassant, nil
	default:
		return TagNone, fmt.Errorf("unknown move tag %q", s)
	}
}

// Move - a half-move. Immutable once constructed; comparable so that a
// received move can be matched exactly against the generated legal set.
type Move struct {
	From      Square
	To        Square
	Promotion PieceType
	Tag       MoveTag
}

// String - long algebraic form, e.g. "e2e4" or "e7e8q".
func (that Move) String() string {
	s := that.From.String() + that.To.String()
	if that.Promotion != NoPiece {
		s += that.Promotion.letter()
	}
	return s
}

// CastlingRights - per (color, side) flags, cleared the moment the king or
// the relevant rook moves, or the rook's home square is captured.
type CastlingRights struct {
	WhiteKingside  bool
	WhiteQueenside bool
	BlackKingside  bool
	BlackQueenside bool
}

func allCastlingRights() CastlingRights {
	return CastlingRights{
		WhiteKingside:  true,
		WhiteQueenside: true,
		BlackKingside:  true,
		BlackQueenside: true,
	}
}

// String - FEN castling field, e.g. "KQkq" or "-".
func (that CastlingRights) String() string {
	var b strings.Builder
	if that.WhiteKingside {
		b.WriteString("K")
	}
	if that.WhiteQueenside {
		b.WriteString("Q")
	}
	if that.BlackKingside {
		b.WriteString("k")
	}
	if that.BlackQueenside {
		b.WriteString("q")
	}
	if b.Len() == 0 {
		return "-"
	}
	return b.String()
}
