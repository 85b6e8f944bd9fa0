package chess

import (
	"fmt"
	"strconv"
	"strings"
)

// FENStartPos is the FEN string for the standard initial chess position.
const FENStartPos = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// FEN - the game state in Forsyth-Edwards notation.
func (that *Game) FEN() string {
	var b strings.Builder

	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			piece := that.Board.At(NewSquare(file, rank))
			if piece.IsEmpty() {
				empty++
				continue
			}
			if empty > 0 {
				b.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			b.WriteString(piece.String())
		}
		if empty > 0 {
			b.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			b.WriteString("/")
		}
	}

	turn := "w"
	if that.Turn == Black {
		turn = "b"
	}

	return fmt.Sprintf("%s %s %s %s %d %d",
		b.String(), turn, that.Castling, that.EnPassant, that.HalfmoveClock, that.FullmoveNumber)
}

// GameFromFEN - builds a game state from Forsyth-Edwards notation.
func GameFromFEN(fen string) (*Game, error) {
	fields := strings.Fields(fen)
	if len(fields) != 6 {
		return nil, fmt.Errorf("invalid FEN %q: want 6 fields, got %d", fen, len(fields))
	}

	game := &Game{EnPassant: SquareNone, FullmoveNumber: 1}

	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return nil, fmt.Errorf("invalid FEN %q: want 8 ranks, got %d", fen, len(ranks))
	}

	for i, rankStr := range ranks {
		rank := 7 - i
		file := 0
		for _, ch := range rankStr {
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}

			pieceType, ok := pieceTypeFromLetter(string(ch))
			if !ok {
				return nil, fmt.Errorf("invalid FEN %q: unknown piece %q", fen, ch)
			}
			if file > 7 {
				return nil, fmt.Errorf("invalid FEN %q: rank %d overflows", fen, rank+1)
			}

			color := Black
			if ch >= 'A' && ch <= 'Z' {
				color = White
			}
			game.Board.Put(NewSquare(file, rank), Piece{Type: pieceType, Color: color})
			file++
		}
		if file != 8 {
			return nil, fmt.Errorf("invalid FEN %q: rank %d has %d files", fen, rank+1, file)
		}
	}

	switch fields[1] {
	case "w":
		game.Turn = White
	case "b":
		game.Turn = Black
	default:
		return nil, fmt.Errorf("invalid FEN %q: unknown side %q", fen, fields[1])
	}

	if fields[2] != "-" {
		for _, ch := range fields[2] {
			switch ch {
			case 'K':
				game.Castling.WhiteKingside = true
			case 'Q':
				game.Castling.WhiteQueenside = true
			case 'k':
				game.Castling.BlackKingside = true
			case 'q':
				game.Castling.BlackQueenside = true
			default:
				return nil, fmt.Errorf("invalid FEN %q: unknown castling flag %q", fen, ch)
			}
		}
	}

	enPassant, err := ParseSquare(fields[3])
	if err != nil {
		return nil, fmt.Errorf("invalid FEN %q: %w", fen, err)
	}
	game.EnPassant = enPassant

	halfmove, err := strconv.Atoi(fields[4])
	if err != nil || halfmove < 0 {
		return nil, fmt.Errorf("invalid FEN %q: bad halfmove clock %q", fen, fields[4])
	}
	game.HalfmoveClock = halfmove

	fullmove, err := strconv.Atoi(fields[5])
	if err != nil || fullmove < 1 {
		return nil, fmt.Errorf("invalid FEN %q: bad fullmove number %q", fen, fields[5])
	}
	game.FullmoveNumber = fullmove

	return game, nil
}
