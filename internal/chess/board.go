package chess

// Board - mapping from square to occupant. A pure value type: copying the
// array copies the position, which is what the legality engine's
// simulate-and-recheck filtering relies on.
type Board [64]Piece

func (that *Board) At(sq Square) Piece {
	return that[sq]
}

func (that *Board) Put(sq Square, piece Piece) {
	that[sq] = piece
}

func (that *Board) Clear(sq Square) {
	that[sq] = Piece{}
}

// SquaresOf - all squares occupied by the given color.
func (that *Board) SquaresOf(color Color) []Square {
	squares := make([]Square, 0, 16)
	for sq := Square(0); sq < 64; sq++ {
		if piece := that[sq]; !piece.IsEmpty() && piece.Color == color {
			squares = append(squares, sq)
		}
	}
	return squares
}

// KingSquare - the square of the given color's king, SquareNone if absent.
// An active game always has exactly one king per color; absence means the
// position was corrupted, which callers treat as a fatal logic error.
func (that *Board) KingSquare(color Color) Square {
	for sq := Square(0); sq < 64; sq++ {
		if piece := that[sq]; piece.Type == King && piece.Color == color {
			return sq
		}
	}
	return SquareNone
}

// StartingBoard - the initial chess position.
func StartingBoard() Board {
	var board Board

	backRank := [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for file := 0; file < 8; file++ {
		board.Put(NewSquare(file, 0), Piece{Type: backRank[file], Color: White})
		board.Put(NewSquare(file, 1), Piece{Type: Pawn, Color: White})
		board.Put(NewSquare(file, 6), Piece{Type: Pawn, Color: Black})
		board.Put(NewSquare(file, 7), Piece{Type: backRank[file], Color: Black})
	}

	return board
}
