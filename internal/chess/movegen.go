package chess

// Move generation follows the intentionally simple scheme: generate
// pseudo-legal moves per piece, then keep only the ones that do not leave the
// own king attacked in the resulting position. Attack-map precomputation is
// deliberately not used; correctness over speed.

var (
	rookDirections   = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopDirections = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}

	knightSteps = [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingSteps   = [8][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

// home squares relevant to castling-rights bookkeeping.
const (
	squareA1 Square = 0
	squareE1 Square = 4
	squareH1 Square = 7
	squareA8 Square = 56
	squareE8 Square = 60
	squareH8 Square = 63
)

// offsetSquare - the square (file+df, rank+dr), SquareNone when off-board.
func offsetSquare(sq Square, df, dr int) Square {
	file := sq.File() + df
	rank := sq.Rank() + dr
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return SquareNone
	}
	return NewSquare(file, rank)
}

// pawnDirection - rank delta of a pawn advance for the given color.
func pawnDirection(color Color) int {
	if color == White {
		return 1
	}
	return -1
}

// LegalMoves - every legal move for the side to move, in no particular order.
func (that *Game) LegalMoves() []Move {
	pseudo := that.pseudoLegalMoves(that.Turn)

	legal := make([]Move, 0, len(pseudo))
	for _, move := range pseudo {
		scratch := that.clone()
		scratch.applyUnchecked(move)
		if !scratch.isAttacked(scratch.Board.KingSquare(that.Turn), that.Turn.Opposite()) {
			legal = append(legal, move)
		}
	}

	return legal
}

// IsLegal - reports whether the candidate move is legal for the side to move.
// Malformed input (out-of-range squares, empty source, wrong side's piece)
// reads as illegal; this never panics.
func (that *Game) IsLegal(move Move) bool {
	if !move.From.IsValid() || !move.To.IsValid() {
		return false
	}

	piece := that.Board.At(move.From)
	if piece.IsEmpty() || piece.Color != that.Turn {
		return false
	}

	for _, legal := range that.LegalMoves() {
		if legal == move {
			return true
		}
	}

	return false
}

// FindMove - resolves a (from, to, promotion) proposal to the fully tagged
// legal move, so callers never have to construct special-move tags themselves.
func (that *Game) FindMove(from, to Square, promotion PieceType) (Move, bool) {
	if !from.IsValid() || !to.IsValid() {
		return Move{}, false
	}

	for _, legal := range that.LegalMoves() {
		if legal.From == from && legal.To == to && legal.Promotion == promotion {
			return legal, true
		}
	}

	return Move{}, false
}

// InCheck - whether the given color's king is currently attacked.
func (that *Game) InCheck(color Color) bool {
	kingSq := that.Board.KingSquare(color)
	if !kingSq.IsValid() {
		return false
	}
	return that.isAttacked(kingSq, color.Opposite())
}

// pseudoLegalMoves - geometrically valid moves for every piece of the given
// color, ignoring whether the own king ends up in check. Castling is the one
// exception: its transit-square conditions are checked here because the
// final-position filter alone cannot see them.
func (that *Game) pseudoLegalMoves(color Color) []Move {
	moves := make([]Move, 0, 48)

	for _, sq := range that.Board.SquaresOf(color) {
		switch that.Board.At(sq).Type {
		case Pawn:
			moves = append(moves, that.pawnMoves(sq, color)...)
		case Knight:
			moves = append(moves, that.stepMoves(sq, color, knightSteps[:])...)
		case Bishop:
			moves = append(moves, that.slideMoves(sq, color, bishopDirections[:])...)
		case Rook:
			moves = append(moves, that.slideMoves(sq, color, rookDirections[:])...)
		case Queen:
			moves = append(moves, that.slideMoves(sq, color, rookDirections[:])...)
			moves = append(moves, that.slideMoves(sq, color, bishopDirections[:])...)
		case King:
			moves = append(moves, that.stepMoves(sq, color, kingSteps[:])...)
			moves = append(moves, that.castlingMoves(color)...)
		}
	}

	return moves
}

// pawnMoves - single and double advance, diagonal captures, en passant, and
// promotion fan-out on the last rank.
func (that *Game) pawnMoves(sq Square, color Color) []Move {
	moves := make([]Move, 0, 4)

	dir := pawnDirection(color)
	startRank := 1
	promoRank := 7
	if color == Black {
		startRank = 6
		promoRank = 0
	}

	appendMove := func(to Square, tag MoveTag) {
		if to.Rank() == promoRank {
			for _, promo := range []PieceType{Queen, Rook, Bishop, Knight} {
				moves = append(moves, Move{From: sq, To: to, Promotion: promo, Tag: tag})
			}
			return
		}
		moves = append(moves, Move{From: sq, To: to, Tag: tag})
	}

	if forward := offsetSquare(sq, 0, dir); forward.IsValid() && that.Board.At(forward).IsEmpty() {
		appendMove(forward, TagNone)

		if sq.Rank() == startRank {
			if double := offsetSquare(sq, 0, 2*dir); double.IsValid() && that.Board.At(double).IsEmpty() {
				appendMove(double, TagNone)
			}
		}
	}

	for _, df := range []int{-1, 1} {
		target := offsetSquare(sq, df, dir)
		if !target.IsValid() {
			continue
		}

		occupant := that.Board.At(target)
		switch {
		case !occupant.IsEmpty() && occupant.Color != color:
			appendMove(target, TagNone)
		case occupant.IsEmpty() && target == that.EnPassant:
			appendMove(target, TagEnPassant)
		}
	}

	return moves
}

// stepMoves - fixed-offset movers (knight, king without castling).
func (that *Game) stepMoves(sq Square, color Color, steps [][2]int) []Move {
	moves := make([]Move, 0, len(steps))

	for _, step := range steps {
		target := offsetSquare(sq, step[0], step[1])
		if !target.IsValid() {
			continue
		}

		occupant := that.Board.At(target)
		if occupant.IsEmpty() || occupant.Color != color {
			moves = append(moves, Move{From: sq, To: target})
		}
	}

	return moves
}

// slideMoves - sliding movers stop at the first occupied square, capturing it
// when it holds an enemy piece.
func (that *Game) slideMoves(sq Square, color Color, directions [][2]int) []Move {
	moves := make([]Move, 0, 8)

	for _, dir := range directions {
		for dist := 1; ; dist++ {
			target := offsetSquare(sq, dir[0]*dist, dir[1]*dist)
			if !target.IsValid() {
				break
			}

			occupant := that.Board.At(target)
			if occupant.IsEmpty() {
				moves = append(moves, Move{From: sq, To: target})
				continue
			}

			if occupant.Color != color {
				moves = append(moves, Move{From: sq, To: target})
			}
			break
		}
	}

	return moves
}

// castlingMoves - castling requires intact rights, empty intervening squares,
// and a king that is not in check before, through, or at the destination.
func (that *Game) castlingMoves(color Color) []Move {
	kingSq := squareE1
	kingside := that.Castling.WhiteKingside
	queenside := that.Castling.WhiteQueenside
	rookKingside, rookQueenside := squareH1, squareA1
	if color == Black {
		kingSq = squareE8
		kingside = that.Castling.BlackKingside
		queenside = that.Castling.BlackQueenside
		rookKingside, rookQueenside = squareH8, squareA8
	}

	if !kingside && !queenside {
		return nil
	}

	// rights can be stale in hand-built positions; verify occupants
	if that.Board.At(kingSq) != (Piece{Type: King, Color: color}) {
		return nil
	}
	if that.isAttacked(kingSq, color.Opposite()) {
		return nil
	}

	rook := Piece{Type: Rook, Color: color}
	moves := make([]Move, 0, 2)

	if kingside && that.Board.At(rookKingside) == rook {
		fsq := offsetSquare(kingSq, 1, 0)
		gsq := offsetSquare(kingSq, 2, 0)
		if that.Board.At(fsq).IsEmpty() && that.Board.At(gsq).IsEmpty() &&
			!that.isAttacked(fsq, color.Opposite()) && !that.isAttacked(gsq, color.Opposite()) {
			moves = append(moves, Move{From: kingSq, To: gsq, Tag: TagCastleKingside})
		}
	}

	if queenside && that.Board.At(rookQueenside) == rook {
		dsq := offsetSquare(kingSq, -1, 0)
		csq := offsetSquare(kingSq, -2, 0)
		bsq := offsetSquare(kingSq, -3, 0)
		if that.Board.At(dsq).IsEmpty() && that.Board.At(csq).IsEmpty() && that.Board.At(bsq).IsEmpty() &&
			!that.isAttacked(dsq, color.Opposite()) && !that.isAttacked(csq, color.Opposite()) {
			moves = append(moves, Move{From: kingSq, To: csq, Tag: TagCastleQueenside})
		}
	}

	return moves
}

// isAttacked - whether any piece of the given color attacks the target
// square. Works outward from the target, so it never allocates move lists.
func (that *Game) isAttacked(target Square, by Color) bool {
	if !target.IsValid() {
		return false
	}

	// pawns capture toward their own advance direction
	pawnRankDelta := -pawnDirection(by)
	for _, df := range []int{-1, 1} {
		if sq := offsetSquare(target, df, pawnRankDelta); sq.IsValid() {
			if that.Board.At(sq) == (Piece{Type: Pawn, Color: by}) {
				return true
			}
		}
	}

	for _, step := range knightSteps {
		if sq := offsetSquare(target, step[0], step[1]); sq.IsValid() {
			if that.Board.At(sq) == (Piece{Type: Knight, Color: by}) {
				return true
			}
		}
	}

	for _, step := range kingSteps {
		if sq := offsetSquare(target, step[0], step[1]); sq.IsValid() {
			if that.Board.At(sq) == (Piece{Type: King, Color: by}) {
				return true
			}
		}
	}

	if that.slidingAttack(target, by, rookDirections[:], Rook) {
		return true
	}
	return that.slidingAttack(target, by, bishopDirections[:], Bishop)
}

// slidingAttack - scans each direction for the first occupied square and
// checks it for an attacker of the matching slider type (or a queen).
func (that *Game) slidingAttack(target Square, by Color, directions [][2]int, slider PieceType) bool {
	for _, dir := range directions {
		for dist := 1; ; dist++ {
			sq := offsetSquare(target, dir[0]*dist, dir[1]*dist)
			if !sq.IsValid() {
				break
			}

			occupant := that.Board.At(sq)
			if occupant.IsEmpty() {
				continue
			}

			if occupant.Color == by && (occupant.Type == slider || occupant.Type == Queen) {
				return true
			}
			break
		}
	}

	return false
}
