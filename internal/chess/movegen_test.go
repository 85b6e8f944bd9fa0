package chess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSquare(t *testing.T, s string) Square {
	t.Helper()

	sq, err := ParseSquare(s)
	require.NoError(t, err)
	return sq
}

func mustGame(t *testing.T, fen string) *Game {
	t.Helper()

	game, err := GameFromFEN(fen)
	require.NoError(t, err)
	return game
}

func TestGame_LegalMoves_InitialPosition(t *testing.T) {
	// Given: the initial position
	game := NewGame()

	// When: enumerating legal moves for white
	moves := game.LegalMoves()

	// Then: there are exactly 20 (16 pawn moves, 4 knight moves)
	assert.Len(t, moves, 20)
}

func TestGame_LegalMoves_NeverLeaveOwnKingInCheck(t *testing.T) {
	positions := map[string]string{
		"initial position":      FENStartPos,
		"bishop pinned by rook": "4k3/8/8/8/4r3/8/4B3/4K3 w - - 0 1",
		"king in check":         "rnb1kbnr/pppp1ppp/8/4p3/7q/2N2P2/PPPPP1PP/R1BQKBNR w KQkq - 1 3",
		"mid-game tangle":       "r1bqk2r/pppp1ppp/2n2n2/2b1p3/2B1P3/2N2N2/PPPP1PPP/R1BQK2R w KQkq - 6 5",
	}

	for name, fen := range positions {
		t.Run(name, func(t *testing.T) {
			// Given: the position
			game := mustGame(t, fen)
			mover := game.Turn

			// When: simulating every accepted move
			moves := game.LegalMoves()

			// Then: none of them leaves the mover's own king attacked
			for _, move := range moves {
				scratch := game.clone()
				scratch.applyUnchecked(move)
				assert.False(t, scratch.InCheck(mover), "move %s leaves own king in check", move)
			}
		})
	}
}

func TestGame_LegalMoves_PinnedPieceCannotMove(t *testing.T) {
	// Given: a white bishop on e2 pinned against its king by a rook on e4
	game := mustGame(t, "4k3/8/8/8/4r3/8/4B3/4K3 w - - 0 1")

	// When: enumerating legal moves
	moves := game.LegalMoves()

	// Then: the pinned bishop has none
	for _, move := range moves {
		assert.NotEqual(t, mustSquare(t, "e2"), move.From, "pinned bishop escaped with %s", move)
	}
}

func TestGame_Castling(t *testing.T) {
	t.Run("kingside castle is generated when rights and squares allow", func(t *testing.T) {
		// Given: white with a clear kingside and intact rights
		game := mustGame(t, "rnbqk2r/pppp1ppp/5n2/2b1p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 4")

		// When: enumerating legal moves
		moves := game.LegalMoves()

		// Then: e1g1 with the castle tag is among them
		assert.Contains(t, moves, Move{From: mustSquare(t, "e1"), To: mustSquare(t, "g1"), Tag: TagCastleKingside})
	})

	t.Run("no castle without the right", func(t *testing.T) {
		// Given: the same position with the kingside right stripped
		game := mustGame(t, "rnbqk2r/pppp1ppp/5n2/2b1p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w Qkq - 4 4")

		// When: enumerating legal moves
		moves := game.LegalMoves()

		// Then: e1g1 is absent
		assert.NotContains(t, moves, Move{From: mustSquare(t, "e1"), To: mustSquare(t, "g1"), Tag: TagCastleKingside})
	})

	t.Run("no castle through an attacked square", func(t *testing.T) {
		// Given: a black rook covering f1, the square the king passes through
		game := mustGame(t, "4k3/8/8/8/5r2/8/8/4K2R w K - 0 1")

		// When: enumerating legal moves
		moves := game.LegalMoves()

		// Then: castling is not offered
		assert.NotContains(t, moves, Move{From: mustSquare(t, "e1"), To: mustSquare(t, "g1"), Tag: TagCastleKingside})
	})

	t.Run("no castle while in check", func(t *testing.T) {
		// Given: the white king in check from a rook on e4
		game := mustGame(t, "4k3/8/8/8/4r3/8/8/4K2R w K - 0 1")

		// When: enumerating legal moves
		moves := game.LegalMoves()

		// Then: castling is not offered
		assert.NotContains(t, moves, Move{From: mustSquare(t, "e1"), To: mustSquare(t, "g1"), Tag: TagCastleKingside})
	})

	t.Run("black queenside castle", func(t *testing.T) {
		// Given: black with a clear queenside and the queenside right
		game := mustGame(t, "r3k3/8/8/8/8/8/8/4K3 b q - 0 1")

		// When: enumerating legal moves
		moves := game.LegalMoves()

		// Then: e8c8 with the castle tag is among them
		assert.Contains(t, moves, Move{From: mustSquare(t, "e8"), To: mustSquare(t, "c8"), Tag: TagCastleQueenside})
	})
}

func TestGame_EnPassant(t *testing.T) {
	t.Run("available immediately after the double advance", func(t *testing.T) {
		// Given: a game where black just advanced d7d5 past white's e5 pawn
		game := NewGame()
		for _, move := range []string{"e2e4", "a7a6", "e4e5", "d7d5"} {
			applyByName(t, game, move)
		}

		// When: resolving the diagonal pawn capture onto the bypassed square
		move, ok := game.FindMove(mustSquare(t, "e5"), mustSquare(t, "d6"), NoPiece)

		// Then: it resolves to an en passant capture
		require.True(t, ok)
		assert.Equal(t, TagEnPassant, move.Tag)
	})

	t.Run("expires after any other move", func(t *testing.T) {
		// Given: the same position, but white plays something else first
		game := NewGame()
		for _, move := range []string{"e2e4", "a7a6", "e4e5", "d7d5", "b1c3", "a6a5"} {
			applyByName(t, game, move)
		}

		// When: attempting the en passant capture one move too late
		_, ok := game.FindMove(mustSquare(t, "e5"), mustSquare(t, "d6"), NoPiece)

		// Then: the capture is gone along with the target square
		assert.False(t, ok)
		assert.Equal(t, SquareNone, game.EnPassant)
	})

	t.Run("capture removes the bypassed pawn", func(t *testing.T) {
		// Given: the en passant capture is made
		game := NewGame()
		for _, move := range []string{"e2e4", "a7a6", "e4e5", "d7d5", "e5d6"} {
			applyByName(t, game, move)
		}

		// Then: the black d-pawn is off the board, the capturer sits on d6
		assert.True(t, game.Board.At(mustSquare(t, "d5")).IsEmpty())
		assert.Equal(t, Piece{Type: Pawn, Color: White}, game.Board.At(mustSquare(t, "d6")))
	})
}

func TestGame_Promotion(t *testing.T) {
	// Given: a white pawn one step from the last rank
	game := mustGame(t, "8/P6k/8/8/8/8/8/K7 w - - 0 1")

	// When: enumerating legal moves from a7
	var promotions []PieceType
	for _, move := range game.LegalMoves() {
		if move.From == mustSquare(t, "a7") {
			promotions = append(promotions, move.Promotion)
		}
	}

	// Then: exactly the four promotion pieces are offered
	assert.ElementsMatch(t, []PieceType{Queen, Rook, Bishop, Knight}, promotions)

	// And: pushing to the last rank without choosing a piece is illegal
	assert.False(t, game.IsLegal(Move{From: mustSquare(t, "a7"), To: mustSquare(t, "a8")}))
}

func TestGame_IsLegal_MalformedInput(t *testing.T) {
	game := NewGame()

	t.Run("out-of-range squares read as illegal", func(t *testing.T) {
		assert.False(t, game.IsLegal(Move{From: Square(99), To: Square(3)}))
		assert.False(t, game.IsLegal(Move{From: Square(3), To: SquareNone}))
	})

	t.Run("empty source square reads as illegal", func(t *testing.T) {
		assert.False(t, game.IsLegal(Move{From: mustSquare(t, "e4"), To: mustSquare(t, "e5")}))
	})

	t.Run("moving the opponent's piece reads as illegal", func(t *testing.T) {
		assert.False(t, game.IsLegal(Move{From: mustSquare(t, "e7"), To: mustSquare(t, "e5")}))
	})
}
