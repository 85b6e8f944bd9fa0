package chess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peerchess/tcp-chess/internal/apperror"
)

// applyByName - resolves and applies a long-algebraic move like "e2e4" or
// "e7e8q", failing the test when it is not legal.
func applyByName(t *testing.T, game *Game, name string) {
	t.Helper()

	require.True(t, len(name) == 4 || len(name) == 5, "bad move literal %q", name)

	from := mustSquare(t, name[0:2])
	to := mustSquare(t, name[2:4])
	promotion := NoPiece
	if len(name) == 5 {
		parsed, err := ParsePieceType(name[4:5])
		require.NoError(t, err)
		promotion = parsed
	}

	move, ok := game.FindMove(from, to, promotion)
	require.True(t, ok, "move %s is not legal in %s", name, game.FEN())
	require.NoError(t, game.Apply(move))
}

func TestGame_Clocks(t *testing.T) {
	// Given: a fresh game
	game := NewGame()
	require.Equal(t, 0, game.HalfmoveClock)
	require.Equal(t, 1, game.FullmoveNumber)

	// When: white plays a quiet knight move
	applyByName(t, game, "g1f3")

	// Then: the halfmove clock ticks, the fullmove counter waits for black
	assert.Equal(t, 1, game.HalfmoveClock)
	assert.Equal(t, 1, game.FullmoveNumber)

	// When: black replies with a quiet knight move
	applyByName(t, game, "g8f6")

	// Then: the fullmove counter increments exactly once per black move
	assert.Equal(t, 2, game.HalfmoveClock)
	assert.Equal(t, 2, game.FullmoveNumber)

	// When: white plays a pawn move
	applyByName(t, game, "e2e4")

	// Then: the halfmove clock resets
	assert.Equal(t, 0, game.HalfmoveClock)
	assert.Equal(t, 2, game.FullmoveNumber)

	// When: black captures the pawn
	applyByName(t, game, "f6e4")

	// Then: the clock resets again and the fullmove counter advances
	assert.Equal(t, 0, game.HalfmoveClock)
	assert.Equal(t, 3, game.FullmoveNumber)
}

func TestGame_FoolsMate(t *testing.T) {
	// Given: the fool's mate sequence 1.f3 e5 2.g4 Qh4#
	game := NewGame()
	for _, move := range []string{"f2f3", "e7e5", "g2g4", "d8h4"} {
		applyByName(t, game, move)
	}

	// Then: white is checkmated with zero legal moves remaining
	assert.Equal(t, StatusCheckmate, game.Status())
	assert.Empty(t, game.LegalMoves())
	assert.True(t, game.InCheck(White))

	winner, decided := game.Winner()
	require.True(t, decided)
	assert.Equal(t, Black, winner)
}

func TestGame_Stalemate(t *testing.T) {
	// Given: black to move with no legal move and not in check
	game := mustGame(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")

	// Then: the position reads as stalemate, not checkmate
	assert.Equal(t, StatusStalemate, game.Status())
	assert.Empty(t, game.LegalMoves())
	assert.False(t, game.InCheck(Black))

	_, decided := game.Winner()
	assert.False(t, decided)
}

func TestGame_Apply_RejectsWithoutStateChange(t *testing.T) {
	cases := map[string]Move{
		"wrong side's piece":   {From: 52, To: 36}, // e7e5 as white
		"empty source square":  {From: 28, To: 36},
		"out-of-range square":  {From: 99, To: 3},
		"geometrically absurd": {From: 0, To: 63}, // a1 rook to h8
	}

	for name, move := range cases {
		t.Run(name, func(t *testing.T) {
			// Given: a fresh game
			game := NewGame()
			before := game.FEN()

			// When: applying the bad move
			err := game.Apply(move)

			// Then: it is rejected and the state is untouched
			require.ErrorIs(t, err, apperror.ErrIllegalMove)
			assert.Equal(t, before, game.FEN())
			assert.Empty(t, game.History)
		})
	}
}

func TestGame_Apply_CastleMovesTheRook(t *testing.T) {
	// Given: white castles kingside
	game := mustGame(t, "rnbqk2r/pppp1ppp/5n2/2b1p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 4")
	applyByName(t, game, "e1g1")

	// Then: king and rook both moved and white's rights are gone
	assert.Equal(t, Piece{Type: King, Color: White}, game.Board.At(mustSquare(t, "g1")))
	assert.Equal(t, Piece{Type: Rook, Color: White}, game.Board.At(mustSquare(t, "f1")))
	assert.True(t, game.Board.At(mustSquare(t, "e1")).IsEmpty())
	assert.True(t, game.Board.At(mustSquare(t, "h1")).IsEmpty())
	assert.False(t, game.Castling.WhiteKingside)
	assert.False(t, game.Castling.WhiteQueenside)
}

func TestGame_CastlingRights(t *testing.T) {
	t.Run("king move clears both rights", func(t *testing.T) {
		// Given: a position where the white king can step forward
		game := mustGame(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")

		// When: the king moves and comes back
		applyByName(t, game, "e1e2")

		// Then: white's rights are gone for the rest of the game
		assert.False(t, game.Castling.WhiteKingside)
		assert.False(t, game.Castling.WhiteQueenside)
		assert.True(t, game.Castling.BlackKingside)
		assert.True(t, game.Castling.BlackQueenside)
	})

	t.Run("rook move clears its side's right", func(t *testing.T) {
		game := mustGame(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")

		applyByName(t, game, "a1a2")

		assert.False(t, game.Castling.WhiteQueenside)
		assert.True(t, game.Castling.WhiteKingside)
	})

	t.Run("capturing the rook's home square clears the right", func(t *testing.T) {
		// Given: a white rook able to take the rook on h8
		game := mustGame(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
		applyByName(t, game, "h1h8")

		// Then: black can no longer castle kingside
		assert.False(t, game.Castling.BlackKingside)
		assert.True(t, game.Castling.BlackQueenside)
	})
}

func TestGame_Apply_Promotion(t *testing.T) {
	for _, promo := range []PieceType{Queen, Rook, Bishop, Knight} {
		t.Run("promotes to "+promo.String(), func(t *testing.T) {
			// Given: a white pawn on the seventh rank
			game := mustGame(t, "8/P6k/8/8/8/8/8/K7 w - - 0 1")

			// When: it promotes
			applyByName(t, game, "a7a8"+promo.String())

			// Then: the pawn is replaced wholesale by the chosen piece
			assert.Equal(t, Piece{Type: promo, Color: White}, game.Board.At(mustSquare(t, "a8")))
			assert.True(t, game.Board.At(mustSquare(t, "a7")).IsEmpty())
		})
	}
}

func TestBoard_KingSquare(t *testing.T) {
	// Given: the initial board
	board := StartingBoard()

	// Then: both kings are found on their home squares
	assert.Equal(t, mustSquare(t, "e1"), board.KingSquare(White))
	assert.Equal(t, mustSquare(t, "e8"), board.KingSquare(Black))
}
