package apperror

import "errors"

var (
	ErrIllegalMove      = errors.New("illegal move")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrGameFinished     = errors.New("game is already finished")
	ErrGameNotStarted   = errors.New("game is not started")
	ErrProtocolFault    = errors.New("peer violated the session protocol")
	ErrConnectionLost   = errors.New("connection to peer lost")
	ErrMalformedMessage = errors.New("malformed message")
	ErrRematchNotReady  = errors.New("previous game has not ended on both sides")
	ErrNotHost          = errors.New("only the host can start a new game")
)
