package main

import "errors"

var (
	ErrRoomClosed    = errors.New("room closed")
	ErrRoomFull      = errors.New("room full")
	ErrRoomExists    = errors.New("room already exists")
	ErrNoRoom        = errors.New("no such room")
	ErrBadPassword   = errors.New("wrong room password")
	ErrUnknownMap    = errors.New("unknown map")
	ErrCorruptedData = errors.New("corrupted character data")
	ErrNotElite      = errors.New("elite characters require an elite account")
	ErrInvalidToken  = errors.New("invalid token")
	ErrServerFull    = errors.New("server full")
	ErrTooManyConns  = errors.New("too many connections from this address")
)
