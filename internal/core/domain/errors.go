package domain

import "errors"

var (
	ErrConnectionNotFound = errors.New("connection not found")
	ErrRoomNotFound       = errors.New("room not found")
	ErrBroadcasterTaken   = errors.New("room already has a broadcaster")
	ErrInvalidRole        = errors.New("invalid role")
)
