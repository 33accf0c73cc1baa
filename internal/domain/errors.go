package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrEmptyText         = errors.New("empty text")
	ErrClosed            = errors.New("closed")
	ErrQueueFull         = errors.New("speech queue full")
	ErrAlreadyRegistered = errors.New("already registered")
	ErrUnsupported       = errors.New("not supported on this platform")
	ErrEngineUnavailable = errors.New("speech engine unavailable")
	ErrNoElement         = errors.New("no element at point")
)
