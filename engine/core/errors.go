package core

import (
	"errors"
)

var (
	ErrDuplicateProperty      = errors.New("property already defined")
	ErrUnknownProperty        = errors.New("unknown property")
	ErrPropertyKind           = errors.New("property kind mismatch")
	ErrShaderCompilation      = errors.New("shader program generation failed")
	ErrUnknownProgramFamily   = errors.New("unknown program family")
	ErrDuplicateProgramFamily = errors.New("program family already registered")
	ErrInvalidRenderTarget    = errors.New("invalid render target")
	ErrUnknownMaterial        = errors.New("unknown material")
	ErrUnknownTexture         = errors.New("unknown texture")
	ErrUnknownCamera          = errors.New("unknown camera")
	ErrQueueFull              = errors.New("queue is full")
	ErrQueueEmpty             = errors.New("queue is empty")
	ErrUnknown                = errors.New("unknown")
)
