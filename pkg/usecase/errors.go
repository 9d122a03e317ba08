package usecase

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for use case layer
var (
	ErrInvalidConfig = goerr.New("invalid refactor configuration")
)

// Context keys for error values
const (
	FileKey  = "file"
	DirKey   = "dir"
	StateKey = "state"
)
