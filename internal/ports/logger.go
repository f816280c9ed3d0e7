package ports

import "github.com/bft-labs/fixship/pkg/log"

// Logger is the structured logging port. It aliases pkg/log so the
// application layer can log without importing the logging package directly.
type Logger = log.Logger

// Field is a structured log field.
type Field = log.Field

// Field constructors re-exported for the application layer.
var (
	String   = log.String
	Int      = log.Int
	Int64    = log.Int64
	Uint64   = log.Uint64
	Bool     = log.Bool
	Duration = log.Duration
	Err      = log.Err
	Any      = log.Any
)
