package walk

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/go-playground/validator/v10"
)

// Order selects how directories are delivered to the visit function.
type Order string

const (
	// Sorted delivers directories in the order of a sequential depth-first walk,
	// with entries sorted by name. It is the default.
	Sorted Order = "sorted"
	// Arrival delivers directories as soon as any worker has read them.
	Arrival Order = "arrival"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config controls a walk. The zero Config walks everything in sorted order with
// one worker per CPU.
type Config struct {
	// Order is Sorted or Arrival. Empty means Sorted.
	Order Order `validate:"omitempty,oneof=sorted arrival"`

	// Workers bounds the number of goroutines reading directories. Zero means
	// runtime.GOMAXPROCS(0).
	Workers int `validate:"gte=0"`

	// MaxDepth is the depth of the deepest directory to read, where the root has
	// depth 0. Zero means unlimited.
	MaxDepth int `validate:"gte=0"`

	// Hidden includes entries whose names start with a dot.
	Hidden bool

	// Logger receives diagnostics. Nil means slog.Default().
	Logger *slog.Logger `validate:"-"`
}

// Validate reports the first invalid field of c.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("walk: invalid config: %w", err)
	}
	return nil
}

func (c Config) order() Order {
	if c.Order == "" {
		return Sorted
	}
	return c.Order
}

func (c Config) workers() int {
	if c.Workers == 0 {
		return runtime.GOMAXPROCS(0)
	}
	return c.Workers
}

func (c Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}
