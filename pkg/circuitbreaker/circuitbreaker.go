package circuitbreaker

import (
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
)

type Config struct {
	Name string
	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration
	// HalfOpenRequests may pass while probing.
	HalfOpenRequests uint32
	// IsFailure decides which errors count against the upstream. Nil counts all.
	IsFailure func(err error) bool
	Logger    *slog.Logger
}

func DefaultConfig(name string) Config {
	return Config{
		Name:                name,
		ConsecutiveFailures: 5,
		OpenTimeout:         30 * time.Second,
		HalfOpenRequests:    1,
	}
}

// New builds a breaker that trips after cfg.ConsecutiveFailures failures in a row.
func New[T any](cfg Config) *gobreaker.CircuitBreaker[T] {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	threshold := cfg.ConsecutiveFailures
	if threshold == 0 {
		threshold = 5
	}

	st := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.HalfOpenRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	}
	if cfg.IsFailure != nil {
		isFailure := cfg.IsFailure
		st.IsSuccessful = func(err error) bool {
			return err == nil || !isFailure(err)
		}
	}
	return gobreaker.NewCircuitBreaker[T](st)
}

// IsOpen reports whether err means the call was rejected without reaching the upstream.
func IsOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
