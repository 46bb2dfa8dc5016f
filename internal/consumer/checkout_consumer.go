// Package consumer empties a session's cart once its order has been placed.
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fjod/go_restaurant/internal/domain"
	"github.com/fjod/go_restaurant/pkg/logger"
	"github.com/segmentio/kafka-go"
)

const (
	Topic   = "order-placed"
	GroupID = "restaurant-cart"

	minReadBackoff = 500 * time.Millisecond
	maxReadBackoff = 30 * time.Second
)

var ErrInvalidEvent = errors.New("invalid order placed event")

// OrderPlacedEvent is published by the ordering backend after a successful checkout.
type OrderPlacedEvent struct {
	SessionID string `json:"session_id"`
	OrderID   string `json:"order_id,omitempty"`
}

type CartClearer interface {
	Clear(ctx context.Context, sessionID string) (domain.Cart, error)
}

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type Consumer struct {
	carts  CartClearer
	reader MessageReader
	log    *slog.Logger

	minBackoff, maxBackoff time.Duration
}

func NewConsumer(carts CartClearer, log *slog.Logger, brokers ...string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    Topic,
		GroupID:  GroupID,
		MaxBytes: 1e6, // 1MB
	})
	return NewConsumerWithReader(carts, reader, log)
}

func NewConsumerWithReader(carts CartClearer, reader MessageReader, log *slog.Logger) *Consumer {
	return &Consumer{
		carts:  carts,
		reader: reader,
		log:    logger.OrDefault(log).With("component", "order-consumer", "topic", Topic),

		minBackoff: minReadBackoff,
		maxBackoff: maxReadBackoff,
	}
}

// Run reads until ctx is done. Read errors back off exponentially.
func (c *Consumer) Run(ctx context.Context) {
	backoff := c.minBackoff
	for {
		if ctx.Err() != nil {
			return
		}
		if err := c.processMessage(ctx); err == nil {
			backoff = c.minBackoff
			continue
		}

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return
		}
		backoff = min(backoff*2, c.maxBackoff)
	}
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.log.Error("error closing kafka reader", "error", err)
	}
}

// processMessage returns an error only when no message could be read.
func (c *Consumer) processMessage(ctx context.Context) error {
	m, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			c.log.ErrorContext(ctx, "error reading message", "error", err)
		}
		return err
	}

	if err := c.Handle(ctx, m.Value); err != nil {
		c.log.WarnContext(ctx, "skipping message",
			"partition", m.Partition, "offset", m.Offset, "error", err)
	}
	return nil
}

// Handle clears the cart named by one event payload.
func (c *Consumer) Handle(ctx context.Context, payload []byte) error {
	event, err := ParseEvent(payload)
	if err != nil {
		return err
	}

	if _, err := c.carts.Clear(ctx, event.SessionID); err != nil {
		return fmt.Errorf("clear cart for session %s: %w", event.SessionID, err)
	}
	c.log.InfoContext(ctx, "cart cleared after order",
		"session_id", event.SessionID, "order_id", event.OrderID)
	return nil
}

func ParseEvent(payload []byte) (OrderPlacedEvent, error) {
	var event OrderPlacedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return OrderPlacedEvent{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	event.SessionID = strings.TrimSpace(event.SessionID)
	if event.SessionID == "" {
		return OrderPlacedEvent{}, fmt.Errorf("%w: missing session_id", ErrInvalidEvent)
	}
	return event, nil
}
