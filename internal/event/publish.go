package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"arcfeed/internal/aggregator"
	"arcfeed/internal/feed"
	"arcfeed/internal/saved"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventFeedRefreshed = "feed.refreshed"
	EventSavedChanged  = "saved.changed"
)

// FeedRefreshedMessage summarises a refresh that became the visible home state.
type FeedRefreshedMessage struct {
	Event       string      `json:"event"`
	Timestamp   time.Time   `json:"timestamp"`
	LoadID      uuid.UUID   `json:"loadId"`
	Seq         uint64      `json:"seq"`
	StartedAt   time.Time   `json:"startedAt"`
	CompletedAt time.Time   `json:"completedAt"`
	Error       string      `json:"error,omitempty"`
	Origin      feed.Origin `json:"origin"`
	Featured    string      `json:"featured,omitempty"`
	Picture     string      `json:"picture,omitempty"`
	Random      string      `json:"random,omitempty"`
}

type SavedChangedMessage struct {
	Event     string         `json:"event"`
	ID        uuid.UUID      `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Op        string         `json:"op"`
	Title     string         `json:"title"`
	Article   *saved.Article `json:"article,omitempty"`
}

type PublishingChannel interface {
	PublishWithContext(
		ctx context.Context,
		exchange, key string,
		mandatory, immediate bool,
		msg amqp.Publishing,
	) error
	Close() error
}

type RoutingKeys struct {
	FeedRefreshed string
	SavedChanged  string
}

type RabbitPublisher struct {
	conn     *amqp.Connection
	ch       PublishingChannel
	exchange string
	keys     RoutingKeys
	logger   *log.Logger
	now      func() time.Time
}

func NewRabbitPublisher(uri, exchange string, keys RoutingKeys, logger *log.Logger) (*RabbitPublisher, error) {
	if logger == nil {
		logger = log.Default()
	}
	if keys.FeedRefreshed == "" {
		keys.FeedRefreshed = EventFeedRefreshed
	}
	if keys.SavedChanged == "" {
		keys.SavedChanged = EventSavedChanged
	}

	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq connection failed: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel creation failed: %w", err)
	}

	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("exchange declare failed: %w", err)
	}

	return newRabbitPublisher(conn, ch, exchange, keys, logger), nil
}

func newRabbitPublisher(conn *amqp.Connection, ch PublishingChannel, exchange string, keys RoutingKeys, logger *log.Logger) *RabbitPublisher {
	return &RabbitPublisher{
		conn:     conn,
		ch:       ch,
		exchange: exchange,
		keys:     keys,
		logger:   logger,
		now:      time.Now,
	}
}

func (p *RabbitPublisher) Close() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// PublishFeedRefreshed satisfies aggregator.Notifier.
func (p *RabbitPublisher) PublishFeedRefreshed(ctx context.Context, snap aggregator.Snapshot) error {
	msg := FeedRefreshedMessage{
		Event:       EventFeedRefreshed,
		Timestamp:   p.now().UTC(),
		LoadID:      snap.LoadID,
		Seq:         snap.Seq,
		StartedAt:   snap.StartedAt,
		CompletedAt: snap.CompletedAt,
	}

	if snap.Err != nil {
		msg.Error = snap.Err.Message
	} else {
		home := snap.Home
		msg.Origin = home.Origin
		msg.Random = home.Random.ID
		if home.Bundle.FeaturedArticle != nil {
			msg.Featured = home.Bundle.FeaturedArticle.ID
		}
		if home.Bundle.PictureOfDay != nil {
			msg.Picture = home.Bundle.PictureOfDay.Title
		}
	}

	return p.publish(ctx, p.keys.FeedRefreshed, msg)
}

func (p *RabbitPublisher) PublishSavedChanged(ctx context.Context, change SavedChange) error {
	return p.publish(ctx, p.keys.SavedChanged, SavedChangedMessage{
		Event:     EventSavedChanged,
		ID:        uuid.New(),
		Timestamp: p.now().UTC(),
		Op:        change.Op,
		Title:     change.Title,
		Article:   change.Article,
	})
}

func (p *RabbitPublisher) publish(ctx context.Context, key string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return p.ch.PublishWithContext(
		ctx,
		p.exchange,
		key,
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Timestamp:    p.now().UTC(),
			Body:         body,
		},
	)
}
