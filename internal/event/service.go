package event

import (
	"context"
	"log"

	"arcfeed/internal/saved"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	OpSaved   = "saved"
	OpRemoved = "removed"
)

// SavedChange is one insert, update or delete on the saved collection.
type SavedChange struct {
	Op      string
	Title   string
	Article *saved.Article
}

type Publisher interface {
	PublishSavedChanged(ctx context.Context, change SavedChange) error
}

// changeEvent is the subset of a change stream document we read.
type changeEvent struct {
	OperationType string `bson:"operationType"`
	DocumentKey   struct {
		ID string `bson:"_id"`
	} `bson:"documentKey"`
	FullDocument *saved.Article `bson:"fullDocument"`
}

// Service relays changes on the saved collection to the message bus.
// Change streams need MongoDB running as a replica set.
type Service struct {
	col       *mongo.Collection
	publisher Publisher
	logger    *log.Logger
}

func NewService(col *mongo.Collection, publisher Publisher, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}

	return &Service{
		col:       col,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *Service) Run(ctx context.Context) {
	stream, err := s.col.Watch(ctx, mongo.Pipeline{},
		options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		s.logger.Printf("events: failed to open change stream: %v", err)
		return
	}
	defer stream.Close(context.Background())

	s.logger.Printf("events: watching %s change stream...", s.col.Name())

	for stream.Next(ctx) {
		var ev changeEvent
		if err := stream.Decode(&ev); err != nil {
			s.logger.Printf("events: failed decoding change event: %v", err)
			continue
		}

		change, ok := toSavedChange(ev)
		if !ok {
			s.logger.Printf("events: skip %q event for %q", ev.OperationType, ev.DocumentKey.ID)
			continue
		}

		if err := s.publisher.PublishSavedChanged(ctx, change); err != nil {
			s.logger.Printf("events: failed publishing %s %s: %v", change.Op, change.Title, err)
			continue
		}

		s.logger.Printf("events: published %s %s to message bus", change.Op, change.Title)
	}

	if err := stream.Err(); err != nil && ctx.Err() == nil {
		s.logger.Printf("events: change stream closed with error: %v", err)
	} else {
		s.logger.Println("events: change stream stopped")
	}
}

func toSavedChange(ev changeEvent) (SavedChange, bool) {
	title := ev.DocumentKey.ID
	if title == "" {
		return SavedChange{}, false
	}

	switch ev.OperationType {
	case "insert", "update", "replace":
		// fullDocument is nil when the page was deleted before the lookup ran
		if ev.FullDocument == nil {
			return SavedChange{}, false
		}
		return SavedChange{Op: OpSaved, Title: title, Article: ev.FullDocument}, true
	case "delete":
		return SavedChange{Op: OpRemoved, Title: title}, true
	default:
		return SavedChange{}, false
	}
}
