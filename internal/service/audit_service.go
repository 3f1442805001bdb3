package service

import (
	"context"
	"encoding/json"
	"log"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"cicd-analytics-be/internal/dto"
)

// AuditCollectionName stores the immutable per-request query records.
const AuditCollectionName = "queryAudit"

type IAuditService interface {
	Consume(ctx context.Context) error
}

// auditService drains query-answered events off the in-process bus and
// persists them, keeping the request path free of the extra write.
type auditService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	collection *mongo.Collection
}

func NewAuditService(pubSub *gochannel.GoChannel, topicName string, db *mongo.Database) IAuditService {
	return &auditService{
		pubSub:     pubSub,
		topicName:  topicName,
		collection: db.Collection(AuditCollectionName),
	}
}

func (as *auditService) Consume(ctx context.Context) error {
	messages, err := as.pubSub.Subscribe(ctx, as.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			as.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (as *auditService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.QueryAnsweredMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal audit event: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	record := bson.M{
		"query":        payload.Query,
		"session_id":   payload.SessionID,
		"pipeline":     payload.Pipeline,
		"result_count": payload.ResultCount,
		"duration_ms":  payload.DurationMS,
		"timestamp":    payload.Timestamp,
	}

	if _, err := as.collection.InsertOne(ctx, record); err != nil {
		log.Printf("[ERROR] Failed to persist audit record: %v", err)
		msg.Nack() // Nack for retriable errors
		return
	}

	msg.Ack()
}
