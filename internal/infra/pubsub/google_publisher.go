package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"credcore/internal/domain/service"

	"cloud.google.com/go/pubsub/v2"
	pubsubpb "cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"github.com/pkg/errors"
)

// googlePubSubPublisher implements EventPublisher using Google Cloud Pub/Sub
type googlePubSubPublisher struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	logger    *slog.Logger
}

// NewGooglePubSubPublisher connects to projectID and publishes account events
// to topicID. The topic must already exist; credcore never creates it.
func NewGooglePubSubPublisher(ctx context.Context, projectID, topicID string, logger *slog.Logger) (service.EventPublisher, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create pubsub client for project %s", projectID)
	}

	topic := accountEventsTopic(projectID, topicID)
	if err := ensureTopic(ctx, client, topic); err != nil {
		client.Close()

		return nil, err
	}

	logger.Info("Account events will be published to Google Pub/Sub", slog.String("topic", topic))

	return &googlePubSubPublisher{
		client:    client,
		publisher: client.Publisher(topic),
		logger:    logger,
	}, nil
}

// accountEventsTopic returns the fully qualified topic name.
func accountEventsTopic(projectID, topicID string) string {
	return fmt.Sprintf("projects/%s/topics/%s", projectID, topicID)
}

func ensureTopic(ctx context.Context, client *pubsub.Client, topic string) error {
	if _, err := client.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: topic}); err != nil {
		return errors.Wrapf(err, "account events topic %s is not reachable", topic)
	}

	return nil
}

// PublishAccountRegistered publishes the event and waits for the server ack.
func (p *googlePubSubPublisher) PublishAccountRegistered(ctx context.Context, event *service.AccountRegisteredEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return errors.WithStack(err)
	}

	msg := &pubsub.Message{
		Data:       data,
		Attributes: eventAttributes(event),
	}

	result := p.publisher.Publish(ctx, msg)

	serverID, err := result.Get(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to publish account registered event")
	}

	p.logger.Debug("Account registered event published",
		slog.String("user_id", event.UserID),
		slog.String("server_id", serverID),
	)

	return nil
}

// Close flushes pending messages and releases the client
func (p *googlePubSubPublisher) Close() error {
	if p.publisher != nil {
		p.publisher.Stop()
	}
	if p.client != nil {
		return errors.WithStack(p.client.Close())
	}

	return nil
}
