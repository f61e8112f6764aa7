package sync

import (
	"context"
	"encoding/json"
	"time"

	"cloud.google.com/go/pubsub"
)

// timeNow is swapped in tests.
var timeNow = time.Now

// PubSubPublisher broadcasts confirmed intents to a Pub/Sub topic so other
// backends (analytics, exports) can consume the mutation stream.
type PubSubPublisher struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

func NewPubSubPublisher(ctx context.Context, projectID, topicID string) (*PubSubPublisher, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return &PubSubPublisher{
		client: client,
		topic:  client.Topic(topicID),
	}, nil
}

func (p *PubSubPublisher) Publish(intent *Intent) error {
	data, err := json.Marshal(intent)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"op":      intent.Op,
			"user_id": intent.UserID,
		},
	})
	_, err = result.Get(ctx)
	return err
}

func (p *PubSubPublisher) Close() error {
	p.topic.Stop()
	return p.client.Close()
}
