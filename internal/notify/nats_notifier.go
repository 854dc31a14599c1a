package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/nats-io/nats.go"
)

// Notifier is the push transport contract. Broadcast fans one payload
// out to every subscriber of a topic; Multicast targets a list of
// device tokens and returns how many publishes succeeded.
type Notifier interface {
	Broadcast(ctx context.Context, topic string, p Payload) (string, error)
	Multicast(ctx context.Context, tokens []string, p Payload) (int, error)
}

// JetStreamNotifier publishes push payloads to JetStream subjects. The
// push gateway consumes the stream and relays to the mobile platforms;
// the PubAck sequence doubles as our delivery message id.
type JetStreamNotifier struct {
	js            nats.JetStreamContext
	subjectPrefix string
}

func NewJetStreamNotifier(js nats.JetStreamContext, subjectPrefix string) *JetStreamNotifier {
	return &JetStreamNotifier{
		js:            js,
		subjectPrefix: subjectPrefix,
	}
}

func (n *JetStreamNotifier) Broadcast(ctx context.Context, topic string, p Payload) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	subject := fmt.Sprintf("%s.topic.%s", n.subjectPrefix, topic)
	ack, err := n.js.Publish(subject, data, nats.Context(ctx))
	if err != nil {
		return "", fmt.Errorf("publish to %s: %w", subject, err)
	}
	return fmt.Sprintf("%s-%d", ack.Stream, ack.Sequence), nil
}

// Multicast publishes per-token subjects. A token that fails to publish
// is logged and skipped; the pipeline only needs the success count.
func (n *JetStreamNotifier) Multicast(ctx context.Context, tokens []string, p Payload) (int, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return 0, fmt.Errorf("marshal payload: %w", err)
	}

	sent := 0
	for _, token := range tokens {
		subject := fmt.Sprintf("%s.token.%s", n.subjectPrefix, token)
		if _, err := n.js.Publish(subject, data, nats.Context(ctx)); err != nil {
			log.Printf("notify: multicast publish failed for token %s: %v", token, err)
			continue
		}
		sent++
	}
	if sent == 0 && len(tokens) > 0 {
		return 0, fmt.Errorf("multicast: all %d publishes failed", len(tokens))
	}
	return sent, nil
}
