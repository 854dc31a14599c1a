package alerts

import (
	"context"
	"log"
	"time"

	"github.com/aeroshieldgt/enviro-api/internal/data"
	"github.com/aeroshieldgt/enviro-api/internal/notify"
)

// Dispatcher persists an alert, pushes it, then reconciles the stored
// delivery status. Persistence failure aborts the dispatch; transport
// failure does not, it is recorded on the row instead.
type Dispatcher struct {
	repo     data.AlertRepository
	notifier notify.Notifier
	topic    string
	timeout  time.Duration
}

func NewDispatcher(repo data.AlertRepository, notifier notify.Notifier, topic string, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		repo:     repo,
		notifier: notifier,
		topic:    topic,
		timeout:  timeout,
	}
}

// Dispatch runs the full persist/notify/reconcile sequence for one
// alert, mutating it in place. The returned error is non-nil only for
// persistence failures; transport outcomes live in the result.
func (d *Dispatcher) Dispatch(ctx context.Context, a *Alert) (*DispatchResult, error) {
	id, err := d.repo.Insert(ctx, toRecord(a))
	if err != nil {
		log.Printf("dispatch: persist failed for %q: %v", a.Title, err)
		return nil, err
	}
	a.PersistedID = id.String()

	payload := BuildPayload(a)

	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	msgID, sendErr := d.notifier.Broadcast(sendCtx, d.topic, payload)

	status := StatusSent
	delivered := true
	if sendErr != nil {
		log.Printf("dispatch: broadcast failed for alert %s: %v", a.PersistedID, sendErr)
		status = StatusError
		delivered = false
		msgID = ""
	}

	// The alert already happened; a failed status write must not undo
	// the dispatch outcome. Log and move on.
	if err := d.repo.UpdateStatus(ctx, id, status, delivered, msgID); err != nil {
		log.Printf("dispatch: status update failed for alert %s: %v", a.PersistedID, err)
	}

	a.DeliveryStatus = status
	a.Delivered = delivered

	return &DispatchResult{
		Status:      status,
		Delivered:   delivered,
		PersistedID: a.PersistedID,
		MessageID:   msgID,
	}, nil
}

// DispatchMulticast targets specific device tokens instead of the
// broadcast topic. Used by the manual send-test endpoint.
func (d *Dispatcher) DispatchMulticast(ctx context.Context, a *Alert, tokens []string) (*DispatchResult, int, error) {
	id, err := d.repo.Insert(ctx, toRecord(a))
	if err != nil {
		log.Printf("dispatch: persist failed for %q: %v", a.Title, err)
		return nil, 0, err
	}
	a.PersistedID = id.String()

	payload := BuildPayload(a)

	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	sent, sendErr := d.notifier.Multicast(sendCtx, tokens, payload)

	status := StatusSent
	delivered := true
	if sendErr != nil {
		log.Printf("dispatch: multicast failed for alert %s: %v", a.PersistedID, sendErr)
		status = StatusError
		delivered = false
	}

	if err := d.repo.UpdateStatus(ctx, id, status, delivered, ""); err != nil {
		log.Printf("dispatch: status update failed for alert %s: %v", a.PersistedID, err)
	}

	a.DeliveryStatus = status
	a.Delivered = delivered

	return &DispatchResult{
		Status:      status,
		Delivered:   delivered,
		PersistedID: a.PersistedID,
	}, sent, nil
}

func toRecord(a *Alert) *data.AlertRecord {
	return &data.AlertRecord{
		HazardType:     string(a.HazardType),
		Severity:       string(a.Severity),
		Title:          a.Title,
		Description:    a.Description,
		LocationName:   a.LocationName,
		Latitude:       a.Latitude,
		Longitude:      a.Longitude,
		OccurredAt:     a.OccurredAt,
		Details:        a.Details,
		DeliveryStatus: StatusPending,
		Delivered:      false,
	}
}
