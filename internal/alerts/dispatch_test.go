package alerts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

func testAlert() *Alert {
	return &Alert{
		HazardType:     HazardAirQuality,
		Severity:       SeveritySevere,
		Title:          "Hazardous Air Quality - AQI 210",
		Description:    "Air quality is VERY HAZARDOUS. Outdoor activity is not recommended.",
		LocationName:   "Guatemala City",
		OccurredAt:     time.Date(2026, 3, 14, 10, 15, 0, 0, time.UTC),
		Details:        map[string]any{"aqi": 210},
		DeliveryStatus: StatusPending,
	}
}

func TestDispatch_Success(t *testing.T) {
	mockRepo := new(MockAlertRepo)
	mockNotifier := new(MockNotifier)
	d := NewDispatcher(mockRepo, mockNotifier, "alerts-guatemala", 5*time.Second)

	id := uuid.New()
	mockRepo.On("Insert", mock.Anything, mock.Anything).Return(id, nil)
	mockNotifier.On("Broadcast", mock.Anything, "alerts-guatemala", mock.Anything).Return("PUSH-42", nil)
	mockRepo.On("UpdateStatus", mock.Anything, id, StatusSent, true, "PUSH-42").Return(nil)

	a := testAlert()
	res, err := d.Dispatch(context.Background(), a)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if res.Status != StatusSent || !res.Delivered {
		t.Errorf("expected sent/delivered, got %s/%v", res.Status, res.Delivered)
	}
	if res.MessageID != "PUSH-42" {
		t.Errorf("expected message id PUSH-42, got %s", res.MessageID)
	}
	if a.PersistedID != id.String() {
		t.Errorf("alert not stamped with persisted id")
	}

	mockRepo.AssertExpectations(t)
	mockNotifier.AssertExpectations(t)
}

// Persistence failure aborts: nothing is pushed.
func TestDispatch_PersistFailure(t *testing.T) {
	mockRepo := new(MockAlertRepo)
	mockNotifier := new(MockNotifier)
	d := NewDispatcher(mockRepo, mockNotifier, "alerts-guatemala", 5*time.Second)

	mockRepo.On("Insert", mock.Anything, mock.Anything).Return(uuid.Nil, errors.New("connection refused"))

	res, err := d.Dispatch(context.Background(), testAlert())
	if err == nil {
		t.Fatal("expected error on persist failure")
	}
	if res != nil {
		t.Errorf("expected nil result, got %+v", res)
	}
	mockNotifier.AssertNotCalled(t, "Broadcast", mock.Anything, mock.Anything, mock.Anything)
}

// Transport failure does not propagate; the row is marked error.
func TestDispatch_TransportFailure(t *testing.T) {
	mockRepo := new(MockAlertRepo)
	mockNotifier := new(MockNotifier)
	d := NewDispatcher(mockRepo, mockNotifier, "alerts-guatemala", 5*time.Second)

	id := uuid.New()
	mockRepo.On("Insert", mock.Anything, mock.Anything).Return(id, nil)
	mockNotifier.On("Broadcast", mock.Anything, "alerts-guatemala", mock.Anything).Return("", context.DeadlineExceeded)
	mockRepo.On("UpdateStatus", mock.Anything, id, StatusError, false, "").Return(nil)

	a := testAlert()
	res, err := d.Dispatch(context.Background(), a)
	if err != nil {
		t.Fatalf("transport failure must not propagate: %v", err)
	}
	if res.Status != StatusError || res.Delivered {
		t.Errorf("expected error/not-delivered, got %s/%v", res.Status, res.Delivered)
	}
	if a.DeliveryStatus != StatusError {
		t.Errorf("alert status not reconciled, got %s", a.DeliveryStatus)
	}
	mockRepo.AssertExpectations(t)
}

// A failed status write is logged but does not change the outcome.
func TestDispatch_StatusWriteFailure(t *testing.T) {
	mockRepo := new(MockAlertRepo)
	mockNotifier := new(MockNotifier)
	d := NewDispatcher(mockRepo, mockNotifier, "alerts-guatemala", 5*time.Second)

	id := uuid.New()
	mockRepo.On("Insert", mock.Anything, mock.Anything).Return(id, nil)
	mockNotifier.On("Broadcast", mock.Anything, "alerts-guatemala", mock.Anything).Return("PUSH-7", nil)
	mockRepo.On("UpdateStatus", mock.Anything, id, StatusSent, true, "PUSH-7").Return(errors.New("deadlock"))

	res, err := d.Dispatch(context.Background(), testAlert())
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if !res.Delivered {
		t.Error("delivery outcome must survive a failed status write")
	}
}

func TestDispatchMulticast(t *testing.T) {
	mockRepo := new(MockAlertRepo)
	mockNotifier := new(MockNotifier)
	d := NewDispatcher(mockRepo, mockNotifier, "alerts-guatemala", 5*time.Second)

	id := uuid.New()
	tokens := []string{"tok-a", "tok-b", "tok-c"}
	mockRepo.On("Insert", mock.Anything, mock.Anything).Return(id, nil)
	mockNotifier.On("Multicast", mock.Anything, tokens, mock.Anything).Return(2, nil)
	mockRepo.On("UpdateStatus", mock.Anything, id, StatusSent, true, "").Return(nil)

	res, sent, err := d.DispatchMulticast(context.Background(), testAlert(), tokens)
	if err != nil {
		t.Fatalf("DispatchMulticast failed: %v", err)
	}
	if sent != 2 {
		t.Errorf("expected 2 sends, got %d", sent)
	}
	if res.Status != StatusSent {
		t.Errorf("expected sent, got %s", res.Status)
	}
	mockRepo.AssertExpectations(t)
}
