package alerts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/aeroshieldgt/enviro-api/internal/data"
	"github.com/aeroshieldgt/enviro-api/internal/envdata"
	"github.com/aeroshieldgt/enviro-api/internal/notify"
)

// MockAlertRepo
type MockAlertRepo struct {
	mock.Mock
}

func (m *MockAlertRepo) Insert(ctx context.Context, rec *data.AlertRecord) (uuid.UUID, error) {
	args := m.Called(ctx, rec)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockAlertRepo) ListRecent(ctx context.Context, limit int, hazardType string) ([]*data.AlertRecord, error) {
	args := m.Called(ctx, limit, hazardType)
	if recs, ok := args.Get(0).([]*data.AlertRecord); ok {
		return recs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAlertRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string, delivered bool, messageID string) error {
	args := m.Called(ctx, id, status, delivered, messageID)
	return args.Error(0)
}

func (m *MockAlertRepo) Stats(ctx context.Context, since time.Time) (*data.AlertStats, error) {
	args := m.Called(ctx, since)
	if s, ok := args.Get(0).(*data.AlertStats); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockNotifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Broadcast(ctx context.Context, topic string, p notify.Payload) (string, error) {
	args := m.Called(ctx, topic, p)
	return args.String(0), args.Error(1)
}

func (m *MockNotifier) Multicast(ctx context.Context, tokens []string, p notify.Payload) (int, error) {
	args := m.Called(ctx, tokens, p)
	return args.Int(0), args.Error(1)
}

// MockSnapshotProvider
type MockSnapshotProvider struct {
	SnapshotFunc func(ctx context.Context) (*envdata.Snapshot, error)
}

func (m *MockSnapshotProvider) Snapshot(ctx context.Context) (*envdata.Snapshot, error) {
	if m.SnapshotFunc != nil {
		return m.SnapshotFunc(ctx)
	}
	return &envdata.Snapshot{}, nil
}
