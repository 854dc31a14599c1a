package alerts

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/aeroshieldgt/enviro-api/internal/envdata"
)

func hazardSnapshot() *envdata.Snapshot {
	return &envdata.Snapshot{
		Location:   envdata.Location{Name: "Guatemala City", Latitude: 14.6349, Longitude: -90.5069},
		Pollutants: map[string]float64{"PM25": 160, "NO2": 15},
		Earthquakes: []envdata.SeismicEvent{
			{Magnitude: 5.2, Place: "Near Antigua", Latitude: 14.56, Longitude: -90.73},
		},
		Volcanoes: []envdata.VolcanicStatus{
			{Name: "Fuego", Status: "Actividad eruptiva menor", Latitude: 14.47, Longitude: -90.88},
		},
		TakenAt: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	}
}

func newTestPipeline(provider SnapshotProvider, repo *MockAlertRepo, notifier *MockNotifier) *Pipeline {
	d := NewDispatcher(repo, notifier, "alerts-guatemala", 5*time.Second)
	w := NewWindow(1000, time.Hour)
	return NewPipeline(provider, d, w, DefaultThresholds, nil, nil)
}

func TestRunCycle_FullPass(t *testing.T) {
	mockRepo := new(MockAlertRepo)
	mockNotifier := new(MockNotifier)
	provider := &MockSnapshotProvider{SnapshotFunc: func(ctx context.Context) (*envdata.Snapshot, error) {
		return hazardSnapshot(), nil
	}}
	p := newTestPipeline(provider, mockRepo, mockNotifier)

	mockRepo.On("Insert", mock.Anything, mock.Anything).Return(uuid.New(), nil)
	mockNotifier.On("Broadcast", mock.Anything, "alerts-guatemala", mock.Anything).Return("PUSH-1", nil)
	mockRepo.On("UpdateStatus", mock.Anything, mock.Anything, StatusSent, true, "PUSH-1").Return(nil)

	res, err := p.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle failed: %v", err)
	}
	// AQI severe + quake high + volcano high = 3.
	if res.AlertsDetected != 3 {
		t.Errorf("expected 3 detected, got %d", res.AlertsDetected)
	}
	if res.AlertsSent != 3 {
		t.Errorf("expected 3 sent, got %d", res.AlertsSent)
	}
	if res.AlertsSuppressed != 0 || res.AlertsFailed != 0 {
		t.Errorf("unexpected suppressed=%d failed=%d", res.AlertsSuppressed, res.AlertsFailed)
	}
}

func TestRunCycle_SecondCycleSuppressed(t *testing.T) {
	mockRepo := new(MockAlertRepo)
	mockNotifier := new(MockNotifier)
	provider := &MockSnapshotProvider{SnapshotFunc: func(ctx context.Context) (*envdata.Snapshot, error) {
		return hazardSnapshot(), nil
	}}
	p := newTestPipeline(provider, mockRepo, mockNotifier)

	mockRepo.On("Insert", mock.Anything, mock.Anything).Return(uuid.New(), nil)
	mockNotifier.On("Broadcast", mock.Anything, mock.Anything, mock.Anything).Return("PUSH-1", nil)
	mockRepo.On("UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	if _, err := p.RunCycle(context.Background()); err != nil {
		t.Fatalf("first cycle failed: %v", err)
	}

	res, err := p.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("second cycle failed: %v", err)
	}
	if res.AlertsSent != 0 {
		t.Errorf("same-hour repeat must send nothing, sent %d", res.AlertsSent)
	}
	if res.AlertsSuppressed != 3 {
		t.Errorf("expected 3 suppressed, got %d", res.AlertsSuppressed)
	}
}

func TestRunCycle_SnapshotFailure(t *testing.T) {
	provider := &MockSnapshotProvider{SnapshotFunc: func(ctx context.Context) (*envdata.Snapshot, error) {
		return nil, errors.New("all upstreams down")
	}}
	p := newTestPipeline(provider, new(MockAlertRepo), new(MockNotifier))

	if _, err := p.RunCycle(context.Background()); err == nil {
		t.Fatal("snapshot failure must surface as a cycle error")
	}
}

// Persistence failures leave the window unmarked so the alert retries
// on the next cycle instead of being lost.
func TestRunCycle_PersistFailureRetries(t *testing.T) {
	mockRepo := new(MockAlertRepo)
	mockNotifier := new(MockNotifier)
	provider := &MockSnapshotProvider{SnapshotFunc: func(ctx context.Context) (*envdata.Snapshot, error) {
		snap := testSnapshot()
		snap.Volcanoes = []envdata.VolcanicStatus{{Name: "Fuego", Status: "activo"}}
		return snap, nil
	}}
	p := newTestPipeline(provider, mockRepo, mockNotifier)

	mockRepo.On("Insert", mock.Anything, mock.Anything).Return(uuid.Nil, errors.New("db down")).Once()

	res, err := p.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("per-alert persistence failure must not fail the cycle: %v", err)
	}
	if res.AlertsFailed != 1 {
		t.Errorf("expected 1 failed, got %d", res.AlertsFailed)
	}

	// Recovery: same alert goes through next cycle.
	mockRepo.On("Insert", mock.Anything, mock.Anything).Return(uuid.New(), nil)
	mockNotifier.On("Broadcast", mock.Anything, mock.Anything, mock.Anything).Return("PUSH-9", nil)
	mockRepo.On("UpdateStatus", mock.Anything, mock.Anything, StatusSent, true, "PUSH-9").Return(nil)

	res, err = p.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("second cycle failed: %v", err)
	}
	if res.AlertsSent != 1 {
		t.Errorf("expected retry to send, sent=%d suppressed=%d", res.AlertsSent, res.AlertsSuppressed)
	}
}

// A panicking evaluator is confined to its domain.
func TestRunCycle_EvaluatorPanicIsolated(t *testing.T) {
	mockRepo := new(MockAlertRepo)
	mockNotifier := new(MockNotifier)
	provider := &MockSnapshotProvider{SnapshotFunc: func(ctx context.Context) (*envdata.Snapshot, error) {
		snap := testSnapshot()
		snap.Volcanoes = []envdata.VolcanicStatus{{Name: "Pacaya", Status: "activo"}}
		return snap, nil
	}}
	p := newTestPipeline(provider, mockRepo, mockNotifier)
	p.evaluators[0].fn = func(t Thresholds, snap *envdata.Snapshot) []Alert {
		panic("boom")
	}

	mockRepo.On("Insert", mock.Anything, mock.Anything).Return(uuid.New(), nil)
	mockNotifier.On("Broadcast", mock.Anything, mock.Anything, mock.Anything).Return("PUSH-2", nil)
	mockRepo.On("UpdateStatus", mock.Anything, mock.Anything, StatusSent, true, "PUSH-2").Return(nil)

	res, err := p.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("panicking evaluator must not fail the cycle: %v", err)
	}
	if res.AlertsSent != 1 {
		t.Errorf("other domains must still dispatch, sent=%d", res.AlertsSent)
	}
}

func TestRunCycle_Serialized(t *testing.T) {
	var active, maxActive int
	var mu sync.Mutex

	provider := &MockSnapshotProvider{SnapshotFunc: func(ctx context.Context) (*envdata.Snapshot, error) {
		mu.Lock()
		active++
		if active > maxActive {
			maxActive = active
		}
		mu.Unlock()
		time.Sleep(10 * time.Millisecond)
		mu.Lock()
		active--
		mu.Unlock()
		return testSnapshot(), nil
	}}
	p := newTestPipeline(provider, new(MockAlertRepo), new(MockNotifier))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = p.RunCycle(context.Background())
		}()
	}
	wg.Wait()

	if maxActive != 1 {
		t.Errorf("cycles overlapped: max concurrent = %d", maxActive)
	}
}
