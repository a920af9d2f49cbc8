package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"cdr.dev/slog/v3/sloggers/slogtest"
	"github.com/google/uuid"

	"pulseboard/internal/analytics"
	"pulseboard/internal/api"
	"pulseboard/internal/config"
	"pulseboard/internal/domain"
	"pulseboard/internal/errors"
)

// call records one invocation of the mock API
type call struct {
	method  string
	args    []string
	report  api.ReportRequest
	imports []api.ImportRecord
}

// mockAPI implements the API interface for testing
type mockAPI struct {
	calls []call

	entry  *domain.TimeEntry
	status *api.TimerStatus
	data   *analytics.TimeData
	err    error
}

var (
	mockUser  = uuid.MustParse("6f1c1b8e-6f63-4f1b-9a57-2c4f4f0b6a11")
	mockCard  = uuid.MustParse("0b7d3f5e-2f43-4c9d-8c1a-7e6f5d4c3b21")
	mockStart = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
)

func newMockAPI() *mockAPI {
	entry := &domain.TimeEntry{
		ID:             7,
		UserID:         mockUser,
		CardID:         mockCard,
		StartTime:      mockStart,
		LastResumeTime: &mockStart,
		TotalDuration:  3725,
		Segments:       []domain.Segment{{StartedAt: mockStart}},
	}
	remaining := 8
	return &mockAPI{
		entry: entry,
		status: &api.TimerStatus{
			Entry:            entry,
			State:            domain.StateActive,
			ElapsedSeconds:   90,
			EffectiveSeconds: 3815,
			AsOf:             mockStart.Add(90 * time.Second),
			ActionsRemaining: &remaining,
		},
		data: &analytics.TimeData{
			Range: analytics.RangeWeek,
			Buckets: []domain.Bucket{
				{Period: "Mon", Time: 1.5, Start: mockStart, End: mockStart.Add(24 * time.Hour)},
				{Period: "Tue", Time: 0.25, Start: mockStart.Add(24 * time.Hour), End: mockStart.Add(48 * time.Hour)},
			},
			TotalEntries:    2,
			TotalTimeHours:  1.75,
			Insights:        []string{"Most time was logged in Mon (1.50 h)"},
			Recommendations: []string{},
		},
	}
}

func (m *mockAPI) record(method string, args ...string) {
	m.calls = append(m.calls, call{method: method, args: args})
}

func (m *mockAPI) lastCall() call {
	if len(m.calls) == 0 {
		return call{}
	}
	return m.calls[len(m.calls)-1]
}

func (m *mockAPI) StartTimer(ctx context.Context, userID, cardID string) (*domain.TimeEntry, error) {
	m.record("StartTimer", userID, cardID)
	if m.err != nil {
		return nil, m.err
	}
	return m.entry, nil
}

func (m *mockAPI) PauseTimer(ctx context.Context, entryID, userID string) (*domain.TimeEntry, error) {
	m.record("PauseTimer", entryID, userID)
	if m.err != nil {
		return nil, m.err
	}
	return m.entry, nil
}

func (m *mockAPI) ResumeTimer(ctx context.Context, entryID, userID string) (*domain.TimeEntry, error) {
	m.record("ResumeTimer", entryID, userID)
	if m.err != nil {
		return nil, m.err
	}
	return m.entry, nil
}

func (m *mockAPI) StopTimer(ctx context.Context, entryID, userID string) (*domain.TimeEntry, error) {
	m.record("StopTimer", entryID, userID)
	if m.err != nil {
		return nil, m.err
	}
	return m.entry, nil
}

func (m *mockAPI) CurrentTimer(ctx context.Context, userID string) (*api.TimerStatus, error) {
	m.record("CurrentTimer", userID)
	if m.err != nil {
		return nil, m.err
	}
	return m.status, nil
}

func (m *mockAPI) GetTimer(ctx context.Context, entryID, userID string) (*api.TimerStatus, error) {
	m.record("GetTimer", entryID, userID)
	if m.err != nil {
		return nil, m.err
	}
	return m.status, nil
}

func (m *mockAPI) GetTimeData(ctx context.Context, req api.ReportRequest) (*analytics.TimeData, error) {
	m.calls = append(m.calls, call{method: "GetTimeData", report: req})
	if m.err != nil {
		return nil, m.err
	}
	return m.data, nil
}

func (m *mockAPI) ImportTimers(ctx context.Context, userID string, records []api.ImportRecord) ([]domain.TimeEntry, error) {
	m.calls = append(m.calls, call{method: "ImportTimers", args: []string{userID}, imports: records})
	if m.err != nil {
		return nil, m.err
	}
	entries := make([]domain.TimeEntry, len(records))
	for i := range records {
		entries[i] = *m.entry
	}
	return entries, nil
}

// setupTestAppWithMockAPI builds an app over the mock that writes to a buffer
func setupTestAppWithMockAPI(t *testing.T, mutate ...func(*config.Config)) (*App, *mockAPI, *bytes.Buffer) {
	t.Helper()
	cfg := config.NewConfig()
	cfg.Application.UserID = mockUser.String()
	for _, m := range mutate {
		m(cfg)
	}
	mock := newMockAPI()
	out := &bytes.Buffer{}
	return NewAppWithOutput(mock, cfg, out, slogtest.Make(t, nil)), mock, out
}

var errNotFound = errors.NewNotFoundError("active time entry", mockUser.String())
