package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/attendance-api/internal/models"
	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
	"github.com/noah-isme/attendance-api/pkg/jobs"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func strPtr(s string) *string { return &s }

// mondaySnapshot has one subject held every Monday from 2024-01-01.
func mondaySnapshot() models.Snapshot {
	return models.Snapshot{
		Subjects: []models.Subject{
			{ID: "s1", Code: strPtr("MA101"), Name: "Engineering Mathematics", Credits: 4},
		},
		Timetable: []models.TimetableSlot{
			{ID: "t1", DayOfWeek: "Monday", Period: 1, SubjectID: "MA101"},
		},
		Semester: models.SemesterConfig{
			StartDate:           day(2024, 1, 1),
			EndDate:             day(2024, 3, 31),
			LastInstructionDate: day(2024, 3, 15),
		},
	}
}

type snapshotRepoStub struct {
	mu       sync.Mutex
	snapshot models.Snapshot
	err      error
	loads    int
}

func (s *snapshotRepoStub) Load(ctx context.Context, userID string) (*models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	if s.err != nil {
		return nil, s.err
	}
	cp := s.snapshot
	return &cp, nil
}

func (s *snapshotRepoStub) set(snapshot models.Snapshot) {
	s.mu.Lock()
	s.snapshot = snapshot
	s.mu.Unlock()
}

type memoryCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: map[string][]byte{}}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	raw, ok := m.items[key]
	m.mu.Unlock()
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.items[key] = raw
	m.mu.Unlock()
	return nil
}

func (m *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.items {
		if strings.HasPrefix(k, prefix) {
			delete(m.items, k)
		}
	}
	return nil
}

func (m *memoryCache) keys(prefix string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for k := range m.items {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out
}

type invalidationRecorder struct {
	users []string
}

func (r *invalidationRecorder) Invalidate(ctx context.Context, userID string) {
	r.users = append(r.users, userID)
}

type queueRecorder struct {
	jobs []jobs.Job
	err  error
}

func (q *queueRecorder) Enqueue(job jobs.Job) (bool, error) {
	if q.err != nil {
		return false, q.err
	}
	q.jobs = append(q.jobs, job)
	return true, nil
}
