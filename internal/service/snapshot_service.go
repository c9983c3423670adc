package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/attendance-api/internal/models"
	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
)

type snapshotRepository interface {
	Load(ctx context.Context, userID string) (*models.Snapshot, error)
}

// LoadedSnapshot pairs a snapshot with a digest of its content.
type LoadedSnapshot struct {
	UserID   string
	Snapshot models.Snapshot
	Hash     string
}

// SnapshotService reads the calculation inputs of a user.
type SnapshotService struct {
	repo    snapshotRepository
	metrics *MetricsService
	logger  *zap.Logger
}

// NewSnapshotService constructs the service.
func NewSnapshotService(repo snapshotRepository, metrics *MetricsService, logger *zap.Logger) *SnapshotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotService{repo: repo, metrics: metrics, logger: logger}
}

// Load reads the snapshot of userID in one consistent read.
func (s *SnapshotService) Load(ctx context.Context, userID string) (*LoadedSnapshot, error) {
	start := time.Now()
	snapshot, err := s.repo.Load(ctx, userID)
	s.metrics.ObserveDBQuery("snapshot_load", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance data")
	}
	hash, err := SnapshotHash(*snapshot)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash attendance data")
	}
	return &LoadedSnapshot{UserID: userID, Snapshot: *snapshot, Hash: hash}, nil
}

// SnapshotHash returns a hex sha256 digest of the snapshot's JSON encoding.
// Any write that changes an input changes the digest.
func SnapshotHash(snapshot models.Snapshot) (string, error) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:16]), nil
}
