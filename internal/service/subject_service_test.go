package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-api/internal/dto"
	"github.com/noah-isme/attendance-api/internal/models"
	"github.com/noah-isme/attendance-api/internal/repository"
	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
)

type subjectRepoStub struct {
	items   []models.Subject
	deleted []string
}

func (r *subjectRepoStub) List(ctx context.Context, userID string) ([]models.Subject, error) {
	return r.items, nil
}

func (r *subjectRepoStub) FindByID(ctx context.Context, userID, id string) (*models.Subject, error) {
	for i := range r.items {
		if r.items[i].ID == id {
			cp := r.items[i]
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *subjectRepoStub) ExistsByKey(ctx context.Context, userID string, key models.SubjectID) (bool, error) {
	for _, s := range r.items {
		if s.Key() == key {
			return true, nil
		}
	}
	return false, nil
}

func (r *subjectRepoStub) Create(ctx context.Context, subject *models.Subject) error {
	subject.ID = fmt.Sprintf("s%d", len(r.items)+1)
	r.items = append(r.items, *subject)
	return nil
}

func (r *subjectRepoStub) Delete(ctx context.Context, userID string, subject *models.Subject) error {
	r.deleted = append(r.deleted, subject.ID)
	return nil
}

func TestSubjectServiceCreate(t *testing.T) {
	repo := &subjectRepoStub{}
	inv := &invalidationRecorder{}
	svc := NewSubjectService(repo, inv, validator.New(), zap.NewNop())

	subject, err := svc.Create(context.Background(), "u1", dto.CreateSubjectRequest{Code: strPtr(" MA101 "), Name: "Engineering Mathematics", Credits: 1.5})
	require.NoError(t, err)
	assert.Equal(t, models.SubjectID("MA101"), subject.Key())
	assert.Equal(t, "u1", subject.UserID)
	assert.Equal(t, []string{"u1"}, inv.users)

	library, err := svc.Create(context.Background(), "u1", dto.CreateSubjectRequest{Name: "Library", Credits: 0, ZeroCreditType: strPtr("Library")})
	require.NoError(t, err)
	require.NotNil(t, library.ZeroCreditType)
	assert.True(t, library.Informational())
	assert.Equal(t, models.SubjectID("Library"), library.Key())
}

func TestSubjectServiceCreateRejectsInvalidInput(t *testing.T) {
	repo := &subjectRepoStub{}
	svc := NewSubjectService(repo, nil, validator.New(), zap.NewNop())
	ctx := context.Background()

	_, err := svc.Create(ctx, "u1", dto.CreateSubjectRequest{Name: "Physics", Credits: 2.5})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Create(ctx, "u1", dto.CreateSubjectRequest{Name: "Seminar", Credits: 3, ZeroCreditType: strPtr("seminar")})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Create(ctx, "u1", dto.CreateSubjectRequest{Name: "Club", Credits: 0, ZeroCreditType: strPtr("club")})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Create(ctx, "u1", dto.CreateSubjectRequest{Name: "   ", Credits: 3})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Empty(t, repo.items)
}

func TestSubjectServiceCreateDuplicateKey(t *testing.T) {
	repo := &subjectRepoStub{items: []models.Subject{{ID: "s1", Name: "Physics", Credits: 3}}}
	svc := NewSubjectService(repo, nil, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), "u1", dto.CreateSubjectRequest{Name: "Physics", Credits: 4})
	assert.ErrorIs(t, err, appErrors.ErrConflict)
}

func TestSubjectServiceDelete(t *testing.T) {
	repo := &subjectRepoStub{items: []models.Subject{{ID: "s1", Name: "Physics", Credits: 3}}}
	inv := &invalidationRecorder{}
	svc := NewSubjectService(repo, inv, validator.New(), zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), "u1", "s1"))
	assert.Equal(t, []string{"s1"}, repo.deleted)
	assert.Len(t, inv.users, 1)

	assert.ErrorIs(t, svc.Delete(context.Background(), "u1", "missing"), appErrors.ErrNotFound)
}
