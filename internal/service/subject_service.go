package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-api/internal/dto"
	"github.com/noah-isme/attendance-api/internal/models"
	"github.com/noah-isme/attendance-api/internal/repository"
	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
)

type subjectRepository interface {
	List(ctx context.Context, userID string) ([]models.Subject, error)
	FindByID(ctx context.Context, userID, id string) (*models.Subject, error)
	ExistsByKey(ctx context.Context, userID string, key models.SubjectID) (bool, error)
	Create(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, userID string, subject *models.Subject) error
}

// SubjectService handles subject domain workflows.
type SubjectService struct {
	repo      subjectRepository
	stats     statsInvalidation
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectService creates a new subject service.
func NewSubjectService(repo subjectRepository, stats statsInvalidation, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if stats == nil {
		stats = noopInvalidation{}
	}
	svc := &SubjectService{repo: repo, stats: stats, validator: validate, logger: logger}
	svc.validator.RegisterValidation("credits", func(fl validator.FieldLevel) bool {
		value := fl.Field().Float()
		for _, allowed := range models.AllowedCredits {
			if value == allowed {
				return true
			}
		}
		return false
	})
	svc.validator.RegisterValidation("zero_credit_type", func(fl validator.FieldLevel) bool {
		return models.ZeroCreditType(strings.ToLower(fl.Field().String())).Valid()
	})
	return svc
}

// List returns the user's subjects.
func (s *SubjectService) List(ctx context.Context, userID string) ([]models.Subject, error) {
	subjects, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	return subjects, nil
}

// Create registers a subject. Two subjects may not share an identifier.
func (s *SubjectService) Create(ctx context.Context, userID string, req dto.CreateSubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}
	subject := &models.Subject{
		UserID:  userID,
		Name:    strings.TrimSpace(req.Name),
		Credits: req.Credits,
	}
	if req.Code != nil && strings.TrimSpace(*req.Code) != "" {
		code := strings.TrimSpace(*req.Code)
		subject.Code = &code
	}
	if req.ZeroCreditType != nil {
		kind := models.ZeroCreditType(strings.ToLower(*req.ZeroCreditType))
		if subject.Credits != 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "zero_credit_type requires credits of 0")
		}
		subject.ZeroCreditType = &kind
	}
	if subject.Name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "name is required")
	}

	exists, err := s.repo.ExistsByKey(ctx, userID, subject.Key())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "subject already exists")
	}
	if err := s.repo.Create(ctx, subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subject")
	}
	s.stats.Invalidate(ctx, userID)
	return subject, nil
}

// Delete removes a subject together with its slots and logs.
func (s *SubjectService) Delete(ctx context.Context, userID, id string) error {
	subject, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	if err := s.repo.Delete(ctx, userID, subject); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete subject")
	}
	s.logger.Info("subject deleted", zap.String("user_id", userID), zap.String("subject_id", string(subject.Key())))
	s.stats.Invalidate(ctx, userID)
	return nil
}
