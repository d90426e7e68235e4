package submission

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bookforge/bookforge-backend/internal/domain"
	"github.com/bookforge/bookforge-backend/internal/platform/logger"
)

type SubmissionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, sub *domain.FormSubmission) (*domain.FormSubmission, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.FormSubmission, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*domain.FormSubmission, error)
	ListAllWithEmail(ctx context.Context, tx *gorm.DB) ([]*domain.SubmissionWithEmail, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status domain.SubmissionStatus) error
}

type submissionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubmissionRepo(db *gorm.DB, baseLog *logger.Logger) SubmissionRepo {
	return &submissionRepo{db: db, log: baseLog.With("repo", "SubmissionRepo")}
}

func (sr *submissionRepo) Create(ctx context.Context, tx *gorm.DB, sub *domain.FormSubmission) (*domain.FormSubmission, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	if sub.Status == "" {
		sub.Status = domain.SubmissionPending
	}

	if err := transaction.WithContext(ctx).Create(sub).Error; err != nil {
		return nil, err
	}
	return sub, nil
}

func (sr *submissionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.FormSubmission, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var result domain.FormSubmission
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (sr *submissionRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*domain.FormSubmission, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var results []*domain.FormSubmission
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListAllWithEmail returns every submission left-joined with the owning
// user's account email. Orphaned rows come back with a null email.
func (sr *submissionRepo) ListAllWithEmail(ctx context.Context, tx *gorm.DB) ([]*domain.SubmissionWithEmail, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var results []*domain.SubmissionWithEmail
	if err := transaction.WithContext(ctx).
		Model(&domain.FormSubmission{}).
		Select("form_submissions.*, users.email AS user_email").
		Joins("LEFT JOIN users ON users.id = form_submissions.user_id").
		Order("form_submissions.created_at DESC").
		Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *submissionRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status domain.SubmissionStatus) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	if !status.Valid() {
		return fmt.Errorf("invalid submission status %q", status)
	}

	res := transaction.WithContext(ctx).
		Model(&domain.FormSubmission{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     status,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
