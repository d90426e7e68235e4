package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bookforge/bookforge-backend/internal/data/repos"
	"github.com/bookforge/bookforge-backend/internal/domain"
	"github.com/bookforge/bookforge-backend/internal/platform/logger"
)

// SubmissionService owns the form-submission lifecycle. Inserting a
// submission fires the notifier asynchronously; a notification failure
// never fails the insert.
type SubmissionService interface {
	Submit(ctx context.Context, sub *domain.FormSubmission) (*domain.FormSubmission, error)
	ListForAdmin(ctx context.Context) ([]*domain.SubmissionWithEmail, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.SubmissionStatus) (*domain.FormSubmission, error)
}

type submissionService struct {
	db             *gorm.DB
	submissionRepo repos.SubmissionRepo
	userRepo       repos.UserRepo
	notify         NotifyService
	log            *logger.Logger
}

func NewSubmissionService(db *gorm.DB, submissionRepo repos.SubmissionRepo, userRepo repos.UserRepo, notify NotifyService, log *logger.Logger) SubmissionService {
	return &submissionService{
		db:             db,
		submissionRepo: submissionRepo,
		userRepo:       userRepo,
		notify:         notify,
		log:            log.With("service", "Submission"),
	}
}

func (ss *submissionService) Submit(ctx context.Context, sub *domain.FormSubmission) (*domain.FormSubmission, error) {
	// Attach the submission to an account when one exists for the email.
	if sub.UserID == nil && sub.Email != "" {
		owner, err := ss.userRepo.GetByEmail(ctx, nil, sub.Email)
		if err == nil {
			sub.UserID = &owner.ID
		} else if err != gorm.ErrRecordNotFound {
			return nil, err
		}
	}

	created, err := ss.submissionRepo.Create(ctx, nil, sub)
	if err != nil {
		return nil, err
	}

	if ss.notify != nil {
		go func(snapshot domain.FormSubmission) {
			nctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()
			results := ss.notify.NotifySubmission(nctx, &snapshot)
			for _, r := range results {
				if !r.Success {
					ss.log.Warn("Submission notification failed (ignored)",
						"submission_id", snapshot.ID, "role", r.Role, "error", r.Error)
				}
			}
		}(*created)
	}
	return created, nil
}

func (ss *submissionService) ListForAdmin(ctx context.Context) ([]*domain.SubmissionWithEmail, error) {
	return ss.submissionRepo.ListAllWithEmail(ctx, nil)
}

func (ss *submissionService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.SubmissionStatus) (*domain.FormSubmission, error) {
	if err := ss.submissionRepo.UpdateStatus(ctx, nil, id, status); err != nil {
		return nil, err
	}
	return ss.submissionRepo.GetByID(ctx, nil, id)
}
