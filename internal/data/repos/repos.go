package repos

import (
	"gorm.io/gorm"

	"github.com/bookforge/bookforge-backend/internal/data/repos/ailog"
	"github.com/bookforge/bookforge-backend/internal/data/repos/billing"
	"github.com/bookforge/bookforge-backend/internal/data/repos/submission"
	"github.com/bookforge/bookforge-backend/internal/data/repos/user"
	"github.com/bookforge/bookforge-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type SubmissionRepo = submission.SubmissionRepo
type BillingRepo = billing.BillingRepo
type AICallLogRepo = ailog.AICallLogRepo

// Repos bundles every repository for wiring.
type Repos struct {
	User       UserRepo
	Submission SubmissionRepo
	Billing    BillingRepo
	AICallLog  AICallLogRepo
}

func New(db *gorm.DB, log *logger.Logger) *Repos {
	return &Repos{
		User:       user.NewUserRepo(db, log),
		Submission: submission.NewSubmissionRepo(db, log),
		Billing:    billing.NewBillingRepo(db, log),
		AICallLog:  ailog.NewAICallLogRepo(db, log),
	}
}
