package ailog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bookforge/bookforge-backend/internal/domain"
	"github.com/bookforge/bookforge-backend/internal/platform/logger"
)

type AICallLogRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entry *domain.AICallLog) (*domain.AICallLog, error)
	ListRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*domain.AICallLog, error)
}

type aiCallLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAICallLogRepo(db *gorm.DB, baseLog *logger.Logger) AICallLogRepo {
	return &aiCallLogRepo{db: db, log: baseLog.With("repo", "AICallLogRepo")}
}

func (ar *aiCallLogRepo) Create(ctx context.Context, tx *gorm.DB, entry *domain.AICallLog) (*domain.AICallLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (ar *aiCallLogRepo) ListRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*domain.AICallLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	if limit <= 0 {
		limit = 100
	}
	var results []*domain.AICallLog
	if err := transaction.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// Recorder adapts the repo to the generation services' best-effort call
// recording. Insert failures are logged and dropped.
type Recorder struct {
	repo  AICallLogRepo
	model string
	log   *logger.Logger
}

func NewRecorder(repo AICallLogRepo, model string, baseLog *logger.Logger) *Recorder {
	return &Recorder{repo: repo, model: model, log: baseLog.With("component", "AICallRecorder")}
}

func (r *Recorder) Record(ctx context.Context, provider, operation, status string, latency time.Duration, errMsg string) {
	entry := &domain.AICallLog{
		Provider:     provider,
		Operation:    operation,
		Model:        r.model,
		Status:       status,
		LatencyMS:    latency.Milliseconds(),
		ErrorMessage: errMsg,
	}
	if _, err := r.repo.Create(ctx, nil, entry); err != nil {
		r.log.Warn("Failed to record AI call (ignored)", "provider", provider, "operation", operation, "error", err)
	}
}
