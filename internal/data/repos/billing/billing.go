package billing

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bookforge/bookforge-backend/internal/domain"
	"github.com/bookforge/bookforge-backend/internal/platform/logger"
)

// BillingRepo mirrors the payment platform's records. Upserts keyed on the
// provider IDs so webhook replays are idempotent.
type BillingRepo interface {
	UpsertCustomer(ctx context.Context, tx *gorm.DB, customer *domain.BillingCustomer) (*domain.BillingCustomer, error)
	UpsertSubscription(ctx context.Context, tx *gorm.DB, sub *domain.BillingSubscription) (*domain.BillingSubscription, error)
	UpsertOrder(ctx context.Context, tx *gorm.DB, order *domain.BillingOrder) (*domain.BillingOrder, error)
	GetCustomerByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*domain.BillingCustomer, error)
	ListSubscriptionsByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*domain.BillingSubscription, error)
	ListOrdersByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*domain.BillingOrder, error)
}

type billingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBillingRepo(db *gorm.DB, baseLog *logger.Logger) BillingRepo {
	return &billingRepo{db: db, log: baseLog.With("repo", "BillingRepo")}
}

func (br *billingRepo) UpsertCustomer(ctx context.Context, tx *gorm.DB, customer *domain.BillingCustomer) (*domain.BillingCustomer, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}

	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider_customer_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "updated_at"}),
		}).
		Create(customer).Error; err != nil {
		return nil, err
	}

	// On a replay the insert conflicts away, so read back the stored row;
	// callers attach subscriptions and orders to its ID.
	var stored domain.BillingCustomer
	if err := transaction.WithContext(ctx).
		Where("provider_customer_id = ?", customer.ProviderCustomerID).
		First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (br *billingRepo) UpsertSubscription(ctx context.Context, tx *gorm.DB, sub *domain.BillingSubscription) (*domain.BillingSubscription, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}

	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider_subscription_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"price_id", "status", "current_period_end", "metadata", "updated_at"}),
		}).
		Create(sub).Error; err != nil {
		return nil, err
	}
	return sub, nil
}

func (br *billingRepo) UpsertOrder(ctx context.Context, tx *gorm.DB, order *domain.BillingOrder) (*domain.BillingOrder, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}

	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider_order_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"amount_cents", "currency", "status", "updated_at"}),
		}).
		Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (br *billingRepo) GetCustomerByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*domain.BillingCustomer, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}

	var result domain.BillingCustomer
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (br *billingRepo) ListSubscriptionsByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*domain.BillingSubscription, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}

	var results []*domain.BillingSubscription
	if err := transaction.WithContext(ctx).
		Joins("JOIN billing_customers ON billing_customers.id = billing_subscriptions.customer_id").
		Where("billing_customers.user_id = ?", userID).
		Order("billing_subscriptions.created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (br *billingRepo) ListOrdersByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*domain.BillingOrder, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}

	var results []*domain.BillingOrder
	if err := transaction.WithContext(ctx).
		Joins("JOIN billing_customers ON billing_customers.id = billing_orders.customer_id").
		Where("billing_customers.user_id = ?", userID).
		Order("billing_orders.created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
