package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Billing mirror tables. Populated by the payments platform's webhook sync;
// this service exposes them read-only through per-user filtered views.

type BillingCustomer struct {
	ID                 uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID             uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	User               *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	ProviderCustomerID string    `gorm:"column:provider_customer_id;uniqueIndex;not null" json:"provider_customer_id"`
	Email              string    `gorm:"column:email" json:"email"`
	CreatedAt          time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt          time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (BillingCustomer) TableName() string { return "billing_customers" }

type BillingSubscription struct {
	ID                     uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CustomerID             uuid.UUID      `gorm:"type:uuid;not null;index" json:"customer_id"`
	Customer               *BillingCustomer `gorm:"constraint:OnDelete:CASCADE;foreignKey:CustomerID;references:ID" json:"customer,omitempty"`
	ProviderSubscriptionID string         `gorm:"column:provider_subscription_id;uniqueIndex;not null" json:"provider_subscription_id"`
	PriceID                string         `gorm:"column:price_id" json:"price_id"`
	Status                 string         `gorm:"column:status;not null" json:"status"`
	CurrentPeriodEnd       *time.Time     `gorm:"column:current_period_end" json:"current_period_end,omitempty"`
	Metadata               datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	CreatedAt              time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt              time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (BillingSubscription) TableName() string { return "billing_subscriptions" }

type BillingOrder struct {
	ID              uuid.UUID        `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CustomerID      uuid.UUID        `gorm:"type:uuid;not null;index" json:"customer_id"`
	Customer        *BillingCustomer `gorm:"constraint:OnDelete:CASCADE;foreignKey:CustomerID;references:ID" json:"customer,omitempty"`
	ProviderOrderID string           `gorm:"column:provider_order_id;uniqueIndex;not null" json:"provider_order_id"`
	AmountCents     int64            `gorm:"column:amount_cents;not null" json:"amount_cents"`
	Currency        string           `gorm:"column:currency;not null;default:'usd'" json:"currency"`
	Status          string           `gorm:"column:status;not null" json:"status"`
	CreatedAt       time.Time        `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time        `gorm:"not null;default:now()" json:"updated_at"`
}

func (BillingOrder) TableName() string { return "billing_orders" }
