package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bookforge/bookforge-backend/internal/data/repos"
	"github.com/bookforge/bookforge-backend/internal/domain"
	"github.com/bookforge/bookforge-backend/internal/platform/ctxutil"
	"github.com/bookforge/bookforge-backend/internal/platform/logger"
	"github.com/bookforge/bookforge-backend/internal/server/response"
)

// BillingHandler exposes the caller's own billing mirror records and the
// admin-gated sync endpoint the payments platform's webhook relay posts to.
type BillingHandler struct {
	billingRepo repos.BillingRepo
	log         *logger.Logger
}

func NewBillingHandler(billingRepo repos.BillingRepo, log *logger.Logger) *BillingHandler {
	return &BillingHandler{
		billingRepo: billingRepo,
		log:         log.With("handler", "Billing"),
	}
}

func (bh *BillingHandler) MySubscriptions(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized",
			fmt.Errorf("missing identity"))
		return
	}

	subs, err := bh.billingRepo.ListSubscriptionsByUser(c.Request.Context(), nil, rd.UserID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	if subs == nil {
		subs = []*domain.BillingSubscription{}
	}
	response.RespondOK(c, gin.H{"subscriptions": subs})
}

func (bh *BillingHandler) MyOrders(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized",
			fmt.Errorf("missing identity"))
		return
	}

	orders, err := bh.billingRepo.ListOrdersByUser(c.Request.Context(), nil, rd.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.RespondOK(c, gin.H{"orders": []*domain.BillingOrder{}})
			return
		}
		response.RespondFromError(c, err)
		return
	}
	if orders == nil {
		orders = []*domain.BillingOrder{}
	}
	response.RespondOK(c, gin.H{"orders": orders})
}

type billingSyncPayload struct {
	Customer      domain.BillingCustomer       `json:"customer"`
	Subscriptions []domain.BillingSubscription `json:"subscriptions"`
	Orders        []domain.BillingOrder        `json:"orders"`
}

// Sync upserts one customer's mirror records. Keyed on provider IDs, so
// webhook replays are idempotent.
func (bh *BillingHandler) Sync(c *gin.Context) {
	var payload billingSyncPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_json", err)
		return
	}
	if payload.Customer.ProviderCustomerID == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_field",
			fmt.Errorf("customer.provider_customer_id is required"))
		return
	}
	if payload.Customer.UserID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "missing_field",
			fmt.Errorf("customer.user_id is required"))
		return
	}

	ctx := c.Request.Context()
	customer, err := bh.billingRepo.UpsertCustomer(ctx, nil, &payload.Customer)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}

	for i := range payload.Subscriptions {
		sub := &payload.Subscriptions[i]
		if sub.ProviderSubscriptionID == "" {
			response.RespondError(c, http.StatusBadRequest, "missing_field",
				fmt.Errorf("subscriptions[%d].provider_subscription_id is required", i))
			return
		}
		sub.CustomerID = customer.ID
		if _, err := bh.billingRepo.UpsertSubscription(ctx, nil, sub); err != nil {
			response.RespondFromError(c, err)
			return
		}
	}
	for i := range payload.Orders {
		order := &payload.Orders[i]
		if order.ProviderOrderID == "" {
			response.RespondError(c, http.StatusBadRequest, "missing_field",
				fmt.Errorf("orders[%d].provider_order_id is required", i))
			return
		}
		order.CustomerID = customer.ID
		if _, err := bh.billingRepo.UpsertOrder(ctx, nil, order); err != nil {
			response.RespondFromError(c, err)
			return
		}
	}

	bh.log.Info("Billing records synced",
		"customer_id", customer.ID,
		"subscriptions", len(payload.Subscriptions),
		"orders", len(payload.Orders),
	)
	response.RespondOK(c, gin.H{
		"customer_id":   customer.ID,
		"subscriptions": len(payload.Subscriptions),
		"orders":        len(payload.Orders),
	})
}
