package plans

import (
	"net/http"

	"quizzq-backend/config"
	"quizzq-backend/internal/domain/plans"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/price"
	"gorm.io/gorm"
)

type Handler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewHandler(db *gorm.DB, cfg *config.Config) *Handler {
	return &Handler{DB: db, Cfg: cfg}
}

func (h *Handler) ListPlans(c *gin.Context) {
	var plansList []plans.Plan
	if err := h.DB.Model(&plans.Plan{}).Order("price_cents ASC").Find(&plansList).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load plans"})
		return
	}

	c.JSON(http.StatusOK, plansList)
}

// SyncPlansFromStripe mirrors the active recurring prices of the QUIZZQ
// product into the local plans table. Admin-triggered; the webhook grant path
// reads this table for display metadata.
func (h *Handler) SyncPlansFromStripe(c *gin.Context) {
	params := &stripe.PriceListParams{}
	params.Active = stripe.Bool(true)
	params.Type = stripe.String("recurring")
	params.AddExpand("data.product")

	it := price.List(params)

	created := 0
	updated := 0
	skipped := 0

	for it.Next() {
		p := it.Price()

		if !p.Active || p.Recurring == nil || p.Product == nil || !p.Product.Active {
			skipped++
			continue
		}

		if h.Cfg.StripeProductID != "" && p.Product.ID != h.Cfg.StripeProductID {
			skipped++
			continue
		}

		if p.Metadata != nil && p.Metadata["visible"] == "false" {
			skipped++
			continue
		}

		displayName := p.Product.Name
		if p.Metadata != nil {
			if v := p.Metadata["plan"]; v != "" {
				displayName = v
			}
		}

		trialDays := int64(0)
		if p.Recurring.TrialPeriodDays > 0 {
			trialDays = p.Recurring.TrialPeriodDays
		}

		var existing plans.Plan
		err := h.DB.Where("stripe_price_id = ?", p.ID).First(&existing).Error

		if err != nil {
			plan := plans.Plan{
				Name:          displayName,
				PriceCents:    p.UnitAmount,
				Currency:      string(p.Currency),
				StripePriceID: p.ID,
				Interval:      string(p.Recurring.Interval),
				TrialDays:     trialDays,
			}
			if err := h.DB.Create(&plan).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create plan", "details": err.Error()})
				return
			}
			created++
		} else {
			existing.Name = displayName
			existing.PriceCents = p.UnitAmount
			existing.Currency = string(p.Currency)
			existing.Interval = string(p.Recurring.Interval)
			existing.TrialDays = trialDays

			if err := h.DB.Save(&existing).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update plan", "details": err.Error()})
				return
			}
			updated++
		}
	}

	if err := it.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch Stripe prices", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"created": created,
		"updated": updated,
		"skipped": skipped,
	})
}
