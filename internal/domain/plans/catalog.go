package plans

import (
	"gorm.io/gorm"
)

// Catalog resolves Stripe price ids to locally synced plan rows.
type Catalog struct {
	db *gorm.DB
}

func NewCatalog(db *gorm.DB) *Catalog {
	return &Catalog{db: db}
}

func (c *Catalog) ByPriceID(priceID string) (*Plan, bool) {
	var plan Plan
	if err := c.db.Where("stripe_price_id = ?", priceID).First(&plan).Error; err != nil {
		return nil, false
	}
	return &plan, true
}
