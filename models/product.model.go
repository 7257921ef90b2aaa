package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pantry-market/utils"
)

// Categories a listing may belong to.
const (
	CategoryBakery     = "Bakery"
	CategoryDairy      = "Dairy"
	CategoryFruits     = "Fruits"
	CategoryVegetables = "Vegetables"
	CategoryMeat       = "Meat"
	CategoryGrocery    = "Grocery"
	CategoryOther      = "Other"
)

// ValidCategory reports whether c is one of the known listing categories.
func ValidCategory(c string) bool {
	switch c {
	case CategoryBakery, CategoryDairy, CategoryFruits, CategoryVegetables,
		CategoryMeat, CategoryGrocery, CategoryOther:
		return true
	}
	return false
}

// Product is a vendor's near-expiry listing. Quantity is a free-text unit
// label ("6 pack", "500g"), not a stock counter.
type Product struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	VendorID        primitive.ObjectID `bson:"vendor" json:"vendorId"`
	Name            string             `bson:"name" json:"name"`
	Description     string             `bson:"description" json:"description"`
	Image           string             `bson:"image" json:"image"`
	OriginalPrice   float64            `bson:"originalPrice" json:"originalPrice"`
	DiscountedPrice float64            `bson:"discountedPrice" json:"discountedPrice"`
	Quantity        string             `bson:"quantity" json:"quantity"`
	ExpiryDate      time.Time          `bson:"expiryDate" json:"expiryDate"`
	Category        string             `bson:"category" json:"category"`
	IsAvailable     bool               `bson:"isAvailable" json:"isAvailable"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}

// Validate checks the field-level listing invariants.
func (p *Product) Validate() error {
	if p.Name == "" || p.Description == "" || p.Image == "" || p.Quantity == "" {
		return utils.Validationf("name, description, image and quantity are required")
	}
	if p.OriginalPrice < 0 || p.DiscountedPrice < 0 {
		return utils.Validationf("prices must not be negative")
	}
	if p.ExpiryDate.IsZero() {
		return utils.Validationf("expiryDate is required")
	}
	if !ValidCategory(p.Category) {
		return utils.Validationf("invalid category: %s", p.Category)
	}
	return nil
}

// VendorSummary is the vendor identity joined onto public listing reads.
type VendorSummary struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	Name         string             `bson:"name" json:"name"`
	BusinessType string             `bson:"businessType" json:"businessType"`
}

// ProductView is a listing with its vendor identity attached for display.
type ProductView struct {
	Product
	Vendor *VendorSummary `json:"vendor,omitempty"`
}

// ProductPatch carries the mutable listing fields; nil means leave unchanged.
type ProductPatch struct {
	Name            *string    `json:"name,omitempty"`
	Description     *string    `json:"description,omitempty"`
	Image           *string    `json:"image,omitempty"`
	OriginalPrice   *float64   `json:"originalPrice,omitempty"`
	DiscountedPrice *float64   `json:"discountedPrice,omitempty"`
	Quantity        *string    `json:"quantity,omitempty"`
	ExpiryDate      *time.Time `json:"expiryDate,omitempty"`
	Category        *string    `json:"category,omitempty"`
	IsAvailable     *bool      `json:"isAvailable,omitempty"`
}

// Apply merges the patch into the product. The result must still pass
// Validate before being persisted.
func (p *Product) Apply(patch ProductPatch) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Image != nil {
		p.Image = *patch.Image
	}
	if patch.OriginalPrice != nil {
		p.OriginalPrice = *patch.OriginalPrice
	}
	if patch.DiscountedPrice != nil {
		p.DiscountedPrice = *patch.DiscountedPrice
	}
	if patch.Quantity != nil {
		p.Quantity = *patch.Quantity
	}
	if patch.ExpiryDate != nil {
		p.ExpiryDate = *patch.ExpiryDate
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.IsAvailable != nil {
		p.IsAvailable = *patch.IsAvailable
	}
}

// VendorStats is the aggregate returned to a vendor's dashboard.
type VendorStats struct {
	TotalProducts    int `json:"totalProducts"`
	AverageDiscount  int `json:"averageDiscount"`
	ExpiringProducts int `json:"expiringProducts"`
}
