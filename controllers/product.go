package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pantry-market/middleware"
	"pantry-market/models"
	"pantry-market/store"
	"pantry-market/utils"
)

// ProductController handles catalog requests.
type ProductController struct {
	Products store.ProductStore
	Users    store.UserStore
}

// NewProductController creates a new ProductController.
func NewProductController(products store.ProductStore, users store.UserStore) *ProductController {
	return &ProductController{Products: products, Users: users}
}

type createProductRequest struct {
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Image           string    `json:"image"`
	OriginalPrice   float64   `json:"originalPrice"`
	DiscountedPrice float64   `json:"discountedPrice"`
	Quantity        string    `json:"quantity"`
	ExpiryDate      time.Time `json:"expiryDate"`
	Category        string    `json:"category"`
}

// CreateProduct adds a new listing owned by the authenticated vendor.
func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r)
	if !ok {
		utils.WriteError(w, utils.Unauthenticatedf("not authenticated"))
		return
	}
	vendorID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		utils.WriteError(w, utils.Unauthenticatedf("invalid session identity"))
		return
	}

	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, utils.Validationf("invalid request body"))
		return
	}

	product := &models.Product{
		VendorID:        vendorID,
		Name:            req.Name,
		Description:     req.Description,
		Image:           req.Image,
		OriginalPrice:   req.OriginalPrice,
		DiscountedPrice: req.DiscountedPrice,
		Quantity:        req.Quantity,
		ExpiryDate:      req.ExpiryDate,
		Category:        req.Category,
		IsAvailable:     true,
	}
	if err := product.Validate(); err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	if err := pc.Products.Insert(ctx, product); err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, product)
}

// GetProducts returns all available listings with vendor identity attached,
// optionally filtered by category, vendor and a name search term.
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	filter := store.ProductFilter{
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("search"),
	}
	if v := r.URL.Query().Get("vendor"); v != "" {
		vendorID, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			utils.WriteError(w, utils.Validationf("invalid vendor id"))
			return
		}
		filter.VendorID = vendorID
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()
	products, err := pc.Products.ListAvailable(ctx, filter)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	views, err := pc.withVendors(ctx, products)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, views)
}

// GetProductByID returns one listing with vendor identity attached.
func (pc *ProductController) GetProductByID(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDVar(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	product, err := pc.Products.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		utils.WriteError(w, utils.NotFoundf("product not found"))
		return
	}
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	views, err := pc.withVendors(ctx, []models.Product{*product})
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, views[0])
}

// GetVendorProducts returns the authenticated vendor's own listings,
// including unavailable ones.
func (pc *ProductController) GetVendorProducts(w http.ResponseWriter, r *http.Request) {
	vendorID, err := sessionObjectID(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	products, err := pc.Products.ListByVendor(ctx, vendorID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, products)
}

// UpdateProduct merges a patch into a listing. Only the owning vendor may
// update it.
func (pc *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	product, err := pc.ownedProduct(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	var patch models.ProductPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		utils.WriteError(w, utils.Validationf("invalid request body"))
		return
	}

	product.Apply(patch)
	if err := product.Validate(); err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	if err := pc.Products.Update(ctx, product); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, product)
}

// DeleteProduct removes a listing. Only the owning vendor may delete it.
func (pc *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	product, err := pc.ownedProduct(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	if err := pc.Products.Delete(ctx, product.ID); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "product removed"})
}

// GetVendorStats returns the authenticated vendor's dashboard aggregate.
// Listings with a zero original price have no meaningful discount percentage
// and are skipped when averaging.
func (pc *ProductController) GetVendorStats(w http.ResponseWriter, r *http.Request) {
	vendorID, err := sessionObjectID(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	products, err := pc.Products.ListByVendor(ctx, vendorID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	stats := models.VendorStats{TotalProducts: len(products)}
	sum, counted := 0.0, 0
	now := time.Now()
	weekOut := now.Add(7 * 24 * time.Hour)
	for _, p := range products {
		if p.OriginalPrice > 0 {
			sum += (p.OriginalPrice - p.DiscountedPrice) / p.OriginalPrice * 100
			counted++
		}
		if !p.ExpiryDate.Before(now) && !p.ExpiryDate.After(weekOut) {
			stats.ExpiringProducts++
		}
	}
	if counted > 0 {
		stats.AverageDiscount = int(math.Round(sum / float64(counted)))
	}

	utils.WriteJSON(w, http.StatusOK, stats)
}

// ownedProduct loads the listing named in the route and verifies the
// authenticated vendor owns it.
func (pc *ProductController) ownedProduct(r *http.Request) (*models.Product, error) {
	vendorID, err := sessionObjectID(r)
	if err != nil {
		return nil, err
	}
	id, err := objectIDVar(r, "id")
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	product, err := pc.Products.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, utils.NotFoundf("product not found")
	}
	if err != nil {
		return nil, err
	}
	if product.VendorID != vendorID {
		return nil, utils.Forbiddenf("not authorized to modify this product")
	}
	return product, nil
}

// withVendors attaches vendor identity to listings with one batched lookup.
func (pc *ProductController) withVendors(ctx context.Context, products []models.Product) ([]models.ProductView, error) {
	views := make([]models.ProductView, 0, len(products))
	vendors := map[primitive.ObjectID]*models.VendorSummary{}

	for _, p := range products {
		summary, ok := vendors[p.VendorID]
		if !ok {
			user, err := pc.Users.FindByID(ctx, p.VendorID)
			switch {
			case errors.Is(err, store.ErrNotFound):
				// vendor account deleted; listing still shown
			case err != nil:
				return nil, err
			default:
				summary = &models.VendorSummary{ID: user.ID, Name: user.Name}
				if user.Vendor != nil {
					summary.BusinessType = user.Vendor.BusinessType
				}
			}
			vendors[p.VendorID] = summary
		}
		views = append(views, models.ProductView{Product: p, Vendor: summary})
	}
	return views, nil
}

func sessionObjectID(r *http.Request) (primitive.ObjectID, error) {
	claims, ok := middleware.ClaimsFrom(r)
	if !ok {
		return primitive.NilObjectID, utils.Unauthenticatedf("not authenticated")
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, utils.Unauthenticatedf("invalid session identity")
	}
	return id, nil
}
