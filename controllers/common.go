package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"pantry-market/middleware"
	"pantry-market/models"
	"pantry-market/store"
	"pantry-market/utils"
)

func objectIDVar(r *http.Request, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)[name])
	if err != nil {
		return primitive.NilObjectID, utils.Validationf("invalid %s", name)
	}
	return id, nil
}

func sessionRole(r *http.Request) models.Role {
	claims, ok := middleware.ClaimsFrom(r)
	if !ok {
		return ""
	}
	return models.Role(claims.Role)
}

// withDriver attaches the assigned driver's identity to a delivery.
func withDriver(ctx context.Context, users store.UserStore, d *models.Delivery) (*models.DeliveryView, error) {
	view := &models.DeliveryView{Delivery: *d}
	if d.DriverID == nil {
		return view, nil
	}
	driver, err := users.FindByID(ctx, *d.DriverID)
	if errors.Is(err, store.ErrNotFound) {
		return view, nil
	}
	if err != nil {
		return nil, err
	}
	view.Driver = &models.DriverSummary{ID: driver.ID, Name: driver.Name, Phone: driver.Phone}
	return view, nil
}
