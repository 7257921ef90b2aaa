package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"pantry-market/middleware"
	"pantry-market/models"
	"pantry-market/store"
	"pantry-market/utils"
)

// UserController handles registration, login and profile requests.
type UserController struct {
	Users store.UserStore
}

// NewUserController creates a new UserController.
func NewUserController(users store.UserStore) *UserController {
	return &UserController{Users: users}
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register handles user registration for any role.
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, utils.Validationf("invalid request body"))
		return
	}

	user, err := models.NewUser(req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	user.Password = string(hashed)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	if err := uc.Users.Insert(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			utils.WriteError(w, utils.Conflictf("email already registered"))
			return
		}
		utils.WriteError(w, err)
		return
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.Email, string(user.Role))
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

// Login handles user authentication. Unknown emails and wrong passwords are
// deliberately indistinguishable.
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		utils.WriteError(w, utils.Validationf("invalid request body"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	user, err := uc.Users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(creds.Email)))
	if err != nil {
		utils.WriteError(w, utils.Unauthenticatedf("invalid email or password"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(creds.Password)); err != nil {
		utils.WriteError(w, utils.Unauthenticatedf("invalid email or password"))
		return
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.Email, string(user.Role))
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

// GetProfile returns the authenticated user's own record.
func (uc *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := uc.currentUser(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, user)
}

// UpdateProfile mutates the authenticated user's own record. The password is
// re-hashed only when the patch carries one.
func (uc *UserController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, err := uc.currentUser(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	var patch models.ProfilePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		utils.WriteError(w, utils.Validationf("invalid request body"))
		return
	}

	user.Apply(patch)
	if patch.Password != nil && *patch.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*patch.Password), bcrypt.DefaultCost)
		if err != nil {
			utils.WriteError(w, err)
			return
		}
		user.Password = string(hashed)
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	if err := uc.Users.Update(ctx, user); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, user)
}

// ListUsers returns all users, optionally filtered by role. Admin only.
func (uc *UserController) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	users, err := uc.Users.List(ctx, models.Role(r.URL.Query().Get("role")))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, users)
}

// DeleteUser removes an account. Allowed for admins and for the account
// owner.
func (uc *UserController) DeleteUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r)
	if !ok {
		utils.WriteError(w, utils.Unauthenticatedf("not authenticated"))
		return
	}

	id, err := objectIDVar(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if claims.Role != string(models.RoleAdmin) && claims.UserID != id.Hex() {
		utils.WriteError(w, utils.Forbiddenf("not authorized to delete this user"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	if err := uc.Users.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.WriteError(w, utils.NotFoundf("user not found"))
			return
		}
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "user removed"})
}

func (uc *UserController) currentUser(r *http.Request) (*models.User, error) {
	claims, ok := middleware.ClaimsFrom(r)
	if !ok {
		return nil, utils.Unauthenticatedf("not authenticated")
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, utils.Unauthenticatedf("invalid session identity")
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	user, err := uc.Users.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, utils.NotFoundf("user not found")
	}
	return user, err
}
