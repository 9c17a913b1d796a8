package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"brilliora/middleware"
	"brilliora/models"
	"brilliora/repository"
	"brilliora/utils"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// UserController handles account requests
type UserController struct {
	Users   repository.UserRepository
	Tokens  *utils.TokenManager
	Timeout time.Duration
	// BcryptCost defaults to bcrypt.DefaultCost
	BcryptCost int
}

// NewUserController creates a new UserController
func NewUserController(users repository.UserRepository, tokens *utils.TokenManager, timeout time.Duration) *UserController {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &UserController{
		Users:      users,
		Tokens:     tokens,
		Timeout:    timeout,
		BcryptCost: bcrypt.DefaultCost,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register handles user registration
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "Name is required")
		return
	}
	if !validEmail(req.Email) {
		respondError(w, http.StatusBadRequest, "A valid email is required")
		return
	}
	if len(req.Password) < minPasswordLength {
		respondError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	// Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), uc.BcryptCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error hashing password")
		return
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashedPassword),
		Role:     "user",
	}

	ctx, cancel := context.WithTimeout(r.Context(), uc.Timeout)
	defer cancel()
	err = uc.Users.Create(ctx, user)
	if errors.Is(err, repository.ErrDuplicate) {
		respondError(w, http.StatusBadRequest, "User already exists")
		return
	}
	if err != nil {
		middleware.LoggerFromContext(r.Context()).Error("create user failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Error creating user")
		return
	}

	uc.respondWithToken(w, http.StatusCreated, user)
}

// Login handles user login
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil || !validEmail(req.Email) || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), uc.Timeout)
	defer cancel()
	user, err := uc.Users.FindByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		middleware.LoggerFromContext(r.Context()).Error("find user failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	// Compare the password
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	uc.respondWithToken(w, http.StatusOK, user)
}

// Me returns the authenticated user's profile
func (uc *UserController) Me(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := currentUser(r)
	if !ok {
		respondUnauthorized(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), uc.Timeout)
	defer cancel()
	user, err := uc.Users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		middleware.LoggerFromContext(r.Context()).Error("find user failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// UpdateProfile replaces the editable profile fields
func (uc *UserController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := currentUser(r)
	if !ok {
		respondUnauthorized(w)
		return
	}

	var update models.ProfileUpdate
	if err := decodeJSON(r, &update); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	update.Name = strings.TrimSpace(update.Name)
	if update.Name == "" {
		respondError(w, http.StatusBadRequest, "Name is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), uc.Timeout)
	defer cancel()
	user, err := uc.Users.UpdateProfile(ctx, userID, update)
	if errors.Is(err, repository.ErrNotFound) {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		middleware.LoggerFromContext(r.Context()).Error("update profile failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Error updating profile")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// ChangePassword replaces the password after checking the current one
func (uc *UserController) ChangePassword(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := currentUser(r)
	if !ok {
		respondUnauthorized(w)
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil || req.CurrentPassword == "" {
		respondError(w, http.StatusBadRequest, "Current password is required")
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		respondError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), uc.Timeout)
	defer cancel()
	user, err := uc.Users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		middleware.LoggerFromContext(r.Context()).Error("find user failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		respondError(w, http.StatusBadRequest, "Current password is incorrect")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), uc.BcryptCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error hashing password")
		return
	}
	if err := uc.Users.UpdatePassword(ctx, userID, string(hashedPassword)); err != nil {
		middleware.LoggerFromContext(r.Context()).Error("update password failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Error updating password")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Password updated successfully"})
}

func (uc *UserController) respondWithToken(w http.ResponseWriter, status int, user *models.User) {
	token, err := uc.Tokens.GenerateJWT(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error generating token")
		return
	}
	respondJSON(w, status, authResponse{Token: token, User: user})
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == strings.TrimSpace(email)
}
