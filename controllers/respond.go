package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"brilliora/middleware"
	"brilliora/models"
	"brilliora/services"
	"brilliora/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	maxBodyBytes   = 1 << 20
	defaultTimeout = 10 * time.Second
)

var errEmptyBody = errors.New("request body is empty")

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}

// respondServiceError maps a classified error to its status and message.
// Server-side failures are logged with the request id.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := services.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		middleware.LoggerFromContext(r.Context()).Error("request failed", "status", status, "error", err)
	}
	respondJSON(w, status, map[string]string{"message": services.Message(err)})
}

func decodeJSON(r *http.Request, dst interface{}) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	if errors.Is(err, io.EOF) {
		return errEmptyBody
	}
	return err
}

// currentUser returns the authenticated claims and the caller's user id
func currentUser(r *http.Request) (*utils.Claims, primitive.ObjectID, bool) {
	claims, ok := middleware.UserFromContext(r.Context())
	if !ok {
		return nil, primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, primitive.NilObjectID, false
	}
	return claims, id, true
}

func respondUnauthorized(w http.ResponseWriter) {
	respondError(w, http.StatusUnauthorized, "Unauthorized")
}

// notifyOrderPlaced sends the confirmation email in the background. Failures
// are logged only.
func notifyOrderPlaced(r *http.Request, mailer utils.Mailer, toEmail string, order models.Order) {
	if mailer == nil || toEmail == "" {
		return
	}
	log := middleware.LoggerFromContext(r.Context()).With("order_id", order.ID.Hex())
	go func() {
		if err := utils.SendOrderConfirmationEmail(mailer, toEmail, order); err != nil {
			log.Warn("order confirmation email not sent", "error", err)
		}
	}()
}
