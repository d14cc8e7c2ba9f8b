// handlers/context.go
package handlers

import (
	"net/http"
	"strconv"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// actingUser pulls the authenticated identity the auth middleware stored in
// the request context. ok is false when the request never went through it.
func actingUser(r *http.Request) (userID primitive.ObjectID, role string, ok bool) {
	idHex, okID := r.Context().Value("userID").(string)
	role, okRole := r.Context().Value("userRole").(string)
	if !okID || !okRole || idHex == "" {
		return primitive.NilObjectID, "", false
	}

	userID, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return primitive.NilObjectID, "", false
	}
	return userID, role, true
}

// parsePagination reads limit/skip (also accepting page) query params with
// the same bounds used across all list endpoints.
func parsePagination(r *http.Request) (limit, skip int) {
	query := r.URL.Query()

	limit = 50
	skip = 0

	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	if skipStr := query.Get("skip"); skipStr != "" {
		if s, err := strconv.Atoi(skipStr); err == nil && s >= 0 {
			skip = s
		}
	} else if pageStr := query.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 1 {
			skip = (p - 1) * limit
		}
	}

	return limit, skip
}
