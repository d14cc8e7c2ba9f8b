package handlers

import (
	"context"
	"net/http"
	"time"

	"crmhub/database"
	"crmhub/utils"
)

var startTime = time.Now()

// HealthCheck is the liveness probe.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"ok":     true,
		"time":   time.Now().UTC().Format(time.RFC3339),
		"uptime": time.Since(startTime).String(),
	}

	// Check MongoDB connection if available
	if database.Client != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := database.Client.Ping(ctx, nil); err != nil {
			response["ok"] = false
			response["database"] = "disconnected"
			utils.RespondWithJSON(w, http.StatusServiceUnavailable, response)
			return
		}
		response["database"] = "connected"
	}

	utils.RespondWithJSON(w, http.StatusOK, response)
}
