// handlers/user_handler.go
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"crmhub/logger"
	"crmhub/models"
	"crmhub/policy"
	"crmhub/utils"
)

// ListUsers returns the user directory with pagination and search.
// Route floor: manager.
func ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	query := r.URL.Query()
	filter := bson.M{}

	if role := query.Get("role"); role != "" && role != "all" {
		filter["role"] = role
	}

	if search := query.Get("search"); search != "" {
		filter["$or"] = []bson.M{
			{"name": bson.M{"$regex": search, "$options": "i"}},
			{"email": bson.M{"$regex": search, "$options": "i"}},
			{"position": bson.M{"$regex": search, "$options": "i"}},
		}
	}

	limit, skip := parsePagination(r)

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(skip))

	cursor, err := userCollection.Find(ctx, filter, opts)
	if err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to fetch users", err)
		return
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to decode users", err)
		return
	}
	if users == nil {
		users = []models.User{}
	}

	// PasswordHash is json:"-" but clear it anyway
	for i := range users {
		users[i].PasswordHash = ""
	}

	total, _ := userCollection.CountDocuments(ctx, filter)

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"items": users,
		"total": total,
		"limit": limit,
		"skip":  skip,
	})
}

// GetUser returns a single user. Employees may only fetch themselves.
func GetUser(w http.ResponseWriter, r *http.Request) {
	actorID, role, ok := actingUser(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	targetID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	if role == models.RoleEmployee && actorID != targetID {
		utils.RespondWithError(w, http.StatusForbidden, "Insufficient permissions")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	if err := userCollection.FindOne(ctx, bson.M{"_id": targetID}).Decode(&user); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "User not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, userPayload(&user))
}

// UpdateUser lets users edit their own profile; role, manager and team
// assignments are admin-only fields.
func UpdateUser(w http.ResponseWriter, r *http.Request) {
	actorID, role, ok := actingUser(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	targetID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	if actorID != targetID && role != models.RoleAdmin {
		utils.RespondWithError(w, http.StatusForbidden, "Insufficient permissions")
		return
	}

	var updates struct {
		Name     string   `json:"name,omitempty"`
		Position string   `json:"position,omitempty"`
		Phone    string   `json:"phone,omitempty"`
		Role     string   `json:"role,omitempty"`
		Manager  string   `json:"manager,omitempty"`
		Team     []string `json:"team,omitempty"`
	}
	if err := utils.ParseJSON(r, &updates); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	updateFields := bson.M{"updatedAt": time.Now().UTC()}

	if updates.Name != "" {
		if len(updates.Name) > 100 {
			utils.RespondWithError(w, http.StatusBadRequest, "Name too long")
			return
		}
		updateFields["name"] = strings.TrimSpace(updates.Name)
	}
	if updates.Position != "" {
		updateFields["position"] = updates.Position
	}
	if updates.Phone != "" {
		updateFields["phone"] = updates.Phone
	}

	if updates.Role != "" || updates.Manager != "" || len(updates.Team) > 0 {
		if role != models.RoleAdmin {
			utils.RespondWithError(w, http.StatusForbidden, "Only admin can change role or team assignments")
			return
		}
		if updates.Role != "" {
			updateFields["role"] = normalizeRole(updates.Role)
		}
		if updates.Manager != "" {
			managerID, err := primitive.ObjectIDFromHex(updates.Manager)
			if err != nil {
				utils.RespondWithError(w, http.StatusBadRequest, "Invalid manager ID")
				return
			}
			updateFields["manager"] = managerID
		}
		if len(updates.Team) > 0 {
			team := make([]primitive.ObjectID, 0, len(updates.Team))
			for _, idHex := range updates.Team {
				memberID, err := primitive.ObjectIDFromHex(idHex)
				if err != nil {
					utils.RespondWithError(w, http.StatusBadRequest, "Invalid team member ID: "+idHex)
					return
				}
				team = append(team, memberID)
			}
			updateFields["team"] = team
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result, err := userCollection.UpdateOne(ctx,
		bson.M{"_id": targetID},
		bson.M{"$set": updateFields},
	)
	if err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to update user", err)
		return
	}
	if result.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "User not found")
		return
	}

	var user models.User
	if err := userCollection.FindOne(ctx, bson.M{"_id": targetID}).Decode(&user); err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to fetch updated user", err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, userPayload(&user))
}

// DeleteUser removes an account. Admin only; admins cannot delete
// themselves.
func DeleteUser(w http.ResponseWriter, r *http.Request) {
	actorID, role, ok := actingUser(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	targetID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	allowed, selfDelete := policy.CanDeleteUser(role, actorID, targetID)
	if selfDelete {
		utils.RespondWithError(w, http.StatusConflict, "You cannot delete your own account")
		return
	}
	if !allowed {
		utils.RespondWithError(w, http.StatusForbidden, "Only admin can delete users")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result, err := userCollection.DeleteOne(ctx, bson.M{"_id": targetID})
	if err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to delete user", err)
		return
	}
	if result.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "User not found")
		return
	}

	// Drop back-references from any team lists
	_, err = userCollection.UpdateMany(ctx,
		bson.M{"team": targetID},
		bson.M{"$pull": bson.M{"team": targetID}},
	)
	if err != nil {
		logger.Get().Warnf("Failed to clean team references for deleted user %s: %v", targetID.Hex(), err)
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message": "User deleted successfully",
	})
}
