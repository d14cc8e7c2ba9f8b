// handlers/client_handler.go
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"crmhub/logger"
	"crmhub/models"
	"crmhub/policy"
	"crmhub/utils"
)

type CreateClientRequest struct {
	Name          string                `json:"name" validate:"required,max=200"`
	Email         string                `json:"email" validate:"required,email"`
	Company       string                `json:"company" validate:"required,max=200"`
	Phone         string                `json:"phone"`
	Website       string                `json:"website"`
	Status        string                `json:"status" validate:"omitempty,oneof=active inactive prospect"`
	Address       *models.Address       `json:"address"`
	ContactPerson *models.ContactPerson `json:"contactPerson"`
	Services      []string              `json:"services"`
	Notes         string                `json:"notes"`
}

func CreateClient(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := actingUser(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateClientRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	status := req.Status
	if status == "" {
		status = models.ClientProspect
	}

	now := time.Now().UTC()
	client := models.Client{
		ID:            primitive.NewObjectID(),
		User:          userID,
		Name:          strings.TrimSpace(req.Name),
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
		Company:       strings.TrimSpace(req.Company),
		Phone:         req.Phone,
		Website:       req.Website,
		Status:        status,
		Address:       req.Address,
		ContactPerson: req.ContactPerson,
		Services:      req.Services,
		Notes:         req.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if _, err := clientCollection.InsertOne(ctx, client); err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to create client", err)
		return
	}

	logger.WithField("clientID", client.ID.Hex()).Info("client created")
	utils.RespondWithJSON(w, http.StatusCreated, client)
}

func ListClients(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := actingUser(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	filter := policy.ScopeFilter(policy.ResourceClients, role, userID)
	query := r.URL.Query()

	if status := query.Get("status"); status != "" && status != "all" {
		filter["status"] = status
	}

	if search := query.Get("search"); search != "" {
		filter["$or"] = []bson.M{
			{"name": bson.M{"$regex": search, "$options": "i"}},
			{"email": bson.M{"$regex": search, "$options": "i"}},
			{"company": bson.M{"$regex": search, "$options": "i"}},
		}
	}

	limit, skip := parsePagination(r)

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(skip))

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := clientCollection.Find(ctx, filter, opts)
	if err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to fetch clients", err)
		return
	}
	defer cursor.Close(ctx)

	var clients []models.Client
	if err := cursor.All(ctx, &clients); err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to decode clients", err)
		return
	}
	if clients == nil {
		clients = []models.Client{}
	}

	total, _ := clientCollection.CountDocuments(ctx, filter)

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"items": clients,
		"total": total,
		"limit": limit,
		"skip":  skip,
	})
}

func GetClient(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := actingUser(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	clientID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid client ID")
		return
	}

	filter := policy.ScopeFilter(policy.ResourceClients, role, userID)
	filter["_id"] = clientID

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var client models.Client
	if err := clientCollection.FindOne(ctx, filter).Decode(&client); err != nil {
		// Out-of-scope and missing are indistinguishable on purpose
		utils.RespondWithError(w, http.StatusNotFound, "Client not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, client)
}

func UpdateClient(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := actingUser(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	clientID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid client ID")
		return
	}

	var req struct {
		Name          string                `json:"name"`
		Email         string                `json:"email" validate:"omitempty,email"`
		Company       string                `json:"company"`
		Phone         string                `json:"phone"`
		Website       string                `json:"website"`
		Status        string                `json:"status" validate:"omitempty,oneof=active inactive prospect"`
		Address       *models.Address       `json:"address"`
		ContactPerson *models.ContactPerson `json:"contactPerson"`
		Services      []string              `json:"services"`
		Notes         *string               `json:"notes"`
	}
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	updateFields := bson.M{"updatedAt": time.Now().UTC()}
	if req.Name != "" {
		updateFields["name"] = strings.TrimSpace(req.Name)
	}
	if req.Email != "" {
		updateFields["email"] = strings.ToLower(strings.TrimSpace(req.Email))
	}
	if req.Company != "" {
		updateFields["company"] = strings.TrimSpace(req.Company)
	}
	if req.Phone != "" {
		updateFields["phone"] = req.Phone
	}
	if req.Website != "" {
		updateFields["website"] = req.Website
	}
	if req.Status != "" {
		updateFields["status"] = req.Status
	}
	if req.Address != nil {
		updateFields["address"] = req.Address
	}
	if req.ContactPerson != nil {
		updateFields["contactPerson"] = req.ContactPerson
	}
	if req.Services != nil {
		updateFields["services"] = req.Services
	}
	if req.Notes != nil {
		updateFields["notes"] = *req.Notes
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var existing models.Client
	if err := clientCollection.FindOne(ctx, bson.M{"_id": clientID}).Decode(&existing); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "Client not found")
			return
		}
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to fetch client", err)
		return
	}

	// Employees can only modify rows they own; managers and admins any
	if !policy.CanWrite(policy.ResourceClients, role, existing.User == userID) {
		utils.RespondWithError(w, http.StatusForbidden, "You do not have permission to update this client")
		return
	}

	if _, err := clientCollection.UpdateOne(ctx, bson.M{"_id": clientID}, bson.M{"$set": updateFields}); err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to update client", err)
		return
	}

	var client models.Client
	if err := clientCollection.FindOne(ctx, bson.M{"_id": clientID}).Decode(&client); err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to fetch updated client", err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, client)
}

// DeleteClient hard-deletes a client record. Route floor: admin.
func DeleteClient(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := actingUser(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	clientID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid client ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var client models.Client
	if err := clientCollection.FindOne(ctx, bson.M{"_id": clientID}).Decode(&client); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "Client not found")
			return
		}
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to fetch client", err)
		return
	}

	if !policy.CanDelete(policy.ResourceClients, role, client.User == userID) {
		utils.RespondWithError(w, http.StatusForbidden, "Only admin can delete clients")
		return
	}

	if _, err := clientCollection.DeleteOne(ctx, bson.M{"_id": clientID}); err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to delete client", err)
		return
	}

	logger.WithField("clientID", clientID.Hex()).Info("client deleted")
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Client deleted successfully",
	})
}
