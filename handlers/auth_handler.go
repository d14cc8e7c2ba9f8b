// handlers/auth_handler.go
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"crmhub/logger"
	"crmhub/mailer"
	"crmhub/models"
	"crmhub/utils"
)

// normalizeRole clamps free-form role input to the three valid roles.
func normalizeRole(role string) string {
	role = strings.ToLower(strings.TrimSpace(role))

	switch role {
	case models.RoleAdmin:
		return models.RoleAdmin
	case models.RoleManager:
		return models.RoleManager
	case models.RoleEmployee:
		return models.RoleEmployee
	default:
		return models.RoleEmployee // Default fallback
	}
}

// newRegisteredUser builds the account document for a verified signup.
// Self-registered accounts always start as employees; elevation is an
// admin-only operation on the user update endpoint.
func newRegisteredUser(name, email, hash, position string, now time.Time) models.User {
	return models.User{
		ID:           primitive.NewObjectID(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleEmployee,
		Position:     strings.TrimSpace(position),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func userPayload(user *models.User) map[string]interface{} {
	return map[string]interface{}{
		"id":        user.ID.Hex(),
		"name":      user.Name,
		"email":     user.Email,
		"role":      user.Role,
		"position":  user.Position,
		"phone":     user.Phone,
		"manager":   user.Manager,
		"team":      user.Team,
		"createdAt": user.CreatedAt,
	}
}

// SendOTP starts registration: issues a 6-digit code for an unregistered
// email and mails it. Reissues within 60 seconds are rejected.
func SendOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email" validate:"required,email"`
	}
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	// Already-registered emails cannot request registration codes
	count, err := userCollection.CountDocuments(ctx, bson.M{"email": req.Email})
	if err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to check email", err)
		return
	}
	if count > 0 {
		utils.RespondWithError(w, http.StatusConflict, "Email is already registered")
		return
	}

	var existing models.OTP
	err = otpCollection.FindOne(ctx, bson.M{"email": req.Email}).Decode(&existing)
	if err == nil && otpOnCooldown(&existing, time.Now()) {
		utils.RespondWithError(w, http.StatusBadRequest, "Please wait 60 seconds before requesting a new code")
		return
	}
	if err != nil && err != mongo.ErrNoDocuments {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to check existing code", err)
		return
	}

	// One live code per email: drop any earlier ones before inserting
	if _, err := otpCollection.DeleteMany(ctx, bson.M{"email": req.Email}); err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to reset previous code", err)
		return
	}

	now := time.Now().UTC()
	otp := models.OTP{
		ID:        primitive.NewObjectID(),
		Email:     req.Email,
		Code:      generateOTPCode(),
		ExpiresAt: now.Add(otpLifetime),
		Used:      false,
		Attempts:  0,
		CreatedAt: now,
	}

	if _, err := otpCollection.InsertOne(ctx, otp); err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to create verification code", err)
		return
	}

	if err := mailer.SendOTP(req.Email, otp.Code); err != nil {
		logger.WithField("email", req.Email).Errorf("OTP mail delivery failed: %v", err)
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to send verification code", err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Verification code sent",
		"email":     req.Email,
		"expiresAt": otp.ExpiresAt.Format(time.RFC3339),
	})
}

// ResendOTP reissues a code under the same cooldown rules.
func ResendOTP(w http.ResponseWriter, r *http.Request) {
	SendOTP(w, r)
}

// VerifyOTP consumes a pending code and creates the account in one request.
// Wrong, expired and already-used codes all fail with the same message.
func VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email" validate:"required,email"`
		OTP      string `json:"otp" validate:"required,len=6"`
		Name     string `json:"name" validate:"required,max=100"`
		Password string `json:"password" validate:"required,min=6"`
		Position string `json:"position"`
	}
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var otp models.OTP
	err := otpCollection.FindOne(ctx, bson.M{"email": req.Email}).Decode(&otp)
	if err != nil && err != mongo.ErrNoDocuments {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to look up verification code", err)
		return
	}

	found := err == nil
	if !found || !otpUsable(&otp, req.OTP, time.Now()) {
		// Count the failed attempt on the pending record, if one exists
		if found && !otp.Used {
			_, _ = otpCollection.UpdateOne(ctx,
				bson.M{"_id": otp.ID},
				bson.M{"$inc": bson.M{"attempts": 1}},
			)
		}
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid or expired OTP")
		return
	}

	// One-time consumption: flip used before creating the account. The
	// filter re-checks used:false so a concurrent verify loses cleanly.
	res, err := otpCollection.UpdateOne(ctx,
		bson.M{"_id": otp.ID, "used": false},
		bson.M{"$set": bson.M{"used": true}},
	)
	if err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to consume verification code", err)
		return
	}
	if res.ModifiedCount == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid or expired OTP")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Password processing failed", err)
		return
	}

	user := newRegisteredUser(req.Name, req.Email, hash, req.Position, time.Now().UTC())

	if _, err := userCollection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			utils.RespondWithError(w, http.StatusConflict, "Email is already registered")
			return
		}
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to create account", err)
		return
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.Name, user.Email, user.Role)
	if err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to generate authentication token", err)
		return
	}

	logger.WithField("email", user.Email).Info("account registered")

	utils.RespondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Account created successfully",
		"token":   token,
		"user":    userPayload(&user),
	})
}

// Login handles user authentication
func Login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := utils.ParseJSON(r, &creds); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	creds.Email = strings.ToLower(strings.TrimSpace(creds.Email))
	if creds.Email == "" || !strings.Contains(creds.Email, "@") {
		utils.RespondWithError(w, http.StatusBadRequest, "Valid email required")
		return
	}
	if len(creds.Password) < 6 {
		utils.RespondWithError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var user models.User
	err := userCollection.FindOne(ctx, bson.M{"email": creds.Email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			// Burn comparable time so unknown emails are not detectable
			_ = utils.CheckPasswordHash("dummy_password", "$2a$10$dummyhashfordummycomparison")
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		logger.Get().Errorf("Database error during login: %v", err)
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Authentication service unavailable", err)
		return
	}

	if !utils.CheckPasswordHash(creds.Password, user.PasswordHash) {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.Name, user.Email, user.Role)
	if err != nil {
		logger.Get().Errorf("JWT generation error: %v", err)
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to generate authentication token", err)
		return
	}

	_, err = userCollection.UpdateOne(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{"updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		logger.Get().Warnf("Failed to update login timestamp: %v", err)
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  userPayload(&user),
	})
}

// GetCurrentUser returns the authenticated user's profile.
func GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := actingUser(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	if err := userCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "User not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, userPayload(&user))
}

// ChangePassword lets the authenticated user rotate their password.
func ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := actingUser(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req struct {
		CurrentPassword string `json:"currentPassword" validate:"required"`
		NewPassword     string `json:"newPassword" validate:"required,min=6"`
	}
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var user models.User
	if err := userCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "User not found")
		return
	}

	if !utils.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		utils.RespondWithError(w, http.StatusUnauthorized, "Current password is incorrect")
		return
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Password processing failed", err)
		return
	}

	_, err = userCollection.UpdateOne(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{"passwordHash": hash, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to update password", err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Password changed successfully",
	})
}
