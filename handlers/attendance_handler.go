// handlers/attendance_handler.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"crmhub/logger"
	"crmhub/models"
	"crmhub/utils"
)

// CheckIn opens today's attendance record. Calling it again the same day is
// a no-op that returns the existing record, whatever its state.
func CheckIn(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := actingUser(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req struct {
		Note     string `json:"note"`
		Location string `json:"location"`
	}
	// Body is optional on check-in
	_ = utils.ParseJSON(r, &req)

	now := time.Now()
	today := now.Format(dateLayout)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var existing models.Attendance
	err := attendanceCollection.FindOne(ctx, bson.M{"user": userID, "date": today}).Decode(&existing)
	if err == nil {
		utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"message":    "Already checked in today",
			"attendance": existing,
		})
		return
	}
	if err != mongo.ErrNoDocuments {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to check attendance", err)
		return
	}

	checkIn := now.UTC()
	record := models.Attendance{
		ID:              primitive.NewObjectID(),
		User:            userID,
		Date:            today,
		CheckIn:         &checkIn,
		DurationMinutes: 0,
		Note:            req.Note,
		Location:        req.Location,
		CreatedAt:       checkIn,
		UpdatedAt:       checkIn,
	}

	if _, err := attendanceCollection.InsertOne(ctx, record); err != nil {
		// Two simultaneous check-ins race on the unique (user,date)
		// index; the loser reads back the winner's record
		if mongo.IsDuplicateKeyError(err) {
			if err := attendanceCollection.FindOne(ctx, bson.M{"user": userID, "date": today}).Decode(&existing); err == nil {
				utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
					"message":    "Already checked in today",
					"attendance": existing,
				})
				return
			}
		}
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to check in", err)
		return
	}

	logger.WithField("userID", userID.Hex()).Info("checked in")
	utils.RespondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"message":    "Checked in successfully",
		"attendance": record,
	})
}

// CheckOut closes today's open record and computes the duration. Checking
// out when already closed returns the closed record unchanged.
func CheckOut(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := actingUser(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req struct {
		Note string `json:"note"`
	}
	_ = utils.ParseJSON(r, &req)

	now := time.Now()
	today := now.Format(dateLayout)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var record models.Attendance
	err := attendanceCollection.FindOne(ctx, bson.M{"user": userID, "date": today}).Decode(&record)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusBadRequest, "You have not checked in today")
			return
		}
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to fetch attendance", err)
		return
	}

	if record.CheckIn == nil {
		utils.RespondWithError(w, http.StatusBadRequest, "You have not checked in today")
		return
	}

	if record.CheckOut != nil {
		utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"message":    "Already checked out today",
			"attendance": record,
		})
		return
	}

	checkOut := now.UTC()
	updateFields := bson.M{
		"checkOut":        checkOut,
		"durationMinutes": computeDurationMinutes(*record.CheckIn, checkOut),
		"updatedAt":       checkOut,
	}
	if req.Note != "" {
		updateFields["note"] = req.Note
	}

	if _, err := attendanceCollection.UpdateOne(ctx, bson.M{"_id": record.ID}, bson.M{"$set": updateFields}); err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to check out", err)
		return
	}

	if err := attendanceCollection.FindOne(ctx, bson.M{"_id": record.ID}).Decode(&record); err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to fetch updated attendance", err)
		return
	}

	logger.WithField("userID", userID.Hex()).Info("checked out")
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Checked out successfully",
		"attendance": record,
	})
}

// GetMyAttendance returns the user's own records plus today's status and
// monthly aggregates.
func GetMyAttendance(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := actingUser(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}}).SetLimit(100)
	cursor, err := attendanceCollection.Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to fetch attendance", err)
		return
	}
	defer cursor.Close(ctx)

	var records []models.Attendance
	if err := cursor.All(ctx, &records); err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to decode attendance", err)
		return
	}
	if records == nil {
		records = []models.Attendance{}
	}

	now := time.Now()
	today := now.Format(dateLayout)

	var todayRecord *models.Attendance
	for i := range records {
		if records[i].Date == today {
			todayRecord = &records[i]
			break
		}
	}

	presentThisMonth, attendanceRate := monthlyStats(records, now)

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"items": records,
		"stats": map[string]interface{}{
			"todayStatus":      todayStatus(todayRecord),
			"presentThisMonth": presentThisMonth,
			"attendanceRate":   attendanceRate,
		},
	})
}

// GetAllAttendance lists records across users. Route floor: manager.
func GetAllAttendance(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := bson.M{}

	if userHex := query.Get("user"); userHex != "" {
		userID, err := primitive.ObjectIDFromHex(userHex)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
			return
		}
		filter["user"] = userID
	}
	if date := query.Get("date"); date != "" {
		filter["date"] = date
	}
	if from := query.Get("from"); from != "" {
		if to := query.Get("to"); to != "" {
			filter["date"] = bson.M{"$gte": from, "$lte": to}
		} else {
			filter["date"] = bson.M{"$gte": from}
		}
	}

	limit, skip := parsePagination(r)

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(skip))

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := attendanceCollection.Find(ctx, filter, opts)
	if err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to fetch attendance", err)
		return
	}
	defer cursor.Close(ctx)

	var records []models.Attendance
	if err := cursor.All(ctx, &records); err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to decode attendance", err)
		return
	}
	if records == nil {
		records = []models.Attendance{}
	}

	total, _ := attendanceCollection.CountDocuments(ctx, filter)

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"items": records,
		"total": total,
		"limit": limit,
		"skip":  skip,
	})
}

// GetAttendance returns a single record by ID. Route floor: manager.
func GetAttendance(w http.ResponseWriter, r *http.Request) {
	recordID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid attendance ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var record models.Attendance
	if err := attendanceCollection.FindOne(ctx, bson.M{"_id": recordID}).Decode(&record); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "Attendance record not found")
			return
		}
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to fetch attendance record", err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, record)
}

// UpdateAttendance lets a manager or admin correct a record. Duration is
// recomputed whenever both timestamps end up present.
func UpdateAttendance(w http.ResponseWriter, r *http.Request) {
	recordID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid attendance ID")
		return
	}

	var req struct {
		CheckIn  *time.Time `json:"checkIn"`
		CheckOut *time.Time `json:"checkOut"`
		Note     *string    `json:"note"`
		Location *string    `json:"location"`
	}
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var record models.Attendance
	if err := attendanceCollection.FindOne(ctx, bson.M{"_id": recordID}).Decode(&record); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "Attendance record not found")
			return
		}
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to fetch attendance", err)
		return
	}

	updateFields := bson.M{"updatedAt": time.Now().UTC()}

	checkIn := record.CheckIn
	checkOut := record.CheckOut
	if req.CheckIn != nil {
		checkIn = req.CheckIn
		updateFields["checkIn"] = req.CheckIn
	}
	if req.CheckOut != nil {
		checkOut = req.CheckOut
		updateFields["checkOut"] = req.CheckOut
	}
	if req.Note != nil {
		updateFields["note"] = *req.Note
	}
	if req.Location != nil {
		updateFields["location"] = *req.Location
	}

	if checkIn != nil && checkOut != nil {
		updateFields["durationMinutes"] = computeDurationMinutes(*checkIn, *checkOut)
	}

	if _, err := attendanceCollection.UpdateOne(ctx, bson.M{"_id": recordID}, bson.M{"$set": updateFields}); err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to update attendance", err)
		return
	}

	if err := attendanceCollection.FindOne(ctx, bson.M{"_id": recordID}).Decode(&record); err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to fetch updated attendance", err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, record)
}

// DeleteAttendance removes a record. Route floor: admin.
func DeleteAttendance(w http.ResponseWriter, r *http.Request) {
	recordID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid attendance ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result, err := attendanceCollection.DeleteOne(ctx, bson.M{"_id": recordID})
	if err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to delete attendance", err)
		return
	}
	if result.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Attendance record not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Attendance record deleted successfully",
	})
}
