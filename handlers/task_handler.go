// handlers/task_handler.go
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

type CreateTaskRequest struct {
	Title          string   `json:"title" validate:"required,max=200"`
	Description    string   `json:"description"`
	Project        string   `json:"project"`
	Assignee       string   `json:"assignee"`
	Status         string   `json:"status" validate:"omitempty,oneof=pending in-progress completed blocked"`
	Priority       string   `json:"priority" validate:"omitempty,oneof=low medium high"`
	Labels         []string `json:"labels"`
	Tags           []string `json:"tags"`
	DueDate        string   `json:"dueDate"`
	EstimatedHours float64  `json:"estimatedHours"`
	Dependencies   []string `json:"dependencies"`
}

// applyStatusTransition keeps completedAt consistent with status: it is set
// exactly when the task enters completed and cleared when it leaves.
func applyStatusTransition(task *models.Task, newStatus string, now time.Time) {
	old := task.Status
	task.Status = newStatus

	if newStatus == models.TaskCompleted && old != models.TaskCompleted {
		completedAt := now
		task.CompletedAt = &completedAt
	} else if newStatus != models.TaskCompleted {
		task.CompletedAt = nil
	}
}

func CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := actingUser(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateTaskRequest
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
		status = models.TaskPending
	}
	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	now := time.Now().UTC()
	task := models.Task{
		ID:             primitive.NewObjectID(),
		User:           userID,
		Title:          strings.TrimSpace(req.Title),
		Description:    req.Description,
		Status:         status,
		Priority:       priority,
		Labels:         req.Labels,
		Tags:           req.Tags,
		EstimatedHours: req.EstimatedHours,
		TotalTimeSpent: 0,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if task.Status == models.TaskCompleted {
		task.CompletedAt = &now
	}

	if req.Project != "" {
		projectID, err := primitive.ObjectIDFromHex(req.Project)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid project ID")
			return
		}
		task.Project = &projectID
	}
	if req.Assignee != "" {
		assigneeID, err := primitive.ObjectIDFromHex(req.Assignee)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid assignee ID")
			return
		}
		task.Assignee = &assigneeID
	}
	if req.DueDate != "" {
		dueDate, err := parseDatePointer(req.DueDate)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid due date, expected YYYY-MM-DD")
			return
		}
		task.DueDate = dueDate
	}
	for _, depHex := range req.Dependencies {
		depID, err := primitive.ObjectIDFromHex(depHex)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid dependency ID: "+depHex)
			return
		}
		task.Dependencies = append(task.Dependencies, depID)
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if _, err := taskCollection.InsertOne(ctx, task); err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to create task", err)
		return
	}

	if task.Project != nil {
		if _, err := recomputeProjectProgress(ctx, *task.Project); err != nil {
			logger.Get().Warnf("Failed to recompute progress for project %s: %v", task.Project.Hex(), err)
		}
	}

	logger.WithField("taskID", task.ID.Hex()).Info("task created")
	utils.RespondWithJSON(w, http.StatusCreated, task)
}

func ListTasks(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := actingUser(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	// The employee scope is itself an $or, so extra disjunctions are
	// combined with $and instead of overwriting it
	scope := policy.ScopeFilter(policy.ResourceTasks, role, userID)
	conditions := []bson.M{scope}
	query := r.URL.Query()

	if status := query.Get("status"); status != "" && status != "all" {
		conditions = append(conditions, bson.M{"status": status})
	}
	if priority := query.Get("priority"); priority != "" && priority != "all" {
		conditions = append(conditions, bson.M{"priority": priority})
	}
	if projectHex := query.Get("project"); projectHex != "" {
		if projectID, err := primitive.ObjectIDFromHex(projectHex); err == nil {
			conditions = append(conditions, bson.M{"project": projectID})
		}
	}
	if assigneeHex := query.Get("assignee"); assigneeHex != "" {
		if assigneeID, err := primitive.ObjectIDFromHex(assigneeHex); err == nil {
			conditions = append(conditions, bson.M{"assignee": assigneeID})
		}
	}

	if search := query.Get("search"); search != "" {
		conditions = append(conditions, bson.M{"$or": []bson.M{
			{"title": bson.M{"$regex": search, "$options": "i"}},
			{"description": bson.M{"$regex": search, "$options": "i"}},
			{"labels": bson.M{"$regex": search, "$options": "i"}},
			{"tags": bson.M{"$regex": search, "$options": "i"}},
		}})
	}

	filter := bson.M{"$and": conditions}

	limit, skip := parsePagination(r)

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(skip))

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := taskCollection.Find(ctx, filter, opts)
	if err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to fetch tasks", err)
		return
	}
	defer cursor.Close(ctx)

	var tasks []models.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to decode tasks", err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}

	total, _ := taskCollection.CountDocuments(ctx, filter)

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"items": tasks,
		"total": total,
		"limit": limit,
		"skip":  skip,
	})
}

// loadScopedTask fetches a task the acting user may see, or explains why not.
func loadScopedTask(ctx context.Context, r *http.Request) (*models.Task, int, string) {
	userID, role, ok := actingUser(r)
	if !ok {
		return nil, http.StatusUnauthorized, "Authentication required"
	}

	taskID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		return nil, http.StatusBadRequest, "Invalid task ID"
	}

	filter := bson.M{"$and": []bson.M{
		policy.ScopeFilter(policy.ResourceTasks, role, userID),
		{"_id": taskID},
	}}

	var task models.Task
	if err := taskCollection.FindOne(ctx, filter).Decode(&task); err != nil {
		return nil, http.StatusNotFound, "Task not found"
	}
	return &task, 0, ""
}

func GetTask(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	task, code, msg := loadScopedTask(ctx, r)
	if task == nil {
		utils.RespondWithError(w, code, msg)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, task)
}

func UpdateTask(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	task, code, msg := loadScopedTask(ctx, r)
	if task == nil {
		utils.RespondWithError(w, code, msg)
		return
	}

	var req struct {
		Title          string   `json:"title"`
		Description    *string  `json:"description"`
		Project        string   `json:"project"`
		Assignee       string   `json:"assignee"`
		Status         string   `json:"status" validate:"omitempty,oneof=pending in-progress completed blocked"`
		Priority       string   `json:"priority" validate:"omitempty,oneof=low medium high"`
		Labels         []string `json:"labels"`
		Tags           []string `json:"tags"`
		DueDate        string   `json:"dueDate"`
		EstimatedHours *float64 `json:"estimatedHours"`
		ActualHours    *float64 `json:"actualHours"`
		Dependencies   []string `json:"dependencies"`
	}
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now().UTC()
	updateFields := bson.M{"updatedAt": now}

	if req.Title != "" {
		updateFields["title"] = strings.TrimSpace(req.Title)
	}
	if req.Description != nil {
		updateFields["description"] = *req.Description
	}
	if req.Project != "" {
		projectID, err := primitive.ObjectIDFromHex(req.Project)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid project ID")
			return
		}
		updateFields["project"] = projectID
	}
	if req.Assignee != "" {
		assigneeID, err := primitive.ObjectIDFromHex(req.Assignee)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid assignee ID")
			return
		}
		updateFields["assignee"] = assigneeID
	}
	if req.Status != "" && req.Status != task.Status {
		applyStatusTransition(task, req.Status, now)
		updateFields["status"] = task.Status
		updateFields["completedAt"] = task.CompletedAt
	}
	if req.Priority != "" {
		updateFields["priority"] = req.Priority
	}
	if req.Labels != nil {
		updateFields["labels"] = req.Labels
	}
	if req.Tags != nil {
		updateFields["tags"] = req.Tags
	}
	if req.DueDate != "" {
		dueDate, err := parseDatePointer(req.DueDate)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid due date, expected YYYY-MM-DD")
			return
		}
		updateFields["dueDate"] = dueDate
	}
	if req.EstimatedHours != nil {
		updateFields["estimatedHours"] = *req.EstimatedHours
	}
	if req.ActualHours != nil {
		updateFields["actualHours"] = *req.ActualHours
	}
	if req.Dependencies != nil {
		deps := make([]primitive.ObjectID, 0, len(req.Dependencies))
		for _, depHex := range req.Dependencies {
			depID, err := primitive.ObjectIDFromHex(depHex)
			if err != nil {
				utils.RespondWithError(w, http.StatusBadRequest, "Invalid dependency ID: "+depHex)
				return
			}
			deps = append(deps, depID)
		}
		updateFields["dependencies"] = deps
	}

	if _, err := taskCollection.UpdateOne(ctx, bson.M{"_id": task.ID}, bson.M{"$set": updateFields}); err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to update task", err)
		return
	}

	var updated models.Task
	if err := taskCollection.FindOne(ctx, bson.M{"_id": task.ID}).Decode(&updated); err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to fetch updated task", err)
		return
	}

	// Status or project changes affect the linked projects' progress
	for _, projectID := range affectedProjects(task.Project, updated.Project) {
		if _, err := recomputeProjectProgress(ctx, projectID); err != nil {
			logger.Get().Warnf("Failed to recompute progress for project %s: %v", projectID.Hex(), err)
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, updated)
}

// affectedProjects deduplicates the before/after project references of an
// updated task.
func affectedProjects(before, after *primitive.ObjectID) []primitive.ObjectID {
	var ids []primitive.ObjectID
	if before != nil {
		ids = append(ids, *before)
	}
	if after != nil && (before == nil || *after != *before) {
		ids = append(ids, *after)
	}
	return ids
}

func DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := actingUser(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	taskID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid task ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var task models.Task
	if err := taskCollection.FindOne(ctx, bson.M{"_id": taskID}).Decode(&task); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "Task not found")
			return
		}
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to fetch task", err)
		return
	}

	if !policy.CanDelete(policy.ResourceTasks, role, task.User == userID) {
		utils.RespondWithError(w, http.StatusForbidden, "Only the task creator or an admin can delete it")
		return
	}

	if _, err := taskCollection.DeleteOne(ctx, bson.M{"_id": taskID}); err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to delete task", err)
		return
	}

	if task.Project != nil {
		if _, err := recomputeProjectProgress(ctx, *task.Project); err != nil {
			logger.Get().Warnf("Failed to recompute progress for project %s: %v", task.Project.Hex(), err)
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Task deleted successfully",
	})
}

// AddTaskComment appends an immutable comment with author and timestamp.
func AddTaskComment(w http.ResponseWriter, r *http.Request) {
	userID, _, _ := actingUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	task, code, msg := loadScopedTask(ctx, r)
	if task == nil {
		utils.RespondWithError(w, code, msg)
		return
	}

	var req struct {
		Text string `json:"text" validate:"required,max=2000"`
	}
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		Author:    userID,
		Text:      req.Text,
		CreatedAt: time.Now().UTC(),
	}

	_, err := taskCollection.UpdateOne(ctx,
		bson.M{"_id": task.ID},
		bson.M{
			"$push": bson.M{"comments": comment},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to add comment", err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, comment)
}

// LogTaskTime appends a time entry and bumps the running total.
func LogTaskTime(w http.ResponseWriter, r *http.Request) {
	userID, _, _ := actingUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	task, code, msg := loadScopedTask(ctx, r)
	if task == nil {
		utils.RespondWithError(w, code, msg)
		return
	}

	var req struct {
		Hours float64 `json:"hours" validate:"required,gt=0"`
		Note  string  `json:"note"`
	}
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry := models.TimeEntry{
		ID:        primitive.NewObjectID(),
		User:      userID,
		Hours:     req.Hours,
		Note:      req.Note,
		CreatedAt: time.Now().UTC(),
	}

	_, err := taskCollection.UpdateOne(ctx,
		bson.M{"_id": task.ID},
		bson.M{
			"$push": bson.M{"timeEntries": entry},
			"$inc":  bson.M{"totalTimeSpent": req.Hours},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to log time", err)
		return
	}

	var updated models.Task
	if err := taskCollection.FindOne(ctx, bson.M{"_id": task.ID}).Decode(&updated); err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to fetch updated task", err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"entry":          entry,
		"totalTimeSpent": updated.TotalTimeSpent,
	})
}
