// handlers/project_handler.go
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

type CreateProjectRequest struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Description string   `json:"description"`
	Client      string   `json:"client"`
	Status      string   `json:"status" validate:"omitempty,oneof=active on-hold completed cancelled"`
	Priority    string   `json:"priority" validate:"omitempty,oneof=low medium high"`
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate"`
	Budget      float64  `json:"budget"`
	TeamMembers []string `json:"teamMembers"`
}

// parseDatePointer parses an optional YYYY-MM-DD request field.
func parseDatePointer(dateStr string) (*time.Time, error) {
	if dateStr == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func CreateProject(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := actingUser(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateProjectRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	var clientID *primitive.ObjectID
	if req.Client != "" {
		id, err := primitive.ObjectIDFromHex(req.Client)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid client ID")
			return
		}
		clientID = &id
	}

	startDate, err := parseDatePointer(req.StartDate)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid start date, expected YYYY-MM-DD")
		return
	}
	endDate, err := parseDatePointer(req.EndDate)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid end date, expected YYYY-MM-DD")
		return
	}

	status := req.Status
	if status == "" {
		status = models.ProjectActive
	}
	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	team := make([]models.TeamMember, 0, len(req.TeamMembers))
	for _, idHex := range req.TeamMembers {
		memberID, err := primitive.ObjectIDFromHex(idHex)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid team member ID: "+idHex)
			return
		}
		team = append(team, models.TeamMember{User: memberID, Role: "member"})
	}

	now := time.Now().UTC()
	project := models.Project{
		ID:          primitive.NewObjectID(),
		User:        userID,
		Client:      clientID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Status:      status,
		Priority:    priority,
		StartDate:   startDate,
		EndDate:     endDate,
		Budget:      req.Budget,
		Progress:    0,
		Tasks:       []models.Task{},
		TeamMembers: team,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if _, err := projectCollection.InsertOne(ctx, project); err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to create project", err)
		return
	}

	logger.WithField("projectID", project.ID.Hex()).Info("project created")
	utils.RespondWithJSON(w, http.StatusCreated, project)
}

func ListProjects(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := actingUser(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	filter := policy.ScopeFilter(policy.ResourceProjects, role, userID)
	query := r.URL.Query()

	if status := query.Get("status"); status != "" && status != "all" {
		filter["status"] = status
	}
	if priority := query.Get("priority"); priority != "" && priority != "all" {
		filter["priority"] = priority
	}
	if clientHex := query.Get("client"); clientHex != "" {
		if clientID, err := primitive.ObjectIDFromHex(clientHex); err == nil {
			filter["client"] = clientID
		}
	}

	if search := query.Get("search"); search != "" {
		filter["$or"] = []bson.M{
			{"name": bson.M{"$regex": search, "$options": "i"}},
			{"description": bson.M{"$regex": search, "$options": "i"}},
		}
	}

	limit, skip := parsePagination(r)

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(skip))

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := projectCollection.Find(ctx, filter, opts)
	if err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to fetch projects", err)
		return
	}
	defer cursor.Close(ctx)

	var projects []models.Project
	if err := cursor.All(ctx, &projects); err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to decode projects", err)
		return
	}
	if projects == nil {
		projects = []models.Project{}
	}

	total, _ := projectCollection.CountDocuments(ctx, filter)

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"items": projects,
		"total": total,
		"limit": limit,
		"skip":  skip,
	})
}

func GetProject(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := actingUser(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	projectID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	filter := policy.ScopeFilter(policy.ResourceProjects, role, userID)
	filter["_id"] = projectID

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var project models.Project
	if err := projectCollection.FindOne(ctx, filter).Decode(&project); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Project not found")
		return
	}

	tasks, err := loadProjectTasks(ctx, project.ID)
	if err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to fetch project tasks", err)
		return
	}
	project.Tasks = tasks

	utils.RespondWithJSON(w, http.StatusOK, project)
}

func UpdateProject(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := actingUser(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	projectID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	var req struct {
		Name        string   `json:"name"`
		Description *string  `json:"description"`
		Client      string   `json:"client"`
		Status      string   `json:"status" validate:"omitempty,oneof=active on-hold completed cancelled"`
		Priority    string   `json:"priority" validate:"omitempty,oneof=low medium high"`
		StartDate   string   `json:"startDate"`
		EndDate     string   `json:"endDate"`
		Budget      *float64 `json:"budget"`
		TeamMembers []string `json:"teamMembers"`
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
	if req.Description != nil {
		updateFields["description"] = *req.Description
	}
	if req.Client != "" {
		clientID, err := primitive.ObjectIDFromHex(req.Client)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid client ID")
			return
		}
		updateFields["client"] = clientID
	}
	if req.Status != "" {
		updateFields["status"] = req.Status
	}
	if req.Priority != "" {
		updateFields["priority"] = req.Priority
	}
	if req.StartDate != "" {
		startDate, err := parseDatePointer(req.StartDate)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid start date, expected YYYY-MM-DD")
			return
		}
		updateFields["startDate"] = startDate
	}
	if req.EndDate != "" {
		endDate, err := parseDatePointer(req.EndDate)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid end date, expected YYYY-MM-DD")
			return
		}
		updateFields["endDate"] = endDate
	}
	if req.Budget != nil {
		updateFields["budget"] = *req.Budget
	}
	if req.TeamMembers != nil {
		team := make([]models.TeamMember, 0, len(req.TeamMembers))
		for _, idHex := range req.TeamMembers {
			memberID, err := primitive.ObjectIDFromHex(idHex)
			if err != nil {
				utils.RespondWithError(w, http.StatusBadRequest, "Invalid team member ID: "+idHex)
				return
			}
			team = append(team, models.TeamMember{User: memberID, Role: "member"})
		}
		updateFields["teamMembers"] = team
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var existing models.Project
	if err := projectCollection.FindOne(ctx, bson.M{"_id": projectID}).Decode(&existing); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "Project not found")
			return
		}
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to fetch project", err)
		return
	}

	if !policy.CanWrite(policy.ResourceProjects, role, existing.User == userID) {
		utils.RespondWithError(w, http.StatusForbidden, "You do not have permission to update this project")
		return
	}

	if _, err := projectCollection.UpdateOne(ctx, bson.M{"_id": projectID}, bson.M{"$set": updateFields}); err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to update project", err)
		return
	}

	var project models.Project
	if err := projectCollection.FindOne(ctx, bson.M{"_id": projectID}).Decode(&project); err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to fetch updated project", err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, project)
}

func DeleteProject(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := actingUser(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	projectID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var project models.Project
	if err := projectCollection.FindOne(ctx, bson.M{"_id": projectID}).Decode(&project); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "Project not found")
			return
		}
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to fetch project", err)
		return
	}

	if !policy.CanDelete(policy.ResourceProjects, role, project.User == userID) {
		utils.RespondWithError(w, http.StatusForbidden, "Only the project creator or an admin can delete it")
		return
	}

	if _, err := projectCollection.DeleteOne(ctx, bson.M{"_id": projectID}); err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to delete project", err)
		return
	}

	// Orphaned tasks stay around as standalone tasks
	if _, err := taskCollection.UpdateMany(ctx, bson.M{"project": projectID}, bson.M{"$unset": bson.M{"project": ""}}); err != nil {
		logger.Get().Warnf("Failed to unlink tasks for deleted project %s: %v", projectID.Hex(), err)
	}

	logger.WithField("projectID", projectID.Hex()).Info("project deleted")
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Project deleted successfully",
	})
}

// loadScopedProject is shared by the project-task handlers.
func loadScopedProject(ctx context.Context, r *http.Request) (*models.Project, int, string) {
	userID, role, ok := actingUser(r)
	if !ok {
		return nil, http.StatusUnauthorized, "Authentication required"
	}

	projectID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		return nil, http.StatusBadRequest, "Invalid project ID"
	}

	filter := policy.ScopeFilter(policy.ResourceProjects, role, userID)
	filter["_id"] = projectID

	var project models.Project
	if err := projectCollection.FindOne(ctx, filter).Decode(&project); err != nil {
		return nil, http.StatusNotFound, "Project not found"
	}
	return &project, 0, ""
}

// loadProjectTasks fetches a project's tasks, oldest first.
func loadProjectTasks(ctx context.Context, projectID primitive.ObjectID) ([]models.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := taskCollection.Find(ctx, bson.M{"project": projectID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tasks []models.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

// recomputeProjectProgress re-derives the progress invariant from the
// project's tasks after any of them changed, and returns the refreshed
// project with its task list attached.
func recomputeProjectProgress(ctx context.Context, projectID primitive.ObjectID) (*models.Project, error) {
	tasks, err := loadProjectTasks(ctx, projectID)
	if err != nil {
		return nil, err
	}

	_, err = projectCollection.UpdateOne(ctx,
		bson.M{"_id": projectID},
		bson.M{"$set": bson.M{
			"progress":  models.ComputeProgress(tasks),
			"updatedAt": time.Now().UTC(),
		}},
	)
	if err != nil {
		return nil, err
	}

	var project models.Project
	if err := projectCollection.FindOne(ctx, bson.M{"_id": projectID}).Decode(&project); err != nil {
		return nil, err
	}
	project.Tasks = tasks
	return &project, nil
}

type projectTaskRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description"`
	Status      string `json:"status" validate:"omitempty,oneof=pending in-progress completed blocked"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low medium high"`
	Assignee    string `json:"assignee"`
	DueDate     string `json:"dueDate"`
}

// AddProjectTask creates a task bound to the project. Project tasks are
// ordinary task documents; this route just scopes and pre-links them.
func AddProjectTask(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := actingUser(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	project, code, msg := loadScopedProject(ctx, r)
	if project == nil {
		utils.RespondWithError(w, code, msg)
		return
	}

	var req projectTaskRequest
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
		ID:          primitive.NewObjectID(),
		User:        userID,
		Project:     &project.ID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Status:      status,
		Priority:    priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if status == models.TaskCompleted {
		task.CompletedAt = &now
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

	if _, err := taskCollection.InsertOne(ctx, task); err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to add task", err)
		return
	}

	updated, err := recomputeProjectProgress(ctx, project.ID)
	if err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to update project progress", err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, updated)
}

func UpdateProjectTask(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	project, code, msg := loadScopedProject(ctx, r)
	if project == nil {
		utils.RespondWithError(w, code, msg)
		return
	}

	taskID, err := primitive.ObjectIDFromHex(mux.Vars(r)["taskId"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid task ID")
		return
	}

	var req struct {
		Title       string  `json:"title"`
		Description *string `json:"description"`
		Status      string  `json:"status" validate:"omitempty,oneof=pending in-progress completed blocked"`
		Priority    string  `json:"priority" validate:"omitempty,oneof=low medium high"`
		Assignee    string  `json:"assignee"`
		DueDate     string  `json:"dueDate"`
	}
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	var task models.Task
	if err := taskCollection.FindOne(ctx, bson.M{"_id": taskID, "project": project.ID}).Decode(&task); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Task not found in project")
		return
	}

	updateFields := bson.M{"updatedAt": time.Now().UTC()}
	if req.Title != "" {
		updateFields["title"] = strings.TrimSpace(req.Title)
	}
	if req.Description != nil {
		updateFields["description"] = *req.Description
	}
	if req.Status != "" && req.Status != task.Status {
		applyStatusTransition(&task, req.Status, time.Now().UTC())
		updateFields["status"] = task.Status
		updateFields["completedAt"] = task.CompletedAt
	}
	if req.Priority != "" {
		updateFields["priority"] = req.Priority
	}
	if req.Assignee != "" {
		assigneeID, err := primitive.ObjectIDFromHex(req.Assignee)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid assignee ID")
			return
		}
		updateFields["assignee"] = assigneeID
	}
	if req.DueDate != "" {
		dueDate, err := parseDatePointer(req.DueDate)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid due date, expected YYYY-MM-DD")
			return
		}
		updateFields["dueDate"] = dueDate
	}

	if _, err := taskCollection.UpdateOne(ctx, bson.M{"_id": taskID}, bson.M{"$set": updateFields}); err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to update task", err)
		return
	}

	updated, err := recomputeProjectProgress(ctx, project.ID)
	if err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to update project progress", err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, updated)
}

func DeleteProjectTask(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	project, code, msg := loadScopedProject(ctx, r)
	if project == nil {
		utils.RespondWithError(w, code, msg)
		return
	}

	taskID, err := primitive.ObjectIDFromHex(mux.Vars(r)["taskId"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid task ID")
		return
	}

	result, err := taskCollection.DeleteOne(ctx, bson.M{"_id": taskID, "project": project.ID})
	if err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to delete task", err)
		return
	}
	if result.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Task not found in project")
		return
	}

	updated, err := recomputeProjectProgress(ctx, project.ID)
	if err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to update project progress", err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, updated)
}
