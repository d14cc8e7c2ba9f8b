package routes

import (
	"github.com/gorilla/mux"

	"crmhub/handlers"
	"crmhub/middleware"
	"crmhub/models"
	"crmhub/websocket"
)

// HTTP method constants for better maintainability
var (
	MethodsGetOnly    = []string{"GET", "OPTIONS"}
	MethodsPostOnly   = []string{"POST", "OPTIONS"}
	MethodsPutOnly    = []string{"PUT", "OPTIONS"}
	MethodsDeleteOnly = []string{"DELETE", "OPTIONS"}
)

func RegisterRoutes(r *mux.Router) {
	// ====================
	// HEALTH CHECK (Public)
	// ====================
	r.HandleFunc("/api/health", handlers.HealthCheck).Methods(MethodsGetOnly...)

	// ====================
	// AUTHENTICATION ROUTES (Public - No auth required)
	// ====================
	r.HandleFunc("/api/auth/send-otp", handlers.SendOTP).Methods(MethodsPostOnly...)
	r.HandleFunc("/api/auth/resend-otp", handlers.ResendOTP).Methods(MethodsPostOnly...)
	r.HandleFunc("/api/auth/verify-otp", handlers.VerifyOTP).Methods(MethodsPostOnly...)
	r.HandleFunc("/api/auth/login", handlers.Login).Methods(MethodsPostOnly...)

	// WebSocket endpoint validates its own token (query param)
	r.HandleFunc("/api/ws", websocket.ServeWS)

	// ====================
	// PROTECTED API ROUTES (employee floor)
	// ====================
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.AuthMiddleware)

	// Manager and admin floors are separate subrouters so each endpoint's
	// guard chain is explicit: auth → role floor → handler
	managerAPI := api.PathPrefix("").Subrouter()
	managerAPI.Use(middleware.RequireRole(models.RoleManager))

	adminAPI := api.PathPrefix("").Subrouter()
	adminAPI.Use(middleware.RequireRole(models.RoleAdmin))

	// ====================
	// CURRENT USER
	// ====================
	api.HandleFunc("/auth/me", handlers.GetCurrentUser).Methods(MethodsGetOnly...)
	api.HandleFunc("/auth/change-password", handlers.ChangePassword).Methods(MethodsPostOnly...)

	// ====================
	// USER MANAGEMENT
	// ====================
	managerAPI.HandleFunc("/users", handlers.ListUsers).Methods(MethodsGetOnly...)
	api.HandleFunc("/users/{id}", handlers.GetUser).Methods(MethodsGetOnly...)
	api.HandleFunc("/users/{id}", handlers.UpdateUser).Methods(MethodsPutOnly...)
	adminAPI.HandleFunc("/users/{id}", handlers.DeleteUser).Methods(MethodsDeleteOnly...)

	// ====================
	// ATTENDANCE
	// ====================
	api.HandleFunc("/attendance/checkin", handlers.CheckIn).Methods(MethodsPostOnly...)
	api.HandleFunc("/attendance/checkout", handlers.CheckOut).Methods(MethodsPostOnly...)
	api.HandleFunc("/attendance/my-attendance", handlers.GetMyAttendance).Methods(MethodsGetOnly...)
	managerAPI.HandleFunc("/attendance/all", handlers.GetAllAttendance).Methods(MethodsGetOnly...)
	managerAPI.HandleFunc("/attendance/{id}", handlers.GetAttendance).Methods(MethodsGetOnly...)
	managerAPI.HandleFunc("/attendance/{id}", handlers.UpdateAttendance).Methods(MethodsPutOnly...)
	adminAPI.HandleFunc("/attendance/{id}", handlers.DeleteAttendance).Methods(MethodsDeleteOnly...)

	// ====================
	// CLIENTS
	// ====================
	api.HandleFunc("/clients", handlers.ListClients).Methods(MethodsGetOnly...)
	api.HandleFunc("/clients", handlers.CreateClient).Methods(MethodsPostOnly...)
	api.HandleFunc("/clients/{id}", handlers.GetClient).Methods(MethodsGetOnly...)
	api.HandleFunc("/clients/{id}", handlers.UpdateClient).Methods(MethodsPutOnly...)
	adminAPI.HandleFunc("/clients/{id}", handlers.DeleteClient).Methods(MethodsDeleteOnly...)

	// ====================
	// PROJECTS (with task subroutes)
	// ====================
	api.HandleFunc("/projects", handlers.ListProjects).Methods(MethodsGetOnly...)
	api.HandleFunc("/projects", handlers.CreateProject).Methods(MethodsPostOnly...)
	api.HandleFunc("/projects/{id}", handlers.GetProject).Methods(MethodsGetOnly...)
	api.HandleFunc("/projects/{id}", handlers.UpdateProject).Methods(MethodsPutOnly...)
	api.HandleFunc("/projects/{id}", handlers.DeleteProject).Methods(MethodsDeleteOnly...)
	api.HandleFunc("/projects/{id}/tasks", handlers.AddProjectTask).Methods(MethodsPostOnly...)
	api.HandleFunc("/projects/{id}/tasks/{taskId}", handlers.UpdateProjectTask).Methods(MethodsPutOnly...)
	api.HandleFunc("/projects/{id}/tasks/{taskId}", handlers.DeleteProjectTask).Methods(MethodsDeleteOnly...)

	// ====================
	// TASKS
	// ====================
	api.HandleFunc("/tasks", handlers.ListTasks).Methods(MethodsGetOnly...)
	api.HandleFunc("/tasks", handlers.CreateTask).Methods(MethodsPostOnly...)
	api.HandleFunc("/tasks/{id}", handlers.GetTask).Methods(MethodsGetOnly...)
	api.HandleFunc("/tasks/{id}", handlers.UpdateTask).Methods(MethodsPutOnly...)
	api.HandleFunc("/tasks/{id}", handlers.DeleteTask).Methods(MethodsDeleteOnly...)
	api.HandleFunc("/tasks/{id}/comments", handlers.AddTaskComment).Methods(MethodsPostOnly...)
	api.HandleFunc("/tasks/{id}/time", handlers.LogTaskTime).Methods(MethodsPostOnly...)

	// ====================
	// NOTIFICATIONS
	// ====================
	api.HandleFunc("/notifications", handlers.ListNotifications).Methods(MethodsGetOnly...)
	managerAPI.HandleFunc("/notifications", handlers.CreateNotifications).Methods(MethodsPostOnly...)
	api.HandleFunc("/notifications/read-all", handlers.MarkAllNotificationsRead).Methods(MethodsPutOnly...)
	api.HandleFunc("/notifications/{id}/read", handlers.MarkNotificationRead).Methods(MethodsPutOnly...)
	api.HandleFunc("/notifications/{id}", handlers.DeleteNotification).Methods(MethodsDeleteOnly...)
}
