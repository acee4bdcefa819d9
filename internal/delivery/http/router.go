package http

import (
	"net/http"

	"medicare-backend/internal/delivery/http/handler"
	"medicare-backend/internal/delivery/http/middleware"
	"medicare-backend/internal/delivery/ws"

	"github.com/gorilla/mux"
)

type Router struct {
	router             *mux.Router
	authHandler        *handler.AuthHandler
	appointmentHandler *handler.AppointmentHandler
	chatHandler        *handler.ChatHandler
	adminHandler       *handler.AdminHandler
	hospitalHandler    *handler.HospitalHandler
	gateway            *ws.Gateway
	authMiddleware     *middleware.AuthMiddleware
	corsMiddleware     *middleware.CORSMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	appointmentHandler *handler.AppointmentHandler,
	chatHandler *handler.ChatHandler,
	adminHandler *handler.AdminHandler,
	hospitalHandler *handler.HospitalHandler,
	gateway *ws.Gateway,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:             mux.NewRouter(),
		authHandler:        authHandler,
		appointmentHandler: appointmentHandler,
		chatHandler:        chatHandler,
		adminHandler:       adminHandler,
		hospitalHandler:    hospitalHandler,
		gateway:            gateway,
		authMiddleware:     authMiddleware,
		corsMiddleware:     corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// WebSocket gateway; authenticates itself via query-string token
	r.router.HandleFunc("/ws", r.gateway.HandleConnection)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", r.authHandler.Register).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.Me).Methods(http.MethodGet)
	authProtected.HandleFunc("/profile", r.authHandler.UpdateProfile).Methods(http.MethodPut)

	// Appointment routes (protected)
	appointments := api.PathPrefix("/appointments").Subrouter()
	appointments.Use(r.authMiddleware.Authenticate)
	appointments.HandleFunc("", r.appointmentHandler.List).Methods(http.MethodGet)
	appointments.HandleFunc("", r.appointmentHandler.Create).Methods(http.MethodPost)
	appointments.HandleFunc("/available/{doctorId}/{date}", r.appointmentHandler.AvailableSlots).Methods(http.MethodGet)
	appointments.HandleFunc("/{id}", r.appointmentHandler.Update).Methods(http.MethodPut)
	appointments.HandleFunc("/{id}", r.appointmentHandler.Delete).Methods(http.MethodDelete)

	// Chat routes (protected)
	chats := api.PathPrefix("/chats").Subrouter()
	chats.Use(r.authMiddleware.Authenticate)
	chats.HandleFunc("", r.chatHandler.List).Methods(http.MethodGet)
	chats.HandleFunc("", r.chatHandler.Create).Methods(http.MethodPost)
	chats.HandleFunc("/{id}/messages", r.chatHandler.Messages).Methods(http.MethodGet)
	chats.HandleFunc("/{id}/messages", r.chatHandler.SendMessage).Methods(http.MethodPost)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)

	// User management (admin)
	admin.HandleFunc("/users", r.adminHandler.ListUsers).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id}", r.adminHandler.GetUser).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id}", r.adminHandler.UpdateUser).Methods(http.MethodPut)
	admin.HandleFunc("/users/{id}", r.adminHandler.DeleteUser).Methods(http.MethodDelete)
	admin.HandleFunc("/users/{id}/deactivate", r.adminHandler.DeactivateUser).Methods(http.MethodPost)
	admin.HandleFunc("/users/{id}/reset-password", r.adminHandler.ResetUserPassword).Methods(http.MethodPost)
	admin.HandleFunc("/doctors/{id}/verify", r.adminHandler.VerifyDoctor).Methods(http.MethodPost)

	// Appointment oversight (admin)
	admin.HandleFunc("/appointments", r.adminHandler.ListAppointments).Methods(http.MethodGet)
	admin.HandleFunc("/appointments/stats", r.adminHandler.AppointmentStats).Methods(http.MethodGet)
	admin.HandleFunc("/appointments/{id}/status", r.adminHandler.OverrideAppointmentStatus).Methods(http.MethodPut)
	admin.HandleFunc("/appointments/{id}", r.adminHandler.CancelAppointment).Methods(http.MethodDelete)

	// Hospital management (admin)
	admin.HandleFunc("/hospitals", r.hospitalHandler.List).Methods(http.MethodGet)
	admin.HandleFunc("/hospitals", r.hospitalHandler.Create).Methods(http.MethodPost)
	admin.HandleFunc("/hospitals/{id}", r.hospitalHandler.Get).Methods(http.MethodGet)
	admin.HandleFunc("/hospitals/{id}", r.hospitalHandler.Update).Methods(http.MethodPut)
	admin.HandleFunc("/hospitals/{id}", r.hospitalHandler.Delete).Methods(http.MethodDelete)

	// System settings (admin)
	admin.HandleFunc("/settings", r.adminHandler.GetSettings).Methods(http.MethodGet)
	admin.HandleFunc("/settings", r.adminHandler.UpdateSettings).Methods(http.MethodPut)

	// Audit trail (admin)
	admin.HandleFunc("/audit-logs", r.adminHandler.ListAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id}", r.adminHandler.GetAuditLog).Methods(http.MethodGet)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
