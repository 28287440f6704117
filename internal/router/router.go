package router

import (
	"net/http"

	"github.com/BerylCAtieno/documind/internal/handlers"
	"github.com/BerylCAtieno/documind/internal/middleware"
	"github.com/BerylCAtieno/documind/internal/services"
	"github.com/BerylCAtieno/documind/internal/utils"

	"github.com/gorilla/mux"
)

func NewRouter(docService services.DocumentService, userService services.UserService, maxFileSize int64, logger *utils.Logger) http.Handler {
	r := mux.NewRouter()

	// Middlewares
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))

	docHandler := handlers.NewDocumentHandler(docService, maxFileSize, logger)
	authHandler := handlers.NewAuthHandler(userService, logger)

	api := r.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	// Sessions
	api.HandleFunc("/sessions", docHandler.CreateSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}", docHandler.GetSession).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", docHandler.CloseSession).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{id}/notice", docHandler.DismissNotices).Methods(http.MethodDelete)

	// Documents
	api.HandleFunc("/sessions/{id}/document", docHandler.UploadDocument).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/document/preview", docHandler.Preview).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/debug", docHandler.Debug).Methods(http.MethodGet)

	// Analysis
	api.HandleFunc("/sessions/{id}/analysis", docHandler.AnalyzeDocument).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/advanced", docHandler.RunAdvanced).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/chat", docHandler.Chat).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/reports", docHandler.Reports).Methods(http.MethodGet)

	// Exports
	api.HandleFunc("/sessions/{id}/export/{kind:analysis|chat}", docHandler.Export).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/archive/{filename}", docHandler.DownloadArchive).Methods(http.MethodGet)

	api.HandleFunc("/history", docHandler.History).Methods(http.MethodGet)

	// Users
	api.HandleFunc("/auth/signup", authHandler.SignUp).Methods(http.MethodPost)
	api.HandleFunc("/auth/signin", authHandler.SignIn).Methods(http.MethodPost)

	// CORS wraps the router so preflight requests are answered even though
	// no route matches OPTIONS.
	return middleware.CORS()(r)
}
