package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/krypton-oss/kryptonsec-api/internal/adapter/utils"
	"github.com/krypton-oss/kryptonsec-api/internal/api"
	"github.com/krypton-oss/kryptonsec-api/internal/auth"
	"github.com/krypton-oss/kryptonsec-api/internal/chat"
	"github.com/krypton-oss/kryptonsec-api/internal/domain/userModel"
	"github.com/krypton-oss/kryptonsec-api/internal/ingest"
	"github.com/krypton-oss/kryptonsec-api/internal/job"
	"github.com/krypton-oss/kryptonsec-api/internal/rag"
	"github.com/krypton-oss/kryptonsec-api/pkg/logger_i"
)

// UserStore is what the auth endpoints need from persistence.
type UserStore interface {
	CreateUser(ctx context.Context, u userModel.User) error
	GetByLogin(ctx context.Context, login string) (userModel.User, error)
	GetByID(ctx context.Context, id string) (userModel.User, error)
}

// ModelStore lists the completion models exposed to clients.
type ModelStore interface {
	ListActive(ctx context.Context) ([]userModel.AIModel, error)
}

type apiHandlers struct {
	users        UserStore
	models       ModelStore
	orchestrator chat.Orchestrator
	retriever    rag.Service
	jobService   *job.Service
	tracker      *ingest.StatusTracker
}

type HandlerConfig struct {
	Users        UserStore
	Models       ModelStore
	Orchestrator chat.Orchestrator
	Retriever    rag.Service
	JobService   *job.Service
	Tracker      *ingest.StatusTracker
}

var (
	handlerInstance *apiHandlers //private singleton
	once            sync.Once
	logRH           *logger_i.Logger
)

func InitHandlers(cfg HandlerConfig) {
	once.Do(func() {
		handlerInstance = &apiHandlers{
			users:        cfg.Users,
			models:       cfg.Models,
			orchestrator: cfg.Orchestrator,
			retriever:    cfg.Retriever,
			jobService:   cfg.JobService,
			tracker:      cfg.Tracker,
		}
		logRH = logger_i.NewLogger("RequestHandler")
		logRH.Info("Handlers initialized")
	})
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// RegisterHandler godoc
// @Summary      Register a new account
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      api.RegisterRequest  true  "New account details"
// @Success      200      {object}  api.MessageResponse
// @Failure      400      {object}  api.ErrorResponse   "Missing fields or taken username"
// @Router       /api/auth/register [post]
func RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		req.Username == "" || req.Password == "" || req.Email == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "", "username, email and password are required")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		logRH.Error("Hashing failed", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Hashing failed")
		return
	}

	user := userModel.User{
		Id:           utils.GetNewUUID(),
		Username:     req.Username,
		Fullname:     req.Fullname,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         userModel.RoleUser,
	}
	if err := handlerInstance.users.CreateUser(r.Context(), user); err != nil {
		respondServiceError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, api.MessageResponse{Message: "User registered successfully"})
}

// LoginHandler godoc
// @Summary      Log in with username or email
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      api.LoginRequest  true  "Credentials"
// @Success      200      {object}  api.AuthResponse
// @Failure      401      {object}  api.ErrorResponse  "Invalid credentials"
// @Router       /api/auth/login [post]
func LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "", "username and password are required")
		return
	}

	user, err := handlerInstance.users.GetByLogin(r.Context(), req.Username)
	if err != nil || !auth.VerifyPassword(req.Password, user.PasswordHash) {
		WriteErrorResponse(w, http.StatusUnauthorized, "", "Invalid credentials")
		return
	}

	token, err := auth.CreateToken(user.Id, user.Username, user.Role)
	if err != nil {
		logRH.Error("Token creation failed", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Token creation failed")
		return
	}
	writeJsonResponse(w, http.StatusOK, api.AuthResponse{
		Token:    token,
		Username: user.Username,
		Role:     user.Role,
	})
}

// ProfileHandler godoc
// @Summary      Current account profile
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  userModel.User
// @Failure      404  {object}  api.ErrorResponse
// @Security     BearerAuth
// @Router       /api/profile [get]
func ProfileHandler(w http.ResponseWriter, r *http.Request) {
	claims := requestClaims(r)
	user, err := handlerInstance.users.GetByID(r.Context(), claims.Subject)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, user)
}

// ListModelsHandler godoc
// @Summary      Selectable completion models
// @Tags         Chat
// @Produce      json
// @Success      200  {array}  userModel.AIModel
// @Router       /api/models [get]
func ListModelsHandler(w http.ResponseWriter, r *http.Request) {
	models, err := handlerInstance.models.ListActive(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, models)
}
