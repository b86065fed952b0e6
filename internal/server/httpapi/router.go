// Package httpapi is the thin HTTP layer over the application services. It
// delegates to domain services without embedding business logic, so
// transport concerns remain isolated.
package httpapi

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/IscoRuta98/ArdhiHub-server/internal/logging"
	"github.com/IscoRuta98/ArdhiHub-server/internal/server/models"
	"github.com/IscoRuta98/ArdhiHub-server/internal/server/services"
)

// UserService is the account surface the HTTP layer needs.
type UserService interface {
	Register(ctx context.Context, params services.RegisterParams) (*models.User, error)
	Login(ctx context.Context, username string, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// RecordService is the land record surface the HTTP layer needs.
type RecordService interface {
	Create(ctx context.Context, userID string, location string, fileURL string) (*models.Record, error)
	Get(ctx context.Context, caller *models.User, recordID string) (*models.Record, error)
	GetOwn(ctx context.Context, userID string) (*models.Record, error)
	ListUnverified(ctx context.Context, caller *models.User) ([]*models.Record, error)
}

// TokenizationService is the issuance/revocation surface the HTTP layer needs.
type TokenizationService interface {
	Issue(ctx context.Context, issuerID string, holderID string) (*models.Record, error)
	Revoke(ctx context.Context, issuerID string, holderID string) (*models.Record, error)
}

// DocumentService stores uploaded deed documents.
type DocumentService interface {
	Upload(ctx context.Context, body io.Reader, contentType string) (string, error)
}

type Server struct {
	users        UserService
	records      RecordService
	tokenization TokenizationService
	documents    DocumentService
	jwtSecret    []byte
	logger       logging.Logger
}

func NewServer(users UserService, records RecordService, tokenization TokenizationService, documents DocumentService, secretKey string, logger logging.Logger) *Server {
	return &Server{
		users:        users,
		records:      records,
		tokenization: tokenization,
		documents:    documents,
		jwtSecret:    []byte(secretKey),
		logger:       logger.With("module", "httpapi"),
	}
}

// Router wires all endpoints. Everything below /auth/register, /auth/token,
// and /auth/refresh requires a bearer token.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/auth/register", s.handleRegister)
	r.Post("/auth/token", s.handleToken)
	r.Post("/auth/refresh", s.handleRefresh)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		r.Get("/auth/me", s.handleMe)

		r.Post("/records", s.handleCreateRecord)
		r.Get("/records/me", s.handleOwnRecord)
		r.Get("/records/unverified", s.handleListUnverified)
		r.Get("/records/{recordID}", s.handleGetRecord)
		r.Post("/records/issue", s.handleIssue)
		r.Post("/records/revoke", s.handleRevoke)
	})

	return r
}
