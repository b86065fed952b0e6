package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/IscoRuta98/ArdhiHub-server/internal/server/models"
	"github.com/IscoRuta98/ArdhiHub-server/internal/server/services"
)

const maxDocumentSize = 32 << 20 // 32 MiB

type registerRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name"`
	Surname     string `json:"surname"`
	NationalID  int64  `json:"national_id"`
	PhoneNumber string `json:"phone_number"`
	Role        string `json:"role"`
}

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type holderRequest struct {
	HolderID string `json:"holder_id"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type userResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	FirstName   string `json:"first_name"`
	Surname     string `json:"surname"`
	NationalID  int64  `json:"national_id"`
	PhoneNumber string `json:"phone_number"`
	Role        string `json:"role"`
	Address     string `json:"address"`
}

type recordResponse struct {
	ID                  string `json:"id"`
	UserID              string `json:"user_id"`
	Location            string `json:"location"`
	FileURL             string `json:"file_url"`
	State               string `json:"state"`
	Verified            bool   `json:"verified"`
	Revoked             bool   `json:"revoked"`
	AssetID             uint64 `json:"asset_id,omitempty"`
	TransactionID       string `json:"transaction_id,omitempty"`
	RevokeTransactionID string `json:"revoke_transaction_id,omitempty"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Username:    u.Username,
		FirstName:   u.FirstName,
		Surname:     u.Surname,
		NationalID:  u.NationalID,
		PhoneNumber: u.PhoneNumber,
		Role:        string(u.Role),
		Address:     u.Address,
	}
}

func toRecordResponse(r *models.Record) recordResponse {
	return recordResponse{
		ID:                  r.ID,
		UserID:              r.UserID,
		Location:            r.Location,
		FileURL:             r.FileURL,
		State:               string(r.State()),
		Verified:            r.Verified,
		Revoked:             r.Revoked,
		AssetID:             r.AssetID,
		TransactionID:       r.TransactionID,
		RevokeTransactionID: r.RevokeTransactionID,
	}
}

func toTokenResponse(pair *services.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, badRequest("invalid request body"))
		return
	}

	if req.Username == "" || req.Password == "" {
		s.writeError(w, r, badRequest("username and password are required"))
		return
	}

	role := models.Role(req.Role)
	if role == "" {
		role = models.RoleHolder
	}
	if role != models.RoleHolder && role != models.RoleIssuer {
		s.writeError(w, r, badRequest("invalid role"))
		return
	}

	user, err := s.users.Register(r.Context(), services.RegisterParams{
		Username:    req.Username,
		Password:    req.Password,
		FirstName:   req.FirstName,
		Surname:     req.Surname,
		NationalID:  req.NationalID,
		PhoneNumber: req.PhoneNumber,
		Role:        role,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, badRequest("invalid request body"))
		return
	}

	pair, err := s.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTokenResponse(pair))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, badRequest("invalid request body"))
		return
	}

	pair, err := s.users.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTokenResponse(pair))
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toUserResponse(currentUser(r.Context())))
}

// handleCreateRecord accepts a multipart form with the deed document and
// its location, stores the document, and registers the record.
func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	if err := r.ParseMultipartForm(maxDocumentSize); err != nil {
		s.writeError(w, r, badRequest("invalid multipart form"))
		return
	}

	location := r.FormValue("location")
	if location == "" {
		s.writeError(w, r, badRequest("location is required"))
		return
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		s.writeError(w, r, badRequest("document file is required"))
		return
	}
	defer file.Close()

	fileURL, err := s.documents.Upload(r.Context(), file, header.Header.Get("Content-Type"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	record, err := s.records.Create(r.Context(), user.ID, location, fileURL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toRecordResponse(record))
}

func (s *Server) handleOwnRecord(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	record, err := s.records.GetOwn(r.Context(), user.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toRecordResponse(record))
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	record, err := s.records.Get(r.Context(), currentUser(r.Context()), chi.URLParam(r, "recordID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toRecordResponse(record))
}

func (s *Server) handleListUnverified(w http.ResponseWriter, r *http.Request) {
	records, err := s.records.ListUnverified(r.Context(), currentUser(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]recordResponse, 0, len(records))
	for _, record := range records {
		out = append(out, toRecordResponse(record))
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleIssue(w http.ResponseWriter, r *http.Request) {
	var req holderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.HolderID == "" {
		s.writeError(w, r, badRequest("holder_id is required"))
		return
	}

	record, err := s.tokenization.Issue(r.Context(), currentUser(r.Context()).ID, req.HolderID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toRecordResponse(record))
}

func (s *Server) handleRevoke(w http.ResponseWriter, r *http.Request) {
	var req holderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.HolderID == "" {
		s.writeError(w, r, badRequest("holder_id is required"))
		return
	}

	record, err := s.tokenization.Revoke(r.Context(), currentUser(r.Context()).ID, req.HolderID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toRecordResponse(record))
}
