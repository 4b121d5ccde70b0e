package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"vexpenses/internal/services"
)

// maxAvatarBytes caps avatar uploads.
const maxAvatarBytes = 2 << 20

func (s *Server) handleCollaborators(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.store.Collaborators())
	case http.MethodPost:
		s.createCollaborator(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

type createCollaboratorRequest struct {
	Name       string `json:"name"`
	Department string `json:"department"`
	AvatarRef  string `json:"avatar,omitempty"`
}

func (s *Server) createCollaborator(w http.ResponseWriter, r *http.Request) {
	var req createCollaboratorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	collab, err := s.svc.CreateCollaborator(r.Context(), services.CreateCollaboratorInput{
		Name:       req.Name,
		Department: req.Department,
		AvatarRef:  req.AvatarRef,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, collab)
}

// handleCollaboratorByID routes /api/collaborators/{id} and
// /api/collaborators/{id}/avatar.
func (s *Server) handleCollaboratorByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/collaborators/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, http.StatusNotFound, "missing collaborator id")
		return
	}

	switch {
	case action == "" && r.Method == http.MethodDelete:
		// Deleting a collaborator never cascades into transactions; their
		// embedded snapshots stay as they were.
		if err := s.svc.DeleteCollaborator(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case action == "avatar" && r.Method == http.MethodPost:
		s.updateAvatar(w, r, id)
	default:
		methodNotAllowed(w, "DELETE, POST")
	}
}

func (s *Server) updateAvatar(w http.ResponseWriter, r *http.Request, id string) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarBytes)
	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing image field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading image failed")
		return
	}

	if err := s.svc.UpdateAvatar(r.Context(), id, data); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
