package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"unicode/utf8"

	"vexpenses/internal/core"
	"vexpenses/internal/importer"
	"vexpenses/internal/services"
	"vexpenses/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encoding failed", "error", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeServiceError maps domain errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrNotPending):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrDuplicateID):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, importer.ErrBusy):
		writeError(w, http.StatusConflict, err.Error())
	case isValidationError(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func isValidationError(err error) bool {
	for _, sentinel := range []error{
		core.ErrInvalidValue, core.ErrInvalidDate, core.ErrInvalidStatus,
		core.ErrEmptyID, core.ErrEmptyName, core.ErrEmptyDepartment,
		core.ErrEmptyCostCenter, core.ErrEmptyCategory, core.ErrEmptyUnit,
		core.ErrEmptyPayment, core.ErrNoCollaborator,
		services.ErrNotAnImage, importer.ErrNoCollaborators,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	w.WriteHeader(http.StatusMethodNotAllowed)
}

// uploadFile adapts a multipart upload to the importer's file boundary. The
// content is read once up front so Size reflects the actual payload.
type uploadFile struct {
	name string
	data []byte
}

func newUploadFile(fh *multipart.FileHeader) (*uploadFile, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &uploadFile{name: fh.Filename, data: data}, nil
}

func (f *uploadFile) Name() string { return f.name }

func (f *uploadFile) Size() int64 { return int64(len(f.data)) }

// Text decodes the payload as UTF-8 text, replacing invalid sequences.
// Binary spreadsheets decode to garbage and take the size-based row policy;
// a real decode failure only arises from I/O errors on the upload itself.
func (f *uploadFile) Text() (string, error) {
	if utf8.Valid(f.data) {
		return string(f.data), nil
	}
	return strings.ToValidUTF8(string(f.data), "�"), nil
}
