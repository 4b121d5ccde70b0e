package http

import (
	"context"
	"log/slog"
	"net/http"
)

// maxImportBytes caps spreadsheet uploads.
const maxImportBytes = 20 << 20

// handleImport starts one simulated import. The pipeline itself serializes
// attempts; a request arriving while one is in flight gets a conflict.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	if s.pipeline.Active() {
		writeError(w, http.StatusConflict, "an import is already in progress")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	_, fh, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}

	upload, err := newUploadFile(fh)
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading upload failed")
		return
	}

	// The import outlives the request; progress is observed by polling.
	go func() {
		ctx := context.Background()
		rows, err := s.pipeline.Run(ctx, upload)
		if err != nil {
			slog.Error("Import failed", "source_file", upload.Name(), "error", err)
			return
		}
		s.svc.NotifyImported(ctx, upload.Name(), rows)
		slog.Info("Import completed", "source_file", upload.Name(), "row_count", rows)
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{
		"status":     "importing",
		"sourceFile": upload.Name(),
	})
}

// handleImportProgress reports the advisory progress mark (0 when idle,
// then 10, 50, 100).
func (s *Server) handleImportProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"active":   s.pipeline.Active(),
		"progress": s.pipeline.Progress(),
	})
}
