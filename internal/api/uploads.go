package api

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

type uploadResponse struct {
	Filename string `json:"filename"`
}

// handleUpload stores one multipart file under the uploads directory with a
// time-prefixed name so repeated uploads of the same file never collide.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.uploads.MaxBytes)
	if err := r.ParseMultipartForm(s.uploads.MaxBytes); err != nil {
		writeError(w, http.StatusBadRequest, "expected a multipart upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), filepath.Base(header.Filename))
	dst, err := os.Create(filepath.Join(s.uploads.Dir, name))
	if err != nil {
		s.logger.Error("creating upload file", zap.String("name", name), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not store upload")
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		s.logger.Error("writing upload file", zap.String("name", name), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not store upload")
		return
	}

	writeJSON(w, http.StatusCreated, uploadResponse{Filename: name})
}
