package server

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/alexedwards/flow"

	"mahfaza/pkg/types"
)

// handleDownload serves a stored file as an attachment named after the file
// the user originally uploaded.
func (s *Service) handleDownload(w http.ResponseWriter, r *http.Request) {
	s.serveAttachment(w, r, true)
}

// handleInlineView serves a stored file inline, for <img> and embedded pdf
// rendering on the document page.
func (s *Service) handleInlineView(w http.ResponseWriter, r *http.Request) {
	s.serveAttachment(w, r, false)
}

func (s *Service) serveAttachment(w http.ResponseWriter, r *http.Request, asAttachment bool) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("ctx doesn't contain user")
		s.internalServerError(w)
		return
	}

	storedName := flow.Param(ctx, "filename")

	attachment, err := s.documents.OpenAttachment(ctx, userID, storedName)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			s.renderErrorPage(w, r, http.StatusNotFound, "الملف المطلوب غير موجود.")
			return
		}
		s.logger.WithError(err).Error("failed to open attachment")
		s.internalServerError(w)
		return
	}
	defer attachment.Content.Close()

	contentType := mime.TypeByExtension(filepath.Ext(storedName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)

	if asAttachment {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachment.OriginalName))
	} else {
		w.Header().Set("Content-Disposition", "inline")
	}

	if _, err := io.Copy(w, attachment.Content); err != nil {
		s.logger.WithError(err).Warn("failed to stream attachment")
	}
}
