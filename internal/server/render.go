package server

import (
	"net/http"

	"mahfaza/pkg/types"
)

func (s *Service) renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) error {
	userID, _ := r.Context().Value(contextKeyUserID).(int64)
	username := s.usernameFromContext(r.Context())

	if setter, ok := data.(types.NavbarDataSetter); ok {
		setter.SetNavbarData(types.NavbarData{
			IsAuthenticated: userID != 0,
			Username:        username,
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return s.templates.ExecuteTemplate(w, templateName, data)
}

func (s *Service) internalServerError(w http.ResponseWriter) {
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func (s *Service) renderErrorPage(w http.ResponseWriter, r *http.Request, status int, message string) {
	data := &types.ErrorPageData{
		BasePageData: types.BasePageData{Title: "خطأ"},
		Status:       status,
		Message:      message,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.renderTemplate(w, r, "page.error", data); err != nil {
		s.logger.WithError(err).Error("failed to render error page")
	}
}
