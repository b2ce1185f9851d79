package server

import (
	"errors"
	"net/http"
	"strings"

	"mahfaza/pkg/types"
)

func (s *Service) handleGetLogin(w http.ResponseWriter, r *http.Request) {
	if _, err := s.sessionFromRequest(r); err == nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	data := &types.LoginPageData{
		BasePageData: types.BasePageData{
			Title:  "تسجيل الدخول",
			Notice: r.URL.Query().Get("notice"),
		},
	}

	if err := s.renderTemplate(w, r, "page.login", data); err != nil {
		s.logger.WithError(err).Error("failed to render login page")
		s.internalServerError(w)
	}
}

func (s *Service) handlePostLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	data := &types.LoginPageData{
		BasePageData: types.BasePageData{Title: "تسجيل الدخول"},
		Username:     username,
	}

	user, err := s.credentials.Authenticate(ctx, username, password)
	if err != nil {
		if !errors.Is(err, types.ErrInvalidCredentials) {
			s.logger.WithError(err).Error("login failed")
		}

		// one message for unknown usernames and wrong passwords alike
		data.Error = "اسم المستخدم أو كلمة المرور غير صحيحة."
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusUnauthorized)
		if renderErr := s.renderTemplate(w, r, "page.login", data); renderErr != nil {
			s.logger.WithError(renderErr).Error("failed to render login page with error")
			s.internalServerError(w)
		}
		return
	}

	err = s.setSessionCookie(w, sessionData{UserID: user.ID, Username: user.Username})
	if err != nil {
		s.logger.WithError(err).Error("failed to encode session cookie")
		s.internalServerError(w)
		return
	}

	s.logger.WithField("user_id", user.ID).Info("user logged in")

	// Check to see if this login attempt was the result of an unauthed redirect
	redirectCookie, err := r.Cookie(redirectCookieName)
	if err == nil {
		path := redirectCookie.Value
		s.clearRedirectCookie(w)
		http.Redirect(w, r, path, http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Service) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/login?notice="+urlQueryEscape("تم تسجيل خروجك بنجاح."), http.StatusSeeOther)
}

func (s *Service) handleProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("ctx doesn't contain user")
		s.internalServerError(w)
		return
	}

	documents, err := s.documents.DocumentsForOwner(ctx, userID)
	if err != nil {
		s.logger.WithError(err).Error("failed to list documents for profile")
		s.internalServerError(w)
		return
	}

	data := &types.ProfilePageData{
		BasePageData:  types.BasePageData{Title: "الملف الشخصي"},
		Username:      s.usernameFromContext(ctx),
		DocumentCount: len(documents),
	}

	if err := s.renderTemplate(w, r, "page.profile", data); err != nil {
		s.logger.WithError(err).Error("failed to render profile page")
		s.internalServerError(w)
	}
}
