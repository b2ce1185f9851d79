package server

import (
	"errors"
	"net/http"
	"time"
)

var errNoSessionInContext = errors.New("no session in request context")

const redirectCookieName = "mahfaza_redirect"

// sessionData is what the encrypted session cookie carries.
type sessionData struct {
	UserID   int64
	Username string
}

func (s *Service) setSessionCookie(w http.ResponseWriter, session sessionData) error {
	encoded, err := s.cookie.Encode(s.config.CookieName, session)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.config.CookieName,
		Value:    encoded,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   s.config.SessionMaxAgeSec,
		Path:     "/",
	})

	return nil
}

func (s *Service) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.CookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Path:     "/",
	})
}

func (s *Service) sessionFromRequest(r *http.Request) (*sessionData, error) {
	cookie, err := r.Cookie(s.config.CookieName)
	if err != nil {
		return nil, err
	}

	var session sessionData
	if err := s.cookie.Decode(s.config.CookieName, cookie.Value, &session); err != nil {
		return nil, err
	}

	return &session, nil
}

func (s *Service) setRedirectCookie(w http.ResponseWriter, path string, age time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     redirectCookieName,
		Value:    path,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   int(age.Seconds()),
	})
}

func (s *Service) clearRedirectCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     redirectCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}
