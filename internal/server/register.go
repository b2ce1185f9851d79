package server

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"mahfaza/pkg/types"
)

func urlQueryEscape(s string) string {
	return url.QueryEscape(s)
}

func (s *Service) handleGetRegister(w http.ResponseWriter, r *http.Request) {
	if _, err := s.sessionFromRequest(r); err == nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	data := &types.RegisterPageData{
		BasePageData: types.BasePageData{Title: "تسجيل حساب جديد"},
	}

	if err := s.renderTemplate(w, r, "page.register", data); err != nil {
		s.logger.WithError(err).Error("failed to render register page")
		s.internalServerError(w)
	}
}

func (s *Service) handlePostRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	data := &types.RegisterPageData{
		BasePageData: types.BasePageData{Title: "تسجيل حساب جديد"},
		Username:     username,
	}

	_, err := s.credentials.Register(ctx, username, password)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrDuplicateUsername):
			data.Error = "اسم المستخدم موجود بالفعل. يرجى اختيار اسم آخر."
		case types.AsValidation(err) != nil:
			data.Error = "اسم المستخدم وكلمة المرور مطلوبان."
		default:
			s.logger.WithError(err).Error("failed to register user")
			data.Error = "حدث خطأ أثناء إنشاء الحساب. يرجى المحاولة مرة أخرى."
		}

		if renderErr := s.renderTemplate(w, r, "page.register", data); renderErr != nil {
			s.logger.WithError(renderErr).Error("failed to render register page with error")
			s.internalServerError(w)
		}
		return
	}

	s.logger.WithField("username", username).Info("user registered")

	http.Redirect(w, r, "/login?notice="+urlQueryEscape("تم التسجيل بنجاح! يرجى تسجيل الدخول."), http.StatusSeeOther)
}
