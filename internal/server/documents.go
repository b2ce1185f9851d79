package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alexedwards/flow"

	"mahfaza/internal/docs"
	"mahfaza/internal/storage"
	"mahfaza/internal/utils"
	"mahfaza/pkg/types"
)

var errUploadTooLarge = errors.New("upload exceeds the size limit")

// documentForm carries the non-file fields of the add/edit forms.
type documentForm struct {
	Name         string `form:"name"`
	DocumentType string `form:"document_type"`
	Description  string `form:"description"`
	IssueDate    string `form:"issue_date"`
	ExpiryDate   string `form:"expiry_date"`
	ClearBack    bool   `form:"clear_back_file"`
}

func (s *Service) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("ctx doesn't contain user")
		s.internalServerError(w)
		return
	}

	documents, err := s.documents.DocumentsForOwner(ctx, userID)
	if err != nil {
		s.logger.WithError(err).Error("failed to list documents")
		s.internalServerError(w)
		return
	}

	data := &types.DashboardPageData{
		BasePageData: types.BasePageData{
			Title:  "لوحة التحكم",
			Notice: r.URL.Query().Get("notice"),
			Error:  r.URL.Query().Get("error"),
		},
		Documents: documents,
	}

	if err := s.renderTemplate(w, r, "page.dashboard", data); err != nil {
		s.logger.WithError(err).Error("failed to render dashboard")
		s.internalServerError(w)
	}
}

func (s *Service) handleGetAddDocument(w http.ResponseWriter, r *http.Request) {
	data := s.documentFormPageData("إضافة مستند", "/add_document", nil)

	if err := s.renderTemplate(w, r, "page.document.form", data); err != nil {
		s.logger.WithError(err).Error("failed to render add document page")
		s.internalServerError(w)
	}
}

func (s *Service) handlePostAddDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("ctx doesn't contain user")
		s.internalServerError(w)
		return
	}

	form, front, back, cleanup, err := s.parseDocumentForm(w, r)
	if err != nil {
		s.renderDocumentFormError(w, r, "/add_document", nil, err)
		return
	}
	defer cleanup()

	issueDate, expiryDate, err := parseDateFields(form.IssueDate, form.ExpiryDate)
	if err != nil {
		s.renderDocumentFormError(w, r, "/add_document", nil, err)
		return
	}

	_, err = s.documents.Create(ctx, userID, docs.CreateInput{
		Name:         strings.TrimSpace(form.Name),
		DocumentType: form.DocumentType,
		Description:  utils.NullableString(strings.TrimSpace(form.Description)),
		IssueDate:    issueDate,
		ExpiryDate:   expiryDate,
		Front:        front,
		Back:         back,
	})
	if err != nil {
		if types.AsValidation(err) == nil {
			s.logger.WithError(err).Error("failed to create document")
		}
		s.renderDocumentFormError(w, r, "/add_document", nil, err)
		return
	}

	http.Redirect(w, r, "/dashboard?notice="+urlQueryEscape("تمت إضافة المستند بنجاح!"), http.StatusSeeOther)
}

func (s *Service) handleViewDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("ctx doesn't contain user")
		s.internalServerError(w)
		return
	}

	docID, err := docIDFromRequest(r)
	if err != nil {
		s.redirectDashboardError(w, r, "المستند غير موجود أو ليس لديك إذن لعرضه.")
		return
	}

	doc, err := s.documents.DocumentForOwner(ctx, userID, docID)
	if err != nil {
		if !errors.Is(err, types.ErrNotFound) {
			s.logger.WithError(err).Error("failed to fetch document")
		}
		s.redirectDashboardError(w, r, "المستند غير موجود أو ليس لديك إذن لعرضه.")
		return
	}

	visualCode, err := s.visualCode(doc)
	if err != nil {
		s.logger.WithError(err).Error("failed to generate visual code")
		s.internalServerError(w)
		return
	}

	data := &types.DocumentViewPageData{
		BasePageData: types.BasePageData{
			Title:  doc.Name,
			Notice: r.URL.Query().Get("notice"),
		},
		Document:     doc,
		VisualCode:   visualCode,
		IsFrontImage: storage.Classify(doc.Filename) == storage.KindImage,
		IsBackImage:  doc.HasBack() && storage.Classify(*doc.FilenameBack) == storage.KindImage,
		ShowBackSide: types.IsBackSideEligible(doc.DocumentType) && doc.HasBack(),
		ShowDates:    types.IsExpiryRelevant(doc.DocumentType),
	}

	if err := s.renderTemplate(w, r, "page.document.view", data); err != nil {
		s.logger.WithError(err).Error("failed to render document page")
		s.internalServerError(w)
	}
}

func (s *Service) handleGetEditDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("ctx doesn't contain user")
		s.internalServerError(w)
		return
	}

	docID, err := docIDFromRequest(r)
	if err != nil {
		s.redirectDashboardError(w, r, "المستند غير موجود أو ليس لديك إذن لتعديله.")
		return
	}

	doc, err := s.documents.DocumentForOwner(ctx, userID, docID)
	if err != nil {
		if !errors.Is(err, types.ErrNotFound) {
			s.logger.WithError(err).Error("failed to fetch document for edit")
		}
		s.redirectDashboardError(w, r, "المستند غير موجود أو ليس لديك إذن لتعديله.")
		return
	}

	data := s.documentFormPageData("تعديل المستند", fmt.Sprintf("/edit_document/%d", doc.ID), doc)

	if err := s.renderTemplate(w, r, "page.document.form", data); err != nil {
		s.logger.WithError(err).Error("failed to render edit document page")
		s.internalServerError(w)
	}
}

func (s *Service) handlePostEditDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("ctx doesn't contain user")
		s.internalServerError(w)
		return
	}

	docID, err := docIDFromRequest(r)
	if err != nil {
		s.redirectDashboardError(w, r, "المستند غير موجود أو ليس لديك إذن لتعديله.")
		return
	}

	doc, err := s.documents.DocumentForOwner(ctx, userID, docID)
	if err != nil {
		if !errors.Is(err, types.ErrNotFound) {
			s.logger.WithError(err).Error("failed to fetch document for edit")
		}
		s.redirectDashboardError(w, r, "المستند غير موجود أو ليس لديك إذن لتعديله.")
		return
	}

	action := fmt.Sprintf("/edit_document/%d", docID)

	form, front, back, cleanup, err := s.parseDocumentForm(w, r)
	if err != nil {
		s.renderDocumentFormError(w, r, action, doc, err)
		return
	}
	defer cleanup()

	issueDate, expiryDate, err := parseDateFields(form.IssueDate, form.ExpiryDate)
	if err != nil {
		s.renderDocumentFormError(w, r, action, doc, err)
		return
	}

	err = s.documents.Update(ctx, userID, docID, docs.EditInput{
		Name:         strings.TrimSpace(form.Name),
		DocumentType: form.DocumentType,
		Description:  utils.NullableString(strings.TrimSpace(form.Description)),
		IssueDate:    issueDate,
		ExpiryDate:   expiryDate,
		Front:        front,
		Back:         back,
		ClearBack:    form.ClearBack,
	})
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			s.redirectDashboardError(w, r, "المستند غير موجود أو ليس لديك إذن لتعديله.")
			return
		}
		if types.AsValidation(err) == nil {
			s.logger.WithError(err).Error("failed to update document")
		}
		s.renderDocumentFormError(w, r, action, doc, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/document/%d?notice=%s", docID, urlQueryEscape("تم تحديث المستند بنجاح!")), http.StatusSeeOther)
}

func (s *Service) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("ctx doesn't contain user")
		s.internalServerError(w)
		return
	}

	docID, err := docIDFromRequest(r)
	if err != nil {
		s.redirectDashboardError(w, r, "المستند غير موجود أو ليس لديك إذن لحذفه.")
		return
	}

	err = s.documents.Delete(ctx, userID, docID)
	if err != nil {
		if !errors.Is(err, types.ErrNotFound) {
			s.logger.WithError(err).Error("failed to delete document")
		}
		s.redirectDashboardError(w, r, "المستند غير موجود أو ليس لديك إذن لحذفه.")
		return
	}

	http.Redirect(w, r, "/dashboard?notice="+urlQueryEscape("تم حذف المستند بنجاح!"), http.StatusSeeOther)
}

// parseDocumentForm enforces the upload size limit before anything is read,
// decodes the value fields and extracts the two optional file parts. The
// returned cleanup closes any open multipart files.
func (s *Service) parseDocumentForm(w http.ResponseWriter, r *http.Request) (*documentForm, *docs.Upload, *docs.Upload, func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)

	if err := r.ParseMultipartForm(s.config.MaxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, nil, nil, nil, errUploadTooLarge
		}
		return nil, nil, nil, nil, fmt.Errorf("parse multipart form: %w", err)
	}

	var form documentForm
	if err := decoder.Decode(&form, r.Form); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("decode form: %w", err)
	}

	var closers []func()
	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}

	front, closeFront, err := formUpload(r, "document_file_front")
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if closeFront != nil {
		closers = append(closers, closeFront)
	}

	back, closeBack, err := formUpload(r, "document_file_back")
	if err != nil {
		cleanup()
		return nil, nil, nil, nil, err
	}
	if closeBack != nil {
		closers = append(closers, closeBack)
	}

	return &form, front, back, cleanup, nil
}

func formUpload(r *http.Request, field string) (*docs.Upload, func(), error) {
	f, fh, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("read form file %s: %w", field, err)
	}

	if fh.Filename == "" {
		f.Close()
		return nil, nil, nil
	}

	return &docs.Upload{Filename: fh.Filename, Content: f}, func() { f.Close() }, nil
}

func parseDateFields(issue, expiry string) (*time.Time, *time.Time, error) {
	issueDate, err := parseDateField(issue)
	if err != nil {
		return nil, nil, types.NewValidationError("issue_date", "must be a YYYY-MM-DD date")
	}

	expiryDate, err := parseDateField(expiry)
	if err != nil {
		return nil, nil, types.NewValidationError("expiry_date", "must be a YYYY-MM-DD date")
	}

	return issueDate, expiryDate, nil
}

func parseDateField(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func docIDFromRequest(r *http.Request) (int64, error) {
	return strconv.ParseInt(flow.Param(r.Context(), "id"), 10, 64)
}

func (s *Service) documentFormPageData(title, action string, doc *types.Document) *types.DocumentFormPageData {
	backTypes := make([]string, 0)
	expiryTypes := make([]string, 0)
	for _, t := range types.DocumentTypes {
		if types.IsBackSideEligible(t) {
			backTypes = append(backTypes, t)
		}
		if types.IsExpiryRelevant(t) {
			expiryTypes = append(expiryTypes, t)
		}
	}

	return &types.DocumentFormPageData{
		BasePageData:  types.BasePageData{Title: title},
		Document:      doc,
		DocumentTypes: types.DocumentTypes,
		BackSideTypes: backTypes,
		ExpiryTypes:   expiryTypes,
		Action:        action,
	}
}

func (s *Service) renderDocumentFormError(w http.ResponseWriter, r *http.Request, action string, doc *types.Document, err error) {
	title := "إضافة مستند"
	if doc != nil {
		title = "تعديل المستند"
	}

	data := s.documentFormPageData(title, action, doc)
	data.Error = documentErrorMessage(err)

	status := http.StatusBadRequest
	if errors.Is(err, errUploadTooLarge) {
		status = http.StatusRequestEntityTooLarge
	} else if types.AsValidation(err) == nil {
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if renderErr := s.renderTemplate(w, r, "page.document.form", data); renderErr != nil {
		s.logger.WithError(renderErr).Error("failed to render document form with error")
	}
}

// documentErrorMessage maps the core's error taxonomy to the Arabic messages
// the UI shows; the core itself never produces user-facing text.
func documentErrorMessage(err error) string {
	if errors.Is(err, errUploadTooLarge) {
		return "حجم الملف كبير جدًا. الحد الأقصى المسموح به هو 5 ميجابايت."
	}

	ve := types.AsValidation(err)
	if ve == nil {
		return "حدث خطأ أثناء حفظ المستند. يرجى المحاولة مرة أخرى."
	}

	switch ve.Field {
	case "name", "document_type":
		return "اسم المستند ونوع المستند مطلوبان."
	case "document_file_front":
		if strings.Contains(ve.Reason, "required") {
			return "يرجى رفع ملف للمستند (الوجه الأمامي)."
		}
		return "نوع ملف الوجه الأمامي غير مسموح به. الأنواع المدعومة: صور (png, jpg, jpeg) أو pdf."
	case "document_file_back":
		return "نوع ملف الوجه الخلفي غير مسموح به. الأنواع المدعومة: صور (png, jpg, jpeg) أو pdf."
	case "issue_date", "expiry_date":
		return "صيغة التاريخ غير صحيحة. يرجى استخدام التنسيق YYYY-MM-DD."
	default:
		return "المدخلات غير صالحة. يرجى مراجعة الحقول والمحاولة مرة أخرى."
	}
}

func (s *Service) redirectDashboardError(w http.ResponseWriter, r *http.Request, msg string) {
	http.Redirect(w, r, "/dashboard?error="+urlQueryEscape(msg), http.StatusSeeOther)
}
