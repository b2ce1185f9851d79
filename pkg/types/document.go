package types

import "time"

// Document is one personal document owned by a user. Filename and
// FilenameBack are storage names in the attachment store; the Original*
// fields keep the user-supplied names for display.
type Document struct {
	ID                   int64      `db:"id"`
	UserID               int64      `db:"user_id"`
	Name                 string     `db:"name"`
	DocumentType         string     `db:"document_type"`
	Filename             string     `db:"filename"`
	OriginalFilename     string     `db:"original_filename"`
	FilenameBack         *string    `db:"filename_back"`
	OriginalFilenameBack *string    `db:"original_filename_back"`
	Description          *string    `db:"description"`
	IssueDate            *time.Time `db:"issue_date"`
	ExpiryDate           *time.Time `db:"expiry_date"`
	UploadDate           time.Time  `db:"upload_date"`
}

// HasBack reports whether the document carries a back-side attachment.
func (d *Document) HasBack() bool {
	return d.FilenameBack != nil && *d.FilenameBack != ""
}

// The recognized document-type labels, in menu order.
var DocumentTypes = []string{
	"جواز سفر",
	"فيزا",
	"رقم وطني / بطاقة هوية",
	"شهادة ميلاد",
	"رخصة قيادة",
	"عقد إيجار",
	"فاتورة كهرباء",
	"فاتورة مياه",
	"بيان بنكي",
	"شهادة دراسية",
	"أخرى",
}

// Types for which a back-side attachment is meaningful.
var backSideTypes = map[string]struct{}{
	"رقم وطني / بطاقة هوية": {},
	"رخصة قيادة":            {},
}

// Types for which issue/expiry dates are surfaced. Advisory for
// presentation only; the store accepts dates on any type.
var expiryTypes = map[string]struct{}{
	"جواز سفر":              {},
	"فيزا":                  {},
	"رقم وطني / بطاقة هوية": {},
	"رخصة قيادة":            {},
}

func IsBackSideEligible(documentType string) bool {
	_, ok := backSideTypes[documentType]
	return ok
}

func IsExpiryRelevant(documentType string) bool {
	_, ok := expiryTypes[documentType]
	return ok
}

func IsKnownDocumentType(documentType string) bool {
	for _, t := range DocumentTypes {
		if t == documentType {
			return true
		}
	}
	return false
}
