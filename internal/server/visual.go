package server

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"

	"mahfaza/pkg/types"
)

// visualCode renders the document's lookup code as a base64 PNG, ready to
// inline into an <img> src attribute. The payload carries no file contents,
// only identifying metadata.
func (s *Service) visualCode(doc *types.Document) (string, error) {
	payload := fmt.Sprintf("Document Name: %s, Type: %s, ID: %d", doc.Name, doc.DocumentType, doc.ID)

	png, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("encode visual code: %w", err)
	}

	return base64.StdEncoding.EncodeToString(png), nil
}
