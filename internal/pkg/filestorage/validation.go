package filestorage

import (
	"bytes"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"github.com/yigit/scholarhub/internal/pkg/apperrors"
)

// InvalidFileCode is the error code attached to rejected uploads
const InvalidFileCode = "VAL_002"

// AllowedMimeTypes are the document formats accepted as requirement files
var AllowedMimeTypes = []string{"application/pdf", "image/jpeg", "image/png"}

func invalidFile(format string, args ...interface{}) error {
	return apperrors.NewCustomError(apperrors.ErrInvalidInput, fmt.Sprintf(format, args...)).
		WithCode(InvalidFileCode)
}

// ValidateRequirementUpload checks size and sniffed content type of an upload
// and returns the detected MIME type. PDFs must also parse and have pages.
func ValidateRequirementUpload(content []byte, maxBytes int64) (string, error) {
	if len(content) == 0 {
		return "", invalidFile("file is empty")
	}
	if maxBytes > 0 && int64(len(content)) > maxBytes {
		return "", invalidFile("file exceeds the maximum size of %d bytes", maxBytes)
	}

	mtype := mimetype.Detect(content)
	if !mimetype.EqualsAny(mtype.String(), AllowedMimeTypes...) {
		return "", invalidFile("unsupported file type %s: only PDF, JPEG and PNG are accepted", mtype.String())
	}

	if mtype.Is("application/pdf") {
		pages, err := pdfPageCount(content)
		if err != nil {
			return "", invalidFile("unreadable PDF: %v", err)
		}
		if pages == 0 {
			return "", invalidFile("PDF has no pages")
		}
	}

	return mtype.String(), nil
}

func pdfPageCount(content []byte) (pages int, err error) {
	// The parser panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			pages, err = 0, fmt.Errorf("malformed PDF structure")
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return 0, err
	}
	return reader.NumPage(), nil
}
