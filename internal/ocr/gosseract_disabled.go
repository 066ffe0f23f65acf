//go:build !gosseract

package ocr

import (
	"errors"
	"log/slog"

	"github.com/joseph-ayodele/free-ocr/internal/common"
)

func newGosseractBackend(common.OCRConfig, *slog.Logger) (Recognizer, error) {
	return nil, errors.New("gosseract backend not compiled in; rebuild with -tags gosseract")
}
