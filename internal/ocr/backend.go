package ocr

import (
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/free-ocr/internal/common"
)

// FromConfig builds the Recognizer selected by OCR_BACKEND.
func FromConfig(cfg common.OCRConfig, logger *slog.Logger) (Recognizer, error) {
	switch cfg.Backend {
	case common.OCRBackendRemote, "":
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("ocr endpoint is required for the remote backend")
		}
		return NewRemoteClient(RemoteConfig{
			Endpoint:        cfg.Endpoint,
			Timeout:         cfg.Timeout,
			SlowNoticeAfter: cfg.SlowNoticeAfter,
		}, logger), nil
	case common.OCRBackendTesseract:
		return NewTesseractClient(TesseractConfig{
			Binary:      cfg.Tesseract,
			Lang:        cfg.Lang,
			TessdataDir: cfg.TessdataDir,
		}, logger), nil
	case common.OCRBackendGosseract:
		return newGosseractBackend(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown ocr backend %q", cfg.Backend)
	}
}
