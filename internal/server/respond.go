package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/joseph-ayodele/free-ocr/internal/common"
	"github.com/joseph-ayodele/free-ocr/internal/transport"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, common.HTTPStatus(err), transport.ErrorResponse{Error: common.PublicMessage(err)})
}

// readBody reads a bounded request body and validates it against schema before decoding into out.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request, schema *transport.Schema, out any) error {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return common.InvalidInputf("request body exceeds %d bytes", tooLarge.Limit)
		}
		return common.InvalidInputf("read request body: %v", err)
	}
	if err := schema.Decode(raw, out); err != nil {
		common.LoggerFrom(r.Context(), s.logger).Warn("http.invalid_body", "error", err)
		return common.InvalidInputf("invalid request body: %v", err)
	}
	return nil
}
