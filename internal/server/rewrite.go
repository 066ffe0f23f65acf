package server

import (
	"net/http"

	"github.com/joseph-ayodele/free-ocr/constants"
	"github.com/joseph-ayodele/free-ocr/internal/transport"
)

// handleRewrite is the mode rewrite proxy: {mode, content} -> {text}.
func (s *Server) handleRewrite(w http.ResponseWriter, r *http.Request) {
	var req transport.RewriteRequest
	if err := s.readBody(w, r, transport.RewriteRequestSchema, &req); err != nil {
		writeError(w, err)
		return
	}

	text, err := s.proxy.Rewrite(r.Context(), constants.Mode(req.Mode), req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transport.TextResponse{Text: text})
}

type modeInfo struct {
	Mode        string `json:"mode"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Primary     bool   `json:"primary"`
}

func (s *Server) handleModes(w http.ResponseWriter, _ *http.Request) {
	modes := constants.AllModes()
	out := make([]modeInfo, 0, len(modes))
	for _, m := range modes {
		out = append(out, modeInfo{
			Mode:        string(m),
			Label:       m.Label(),
			Description: m.Description(),
			Primary:     m == constants.PrimaryMode,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"modes": out})
}
