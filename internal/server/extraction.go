package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/joseph-ayodele/free-ocr/constants"
	"github.com/joseph-ayodele/free-ocr/internal/common"
	"github.com/joseph-ayodele/free-ocr/internal/export"
	"github.com/joseph-ayodele/free-ocr/internal/extraction"
	"github.com/joseph-ayodele/free-ocr/internal/imaging"
	"github.com/joseph-ayodele/free-ocr/internal/render"
	"github.com/joseph-ayodele/free-ocr/internal/transport"
)

type modeView struct {
	Mode       string `json:"mode"`
	Label      string `json:"label"`
	Status     string `json:"status"`
	Selectable bool   `json:"selectable"`
	Text       string `json:"text,omitempty"`
}

type snapshotView struct {
	Batch        uint64     `json:"batch"`
	Phase        string     `json:"phase"`
	Selected     string     `json:"selected"`
	Error        string     `json:"error,omitempty"`
	OCRMethod    string     `json:"ocr_method,omitempty"`
	Modes        []modeView `json:"modes"`
	Failed       []string   `json:"failed"`
	MarkdownHTML string     `json:"markdown_html,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	SettledAt    *time.Time `json:"settled_at,omitempty"`
}

func toView(snap extraction.Snapshot) snapshotView {
	v := snapshotView{
		Batch:     snap.Batch,
		Phase:     string(snap.Phase),
		Selected:  string(snap.Selected),
		Error:     snap.Err,
		OCRMethod: snap.OCRMethod,
		Failed:    make([]string, 0, len(snap.Failed)),
	}
	for _, m := range constants.AllModes() {
		text, _ := snap.Result(m)
		v.Modes = append(v.Modes, modeView{
			Mode:       string(m),
			Label:      m.Label(),
			Status:     string(snap.Status(m)),
			Selectable: snap.Selectable(m),
			Text:       text,
		})
	}
	for _, m := range snap.FailedModes() {
		v.Failed = append(v.Failed, string(m))
	}
	if md, ok := snap.Result(constants.PrimaryMode); ok {
		if html, err := render.MarkdownToHTML(md); err == nil {
			v.MarkdownHTML = html
		}
	}
	if !snap.StartedAt.IsZero() {
		t := snap.StartedAt
		v.StartedAt = &t
	}
	if !snap.SettledAt.IsZero() {
		t := snap.SettledAt
		v.SettledAt = &t
	}
	return v
}

func (s *Server) decodeImage(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	var req transport.ImageRequest
	if err := s.readBody(w, r, transport.ImageRequestSchema, &req); err != nil {
		return nil, err
	}
	data := imaging.StripDataURL(req.ImageData)
	v := common.NewValidator().Field("image_data", data, common.Required, common.Base64)
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}
	return imaging.DecodeBase64(data)
}

// handleOCR forwards one image to the OCR backend: {image_data} -> {text}.
func (s *Server) handleOCR(w http.ResponseWriter, r *http.Request) {
	image, err := s.decodeImage(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	prepared, err := imaging.Prepare(image, s.maxImageSide)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := s.recognizer.Recognize(r.Context(), prepared.Data)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transport.TextResponse{Text: res.Text})
}

// handleExtract runs a full extraction cycle and answers with the settled snapshot.
// The cycle is detached from the request context: a client going away does not
// cancel in-flight calls, a newer submission supersedes it instead.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	image, err := s.decodeImage(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	snap, err := s.session.Extract(context.WithoutCancel(r.Context()), image)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, toView(snap))
	case errors.Is(err, extraction.ErrSuperseded):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":    "superseded by a newer submission",
			"snapshot": toView(snap),
		})
	default:
		writeJSON(w, common.HTTPStatus(err), toView(snap))
	}
}

func (s *Server) handleCurrent(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toView(s.session.Snapshot()))
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req transport.SelectRequest
	if err := s.readBody(w, r, transport.SelectRequestSchema, &req); err != nil {
		writeError(w, err)
		return
	}
	snap, err := s.session.Select(constants.Mode(req.Mode))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toView(snap))
}

func (s *Server) handleExport(w http.ResponseWriter, _ *http.Request) {
	snap := s.session.Snapshot()
	if snap.Phase == constants.PhaseIdle {
		writeError(w, common.NewAppError("NOT_FOUND", "no extraction yet", common.ErrNotFound))
		return
	}
	source := fmt.Sprintf("batch-%d", snap.Batch)
	b, err := s.exporter.WorkbookXLSX([]export.Row{{Source: source, Snapshot: snap}})
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, source))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
