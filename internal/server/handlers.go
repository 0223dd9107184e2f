package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"numerologyx/internal/render"
	"numerologyx/internal/session"
	"numerologyx/internal/types"
)

type calculateRequest struct {
	FullName string `json:"fullName"`
	DOB      string `json:"dob"`
}

type predictionsRequest struct {
	Year int `json:"year"`
}

type chatRequest struct {
	Message string `json:"message"`
}

type translateRequest struct {
	Kind string `json:"kind"`
	Lang string `json:"lang"`
}

type viewRequest struct {
	View string `json:"view"`
}

func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %v", errBadRequest, err))
		return false
	}
	return true
}

// GET /healthz
func (s *Server) health(c *gin.Context) {
	RespondOK(c, gin.H{"status": "ok"})
}

// GET /api/state
func (s *Server) getState(c *gin.Context) {
	RespondOK(c, s.orch.State())
}

// POST /api/calculate
func (s *Server) calculate(c *gin.Context) {
	var req calculateRequest
	if !bindJSON(c, &req) {
		return
	}
	if _, err := s.orch.Calculate(c.Request.Context(), types.Identity{FullName: req.FullName, DOB: req.DOB}); err != nil {
		respondDomainError(c, err)
		return
	}
	RespondOK(c, s.orch.State())
}

// POST /api/predictions
func (s *Server) predictions(c *gin.Context) {
	var req predictionsRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Year == 0 {
		req.Year = s.now().Year()
	}
	report, err := s.orch.RequestPredictions(c.Request.Context(), req.Year)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"year": req.Year, "report": report})
}

// GET /api/vastu
func (s *Server) vastu(c *gin.Context) {
	report, err := s.orch.RequestSpatialHarmonyReport(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}
	RespondOK(c, report)
}

// GET /api/remedies
func (s *Server) remedies(c *gin.Context) {
	report, err := s.orch.RequestRemediesReport(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}
	RespondOK(c, report)
}

// GET /api/daily-pulse
func (s *Server) dailyPulse(c *gin.Context) {
	pulse, err := s.orch.DailyPulse(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"date": types.DateKey(s.now()), "data": pulse})
}

// POST /api/chat
func (s *Server) chat(c *gin.Context) {
	var req chatRequest
	if !bindJSON(c, &req) {
		return
	}
	reply, err := s.orch.SendMessage(c.Request.Context(), req.Message)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"reply": reply, "messages": s.orch.State().Messages})
}

// POST /api/translate
func (s *Server) translate(c *gin.Context) {
	var req translateRequest
	if !bindJSON(c, &req) {
		return
	}
	kind, err := types.ParseReportKind(req.Kind)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	displayed, err := s.orch.TranslateReport(c.Request.Context(), kind, strings.ToLower(req.Lang))
	if err != nil {
		// The previous language is still displayed.
		status, code := classify(err)
		c.JSON(status, gin.H{
			"error":     APIError{Message: err.Error(), Code: code},
			"displayed": displayed,
		})
		return
	}
	RespondOK(c, displayed)
}

// GET /api/display/:kind
func (s *Server) display(c *gin.Context) {
	kind, err := types.ParseReportKind(c.Param("kind"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	displayed, err := s.orch.DisplayedReport(kind)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	RespondOK(c, displayed)
}

// GET /api/export/:kind serves the displayed variant as a text download.
// The daily pulse is never translated, so it is exported as loaded.
func (s *Server) export(c *gin.Context) {
	kind, err := types.ParseReportKind(c.Param("kind"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	if kind == types.KindProfile {
		RespondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("report kind %q has no download", kind))
		return
	}

	st := s.orch.State()
	var report interface{}
	if kind == types.KindDailyPulse {
		if st.DailyPulse.Value == nil {
			respondDomainError(c, session.ErrNotLoaded)
			return
		}
		report = st.DailyPulse.Value
	} else {
		displayed, err := s.orch.DisplayedReport(kind)
		if err != nil {
			respondDomainError(c, err)
			return
		}
		report = displayed.Report
	}

	var id types.Identity
	if st.Identity != nil {
		id = *st.Identity
	}
	text := render.Text(report, id, s.now())
	filename := render.Filename(kind, id, st.PredictionsYear)

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

// POST /api/view
func (s *Server) navigate(c *gin.Context) {
	var req viewRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := types.ParseView(req.View)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := s.orch.Navigate(view); err != nil {
		respondDomainError(c, err)
		return
	}
	RespondOK(c, s.orch.State())
}

// POST /api/reset
func (s *Server) reset(c *gin.Context) {
	if err := s.orch.Reset(c.Request.Context()); err != nil {
		respondDomainError(c, err)
		return
	}
	RespondOK(c, s.orch.State())
}
