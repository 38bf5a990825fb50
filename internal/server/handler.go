package server

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"rscapproval/internal/approval"
	"rscapproval/internal/registry"
	"rscapproval/internal/workflow"
)

// ErrNotAtPreview is returned when submitting a session that has not reached
// the preview step.
var ErrNotAtPreview = errors.New("session is not at the preview step")

// Handler serves the paths, sessions and submissions API.
type Handler struct {
	reg      *registry.Registry
	sessions *SessionManager
	store    *approval.Store
	logger   *slog.Logger
}

// NewHandler creates a Handler. A nil logger discards logs.
func NewHandler(reg *registry.Registry, store *approval.Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{
		reg:      reg,
		sessions: NewSessionManager(reg),
		store:    store,
		logger:   logger.With("component", "server"),
	}
}

// RegisterRoutes mounts the API on router.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	paths := router.Group("/paths")
	{
		paths.GET("", h.ListPaths)
		paths.GET("/:id", h.GetPath)
	}

	sessions := router.Group("/sessions")
	{
		sessions.POST("", h.CreateSession)
		sessions.GET("/:id", h.GetSession)
		sessions.DELETE("/:id", h.DeleteSession)
		sessions.PUT("/:id/forms/:kind", h.SaveForm)
		sessions.PUT("/:id/attachments", h.SaveAttachments)
		sessions.POST("/:id/next", h.Next)
		sessions.POST("/:id/back", h.Back)
		sessions.GET("/:id/bundle", h.Bundle)
		sessions.POST("/:id/submit", h.Submit)
	}

	submissions := router.Group("/submissions")
	{
		submissions.GET("", h.ListSubmissions)
		submissions.GET("/:id", h.GetSubmission)
		submissions.POST("/:id/approve", h.Approve)
		submissions.POST("/:id/reject", h.Reject)
	}
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, registry.ErrUnknownPath),
		errors.Is(err, ErrSessionNotFound),
		errors.Is(err, approval.ErrSubmissionNotFound):
		return http.StatusNotFound
	case errors.Is(err, approval.ErrNotYourTurn),
		errors.Is(err, approval.ErrAlreadyFinal),
		errors.Is(err, ErrNotAtPreview):
		return http.StatusConflict
	case errors.Is(err, workflow.ErrUnknownOption),
		errors.Is(err, workflow.ErrUnknownDocument),
		errors.Is(err, approval.ErrUnknownRole),
		errors.Is(err, approval.ErrEmptyBundle):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		h.logger.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

type pathSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Steps       int    `json:"steps"`
}

// ListPaths returns the registered request paths.
func (h *Handler) ListPaths(c *gin.Context) {
	paths := h.reg.Paths()
	out := make([]pathSummary, 0, len(paths))
	for _, p := range paths {
		out = append(out, pathSummary{ID: p.ID, Name: p.Name, Description: p.Description, Steps: len(p.Steps)})
	}
	c.JSON(http.StatusOK, gin.H{"paths": out})
}

// GetPath returns one path with the decisions and form fields it uses.
func (h *Handler) GetPath(c *gin.Context) {
	p, err := h.reg.GetPath(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	decisions := []*registry.Decision{}
	fields := map[registry.FormKind][]registry.Field{}
	for _, s := range p.Steps {
		switch s.Kind {
		case registry.StepDecision:
			if d, err := h.reg.GetDecision(s.Decision); err == nil {
				decisions = append(decisions, d)
			}
		case registry.StepForm:
			fields[s.Form] = h.reg.Fields(s.Form)
		}
	}

	c.JSON(http.StatusOK, gin.H{"path": p, "decisions": decisions, "fields": fields})
}

type createSessionRequest struct {
	PathID string `json:"path_id" binding:"required"`
}

// CreateSession starts a session on the requested path.
func (h *Handler) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, snap, err := h.sessions.Create(req.PathID)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.logger.Info("session created", "session", id, "path", req.PathID)
	c.JSON(http.StatusCreated, gin.H{"session_id": id, "snapshot": snap})
}

// GetSession returns the session snapshot.
func (h *Handler) GetSession(c *gin.Context) {
	var snap workflow.Snapshot
	err := h.sessions.With(c.Param("id"), func(s *workflow.Session, _ string) error {
		snap = s.Snapshot()
		return nil
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"snapshot": snap})
}

// DeleteSession resets and discards a session.
func (h *Handler) DeleteSession(c *gin.Context) {
	if !h.sessions.Delete(c.Param("id")) {
		h.fail(c, ErrSessionNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

// SaveForm stores the JSON body as the data of one document kind.
func (h *Handler) SaveForm(c *gin.Context) {
	var data workflow.FormData
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	kind := registry.DocumentKind(c.Param("kind"))
	h.mutate(c, func(s *workflow.Session) (gin.H, error) {
		if err := s.SaveFormData(kind, data); err != nil {
			return nil, err
		}
		return gin.H{}, nil
	})
}

// SaveAttachments stores the attachment slots.
func (h *Handler) SaveAttachments(c *gin.Context) {
	var att workflow.Attachments
	if err := c.ShouldBindJSON(&att); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.mutate(c, func(s *workflow.Session) (gin.H, error) {
		if err := s.SaveAttachments(att); err != nil {
			return nil, err
		}
		return gin.H{}, nil
	})
}

type nextRequest struct {
	Answer string `json:"answer"`
}

// Next advances the session. On a decision step the answer is recorded and
// a redirect option restarts the session on the target path.
func (h *Handler) Next(c *gin.Context) {
	var req nextRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	h.mutate(c, func(s *workflow.Session) (gin.H, error) {
		step, _ := s.CurrentStep()
		adv, err := s.GoToNextStep(req.Answer)
		if err != nil {
			return nil, err
		}
		if step.Kind == registry.StepDecision && req.Answer != "" {
			if err := s.SaveDecision(step.Decision, req.Answer); err != nil {
				return nil, err
			}
		}
		if adv.RedirectTo != "" {
			h.logger.Info("session redirected", "session", c.Param("id"), "from", s.Path().ID, "to", adv.RedirectTo)
			if err := s.InitWorkflow(adv.RedirectTo); err != nil {
				return nil, err
			}
		}
		return gin.H{"advance": adv}, nil
	})
}

// Back returns the session to the previous non-skipped step.
func (h *Handler) Back(c *gin.Context) {
	h.mutate(c, func(s *workflow.Session) (gin.H, error) {
		adv, err := s.GoToPreviousStep()
		if err != nil {
			return nil, err
		}
		return gin.H{"advance": adv}, nil
	})
}

// mutate runs fn on the session and responds with its fields plus the new
// snapshot.
func (h *Handler) mutate(c *gin.Context, fn func(s *workflow.Session) (gin.H, error)) {
	var resp gin.H
	err := h.sessions.With(c.Param("id"), func(s *workflow.Session, _ string) error {
		out, err := fn(s)
		if err != nil {
			return err
		}
		out["snapshot"] = s.Snapshot()
		resp = out
		return nil
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Bundle returns the documents assembled so far in bundle order.
func (h *Handler) Bundle(c *gin.Context) {
	var docs []workflow.BundleDocument
	err := h.sessions.With(c.Param("id"), func(s *workflow.Session, _ string) error {
		docs = s.BundleDocuments()
		return nil
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

type submitRequest struct {
	Token     string `json:"token"`
	Submitter string `json:"submitter"`
}

// Submit confirms the preview and stores the bundle. Resubmitting with the
// same token returns the stored record with 200 instead of 201.
func (h *Handler) Submit(c *gin.Context) {
	var req submitRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	var (
		rec     *approval.Record
		created bool
	)
	err := h.sessions.With(c.Param("id"), func(s *workflow.Session, token string) error {
		step, _ := s.CurrentStep()
		if step.Kind != registry.StepPreview {
			return ErrNotAtPreview
		}
		if _, err := s.GoToNextStep(""); err != nil {
			return err
		}

		if req.Token != "" {
			token = req.Token
		}
		var err error
		rec, created, err = h.store.Submit(approval.Submission{
			Token:     token,
			PathID:    s.Path().ID,
			Submitter: req.Submitter,
			Documents: s.BundleDocuments(),
		})
		return err
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	c.JSON(code, gin.H{"submission": rec, "created": created})
}

// ListSubmissions returns stored submissions filtered by status and submitter.
func (h *Handler) ListSubmissions(c *gin.Context) {
	records, err := h.store.List(approval.Filter{
		Status:    approval.Status(c.Query("status")),
		Submitter: c.Query("submitter"),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submissions": records})
}

// GetSubmission returns one stored submission.
func (h *Handler) GetSubmission(c *gin.Context) {
	rec, err := h.store.Get(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submission": rec})
}

type decisionRequest struct {
	Role   string `json:"role" binding:"required"`
	Actor  string `json:"actor"`
	Reason string `json:"reason"`
}

// Approve moves a submission one stage along the chain.
func (h *Handler) Approve(c *gin.Context) {
	h.decide(c, true)
}

// Reject ends the chain for a submission.
func (h *Handler) Reject(c *gin.Context) {
	h.decide(c, false)
}

func (h *Handler) decide(c *gin.Context, approve bool) {
	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	role, err := approval.ParseRole(req.Role)
	if err != nil {
		h.fail(c, err)
		return
	}

	var rec *approval.Record
	if approve {
		rec, err = h.store.Approve(c.Param("id"), role, req.Actor)
	} else {
		rec, err = h.store.Reject(c.Param("id"), role, req.Actor, req.Reason)
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submission": rec})
}
