package http

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"buddy-server/internal/apperr"
	"buddy-server/internal/logging"
	"buddy-server/internal/schema"
	"buddy-server/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	prompts service.PromptService
	voices  service.PromptVoiceService
	users   service.UserService
	log     logging.Logger
}

func NewHandler(prompts service.PromptService, voices service.PromptVoiceService, users service.UserService, log logging.Logger) *Handler {
	return &Handler{
		prompts: prompts,
		voices:  voices,
		users:   users,
		log:     log,
	}
}

// RegisterRoutes mounts every route at the root and again under /api.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(
		requestLogger(h.log),
		recovery(h.log),
		corsMiddleware(),
	)

	h.mount(router.Group("/"))
	h.mount(router.Group("/api"))
}

func (h *Handler) mount(r *gin.RouterGroup) {
	prompt := r.Group("/prompt")
	{
		prompt.POST("/create", h.createPrompt)
		prompt.POST("/get/:id", h.getPrompt)
		prompt.POST("/render/:id", h.renderPrompt)
		prompt.POST("/export/:id", h.exportPrompt)
	}

	voice := r.Group("/prompt-voice")
	{
		voice.POST("/create", h.createPromptVoice)
		voice.POST("/get/:id", h.getPromptVoice)
	}

	user := r.Group("/user")
	{
		user.POST("/create", h.createUser)
		user.POST("/get/:id", h.getUser)
		user.POST("/login", h.login)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// bind decodes the request body into T. On failure the error response has
// already been written.
func bind[T any](c *gin.Context) (T, bool) {
	body, err := c.GetRawData()
	if err != nil {
		var zero T
		respondError(c, apperr.Validation("Malformed JSON or invalid request body", "body", nil))
		return zero, false
	}
	v, err := schema.Decode[T](body)
	if err != nil {
		respondError(c, err)
		return v, false
	}
	return v, true
}

func respondError(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.Format(err)})
}

func (h *Handler) createPrompt(c *gin.Context) {
	req, ok := bind[schema.PromptCreate](c)
	if !ok {
		return
	}

	prompt, err := h.prompts.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, promptToResponse(*prompt))
}

func (h *Handler) getPrompt(c *gin.Context) {
	prompt, err := h.prompts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, promptToResponse(*prompt))
}

func (h *Handler) renderPrompt(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		respondError(c, apperr.Validation("Malformed JSON or invalid request body", "body", nil))
		return
	}

	// an empty body renders without variables
	var vars map[string]string
	if len(bytes.TrimSpace(body)) > 0 {
		req, err := schema.Decode[schema.RenderRequest](body)
		if err != nil {
			respondError(c, err)
			return
		}
		vars = req.Variables
	}

	out, err := h.prompts.Render(c.Request.Context(), c.Param("id"), vars)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, RenderResponse{
		ID:        out.Prompt.ID,
		Text:      out.Text,
		Variables: out.Variables,
	})
}

func (h *Handler) exportPrompt(c *gin.Context) {
	out, err := h.prompts.Export(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, exportToResponse(*out))
}

func (h *Handler) createPromptVoice(c *gin.Context) {
	req, ok := bind[schema.PromptVoiceCreate](c)
	if !ok {
		return
	}

	voice, err := h.voices.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, promptVoiceToResponse(*voice))
}

func (h *Handler) getPromptVoice(c *gin.Context) {
	voice, err := h.voices.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, promptVoiceToResponse(*voice))
}

func (h *Handler) createUser(c *gin.Context) {
	req, ok := bind[schema.UserCreate](c)
	if !ok {
		return
	}

	user, err := h.users.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(*user))
}

func (h *Handler) getUser(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(*user))
}

func (h *Handler) login(c *gin.Context) {
	req, ok := bind[schema.UserLogin](c)
	if !ok {
		return
	}

	token, err := h.users.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, authTokenToResponse(*token))
}
