package v1

import (
	"net/http"

	"contact-form-service/internal/delivery/http/response"
	"contact-form-service/internal/domain"
	"contact-form-service/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type ContactHandler struct {
	formUC domain.ContactFormUsecase
}

// ChangeFieldRequest carries the new text of one input. An empty value is
// allowed and clears the field.
type ChangeFieldRequest struct {
	Value *string `json:"value" binding:"required"`
}

// NewContactHandler registers the contact form session routes (public, no auth required)
func NewContactHandler(public *gin.RouterGroup, formUC domain.ContactFormUsecase, submitLimiter gin.HandlerFunc) {
	handler := &ContactHandler{
		formUC: formUC,
	}

	forms := public.Group("/forms")
	{
		forms.POST("", handler.Open)
		forms.GET("/:id", handler.Get)
		forms.DELETE("/:id", handler.Discard)
		forms.PUT("/:id/fields/:field", handler.ChangeField)
		forms.POST("/:id/submit", submitLimiter, handler.Submit)
	}
}

// Open godoc
// @Summary      Open a contact form
// @Description  Mounts a new contact form session with all fields empty.
// @Tags         contact
// @Produce      json
// @Success      201  {object}  response.Response{data=domain.FormView}
// @Router       /forms [post]
func (h *ContactHandler) Open(c *gin.Context) {
	session, err := h.formUC.Open(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Contact form opened", domain.NewFormView(session))
}

// Get godoc
// @Summary      Get a contact form
// @Tags         contact
// @Produce      json
// @Param        id   path      string  true  "Form session ID"
// @Success      200  {object}  response.Response{data=domain.FormView}
// @Failure      404  {object}  response.Response
// @Router       /forms/{id} [get]
func (h *ContactHandler) Get(c *gin.Context) {
	session, err := h.formUC.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Contact form retrieved", domain.NewFormView(session))
}

// Discard godoc
// @Summary      Discard a contact form
// @Description  Destroys the form session and everything typed into it.
// @Tags         contact
// @Produce      json
// @Param        id   path      string  true  "Form session ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /forms/{id} [delete]
func (h *ContactHandler) Discard(c *gin.Context) {
	if err := h.formUC.Discard(c.Request.Context(), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Contact form discarded", nil)
}

// ChangeField godoc
// @Summary      Change a field
// @Description  Replaces the text of one input. Validation waits for submit.
// @Tags         contact
// @Accept       json
// @Produce      json
// @Param        id     path      string              true  "Form session ID"
// @Param        field  path      string              true  "firstName, lastName, email or message"
// @Param        body   body      ChangeFieldRequest  true  "New value"
// @Success      200    {object}  response.Response{data=domain.FormView}
// @Failure      400    {object}  response.Response
// @Failure      404    {object}  response.Response
// @Router       /forms/{id}/fields/{field} [put]
func (h *ContactHandler) ChangeField(c *gin.Context) {
	field, ok := domain.ParseField(c.Param("field"))
	if !ok {
		_ = c.Error(apperror.BadRequest("Unknown form field: " + c.Param("field")))
		return
	}

	var req ChangeFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.BadRequest("Request body must be {\"value\": string}"))
		return
	}

	session, err := h.formUC.ChangeField(c.Request.Context(), c.Param("id"), field, *req.Value)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Field updated", domain.NewFormView(session))
}

// Submit godoc
// @Summary      Submit a contact form
// @Description  Validates every field. A valid form is snapshotted into the submitted display; an invalid one returns 422 with the errors to show.
// @Tags         contact
// @Produce      json
// @Param        id   path      string  true  "Form session ID"
// @Success      200  {object}  response.Response{data=domain.FormView}
// @Failure      404  {object}  response.Response
// @Failure      422  {object}  response.Response{data=domain.FormView}
// @Failure      429  {object}  response.Response
// @Router       /forms/{id}/submit [post]
func (h *ContactHandler) Submit(c *gin.Context) {
	session, err := h.formUC.Submit(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	view := domain.NewFormView(session)
	if len(view.Errors) > 0 {
		response.Rejected(c, http.StatusUnprocessableEntity, "Please correct the highlighted fields.", view)
		return
	}
	response.Success(c, http.StatusOK, "Your message has been submitted.", view)
}
