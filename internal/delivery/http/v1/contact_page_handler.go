package v1

import (
	"errors"
	"net/http"
	"time"

	"contact-form-service/internal/delivery/http/middleware"
	"contact-form-service/internal/delivery/http/web"
	"contact-form-service/internal/domain"
	"contact-form-service/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// ContactSessionCookie remembers which form session a browser owns
const ContactSessionCookie = "contact_form_session"

// ContactPageHandler serves the server-rendered contact form
type ContactPageHandler struct {
	formUC       domain.ContactFormUsecase
	cookieTTL    time.Duration
	secureCookie bool
}

type contactPageInput struct {
	Name      string
	Label     string
	Type      string
	Value     string
	Error     string
	Required  bool
	Multiline bool
}

type contactPageDisplay struct {
	TestID string
	Label  string
	Value  string
}

type contactPageData struct {
	Title     string
	CSRFToken string
	Inputs    []contactPageInput
	Display   []contactPageDisplay
	View      domain.FormView
}

// NewContactPageHandler registers GET and POST /contact on group
func NewContactPageHandler(group *gin.RouterGroup, formUC domain.ContactFormUsecase, cookieTTL time.Duration, secureCookie bool, submitLimiter gin.HandlerFunc) {
	handler := &ContactPageHandler{
		formUC:       formUC,
		cookieTTL:    cookieTTL,
		secureCookie: secureCookie,
	}

	group.GET("/contact", handler.Show)
	group.POST("/contact", submitLimiter, handler.Submit)
}

// Show renders the form of the visitor's session, mounting one if needed
func (h *ContactPageHandler) Show(c *gin.Context) {
	session, err := h.session(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.render(c, http.StatusOK, session)
}

// Submit applies every edited input as a field change, then presses submit
func (h *ContactPageHandler) Submit(c *gin.Context) {
	var posted domain.FieldValues
	if err := c.ShouldBind(&posted); err != nil {
		_ = c.Error(apperror.BadRequest("Invalid form body"))
		return
	}

	session, err := h.session(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	ctx := c.Request.Context()
	for _, field := range domain.Fields {
		value := posted.Get(field)
		if value == session.State.Values.Get(field) {
			continue
		}
		if session, err = h.formUC.ChangeField(ctx, session.ID, field, value); err != nil {
			_ = c.Error(err)
			return
		}
	}

	if session, err = h.formUC.Submit(ctx, session.ID); err != nil {
		_ = c.Error(err)
		return
	}

	status := http.StatusOK
	if len(session.State.Errors) > 0 {
		status = http.StatusUnprocessableEntity
	}
	h.render(c, status, session)
}

// session returns the visitor's live session or opens a new one
func (h *ContactPageHandler) session(c *gin.Context) (*domain.FormSession, error) {
	ctx := c.Request.Context()

	if id, err := c.Cookie(ContactSessionCookie); err == nil && id != "" {
		session, err := h.formUC.Get(ctx, id)
		if err == nil {
			return session, nil
		}
		var appErr *apperror.AppError
		if !errors.As(err, &appErr) || appErr.Code != http.StatusNotFound {
			return nil, err
		}
	}

	session, err := h.formUC.Open(ctx)
	if err != nil {
		return nil, err
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ContactSessionCookie, session.ID, int(h.cookieTTL.Seconds()), "/", "", h.secureCookie, true)
	return session, nil
}

func (h *ContactPageHandler) render(c *gin.Context, status int, session *domain.FormSession) {
	view := domain.NewFormView(session)

	data := contactPageData{
		Title:     "Contact Form",
		CSRFToken: c.GetString(middleware.CSRFTokenContextKey),
		View:      view,
	}

	for _, field := range domain.Fields {
		input := contactPageInput{
			Name:     string(field),
			Label:    domain.FieldLabels[field],
			Type:     "text",
			Value:    view.Values.Get(field),
			Error:    view.FieldErrors[field],
			Required: field != domain.FieldMessage,
		}
		switch field {
		case domain.FieldEmail:
			input.Type = "email"
		case domain.FieldMessage:
			input.Multiline = true
		}
		data.Inputs = append(data.Inputs, input)
	}

	for _, item := range view.Display {
		data.Display = append(data.Display, contactPageDisplay{
			TestID: item.TestID,
			Label:  domain.FieldLabels[item.Field],
			Value:  item.Value,
		})
	}

	c.HTML(status, web.ContactPage, data)
}
