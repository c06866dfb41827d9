package usecase

import (
	"context"
	"time"

	"contact-form-service/internal/domain"
	"contact-form-service/pkg/apperror"
	"contact-form-service/pkg/logger"

	"github.com/google/uuid"
)

type contactFormUsecase struct {
	repo    domain.ContactFormRepository
	machine *FormMachine
	now     func() time.Time
}

// NewContactFormUsecase creates a new contact form usecase
func NewContactFormUsecase(repo domain.ContactFormRepository, machine *FormMachine) domain.ContactFormUsecase {
	return &contactFormUsecase{
		repo:    repo,
		machine: machine,
		now:     time.Now,
	}
}

func (uc *contactFormUsecase) Open(ctx context.Context) (*domain.FormSession, error) {
	now := uc.now()
	session := &domain.FormSession{
		ID:        uuid.New().String(),
		State:     uc.machine.Initial(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.repo.Create(ctx, session); err != nil {
		return nil, err
	}

	logger.Log.Debug("Contact form opened",
		"session_id", session.ID,
		"request_id", domain.RequestIDFrom(ctx),
	)
	return session, nil
}

func (uc *contactFormUsecase) Get(ctx context.Context, id string) (*domain.FormSession, error) {
	if id == "" {
		return nil, apperror.BadRequest("Form session id is required")
	}
	return uc.repo.GetByID(ctx, id)
}

func (uc *contactFormUsecase) Dispatch(ctx context.Context, id string, event domain.Event) (*domain.FormSession, error) {
	if id == "" {
		return nil, apperror.BadRequest("Form session id is required")
	}
	if event == nil {
		return nil, apperror.BadRequest("Form event is required")
	}

	session, err := uc.repo.Update(ctx, id, func(state domain.FormState) domain.FormState {
		return uc.machine.Reduce(state, event)
	})
	if err != nil {
		return nil, err
	}

	if _, ok := event.(domain.SubmitPressed); ok {
		// Field values are user data and stay out of the logs
		logger.Log.Info("Contact form submitted",
			"session_id", id,
			"phase", session.State.Phase,
			"error_count", len(session.State.Errors),
			"request_id", domain.RequestIDFrom(ctx),
		)
	}
	return session, nil
}

func (uc *contactFormUsecase) ChangeField(ctx context.Context, id string, field domain.Field, value string) (*domain.FormSession, error) {
	if _, ok := domain.ParseField(string(field)); !ok {
		return nil, apperror.BadRequest("Unknown form field: " + string(field))
	}
	return uc.Dispatch(ctx, id, domain.FieldChanged{Field: field, Value: value})
}

func (uc *contactFormUsecase) Submit(ctx context.Context, id string) (*domain.FormSession, error) {
	return uc.Dispatch(ctx, id, domain.SubmitPressed{})
}

func (uc *contactFormUsecase) Discard(ctx context.Context, id string) error {
	if id == "" {
		return apperror.BadRequest("Form session id is required")
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}

	logger.Log.Debug("Contact form discarded", "session_id", id)
	return nil
}
