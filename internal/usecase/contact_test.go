package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"contact-form-service/internal/domain"
	"contact-form-service/internal/usecase"
	"contact-form-service/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock Repositories
type MockFormRepo struct {
	mock.Mock
}

func (m *MockFormRepo) Create(ctx context.Context, session *domain.FormSession) error {
	return m.Called(ctx, session).Error(0)
}

func (m *MockFormRepo) GetByID(ctx context.Context, id string) (*domain.FormSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FormSession), args.Error(1)
}

// Update applies fn to the state registered with On("Update", ...)
func (m *MockFormRepo) Update(ctx context.Context, id string, fn func(domain.FormState) domain.FormState) (*domain.FormSession, error) {
	args := m.Called(ctx, id, fn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	stored := args.Get(0).(*domain.FormSession)
	updated := *stored
	updated.State = fn(stored.State)
	return &updated, args.Error(1)
}

func (m *MockFormRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func newContactUsecase(repo domain.ContactFormRepository) domain.ContactFormUsecase {
	return usecase.NewContactFormUsecase(repo, newMachine(false))
}

func assertAppErrorCode(t *testing.T, err error, code int) {
	t.Helper()
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr), "expected *apperror.AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func TestContactFormOpen(t *testing.T) {
	repo := new(MockFormRepo)
	uc := newContactUsecase(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.FormSession")).Return(nil)

	session, err := uc.Open(ctx)
	require.NoError(t, err)

	assert.NotEmpty(t, session.ID)
	assert.Equal(t, domain.PhaseEditing, session.State.Phase)
	assert.Nil(t, session.State.Submitted)
	assert.False(t, session.CreatedAt.IsZero())
	repo.AssertExpectations(t)
}

func TestContactFormOpenPropagatesRepoError(t *testing.T) {
	repo := new(MockFormRepo)
	uc := newContactUsecase(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.Anything).Return(apperror.Conflict("Form session already exists"))

	_, err := uc.Open(ctx)
	assertAppErrorCode(t, err, http.StatusConflict)
}

func TestContactFormDispatch(t *testing.T) {
	ctx := context.Background()

	t.Run("Should apply a field change", func(t *testing.T) {
		repo := new(MockFormRepo)
		uc := newContactUsecase(repo)
		stored := &domain.FormSession{ID: "s1", State: newMachine(false).Initial()}
		repo.On("Update", ctx, "s1", mock.Anything).Return(stored, nil)

		session, err := uc.ChangeField(ctx, "s1", domain.FieldFirstName, "Edd")
		require.NoError(t, err)

		assert.Equal(t, "Edd", session.State.Values.FirstName)
		assert.Empty(t, session.State.Errors)
	})

	t.Run("Should validate on submit", func(t *testing.T) {
		repo := new(MockFormRepo)
		uc := newContactUsecase(repo)
		stored := &domain.FormSession{ID: "s1", State: newMachine(false).Initial()}
		repo.On("Update", ctx, "s1", mock.Anything).Return(stored, nil)

		session, err := uc.Submit(ctx, "s1")
		require.NoError(t, err)

		assert.Len(t, session.State.Errors, 3)
		assert.Nil(t, session.State.Submitted)
	})

	t.Run("Should reject unknown fields before touching the repo", func(t *testing.T) {
		repo := new(MockFormRepo)
		uc := newContactUsecase(repo)

		_, err := uc.ChangeField(ctx, "s1", domain.Field("phone"), "123")
		assertAppErrorCode(t, err, http.StatusBadRequest)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should reject an empty session id", func(t *testing.T) {
		uc := newContactUsecase(new(MockFormRepo))

		_, err := uc.Submit(ctx, "")
		assertAppErrorCode(t, err, http.StatusBadRequest)
	})

	t.Run("Should reject a nil event", func(t *testing.T) {
		uc := newContactUsecase(new(MockFormRepo))

		_, err := uc.Dispatch(ctx, "s1", nil)
		assertAppErrorCode(t, err, http.StatusBadRequest)
	})

	t.Run("Should surface a missing session", func(t *testing.T) {
		repo := new(MockFormRepo)
		uc := newContactUsecase(repo)
		repo.On("Update", ctx, "gone", mock.Anything).Return(nil, apperror.NotFound("Form session not found or expired"))

		_, err := uc.Submit(ctx, "gone")
		assertAppErrorCode(t, err, http.StatusNotFound)
	})
}

func TestContactFormGetAndDiscard(t *testing.T) {
	ctx := context.Background()
	repo := new(MockFormRepo)
	uc := newContactUsecase(repo)

	stored := &domain.FormSession{ID: "s1"}
	repo.On("GetByID", ctx, "s1").Return(stored, nil)
	repo.On("Delete", ctx, "s1").Return(nil)

	session, err := uc.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", session.ID)

	require.NoError(t, uc.Discard(ctx, "s1"))
	repo.AssertExpectations(t)

	assertAppErrorCode(t, uc.Discard(ctx, ""), http.StatusBadRequest)
}
