package services

import (
	"context"
	"errors"
	"testing"

	"github.com/SAP-F-2025/recompletion-service/internal/mail"
	"github.com/SAP-F-2025/recompletion-service/internal/models"
	"github.com/SAP-F-2025/recompletion-service/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*models.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestRenderResetMessage(t *testing.T) {
	user := &models.User{ID: 12, FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com"}
	course := &models.Course{ID: 4, FullName: "Navy Compilers"}

	tests := []struct {
		name        string
		cfg         *models.EffectiveConfig
		wantSubject string
		wantBody    []string
	}{
		{
			name:        "defaults for blank text",
			cfg:         &models.EffectiveConfig{EmailSubject: "  "},
			wantSubject: "Course completion reset: Navy Compilers",
			wantBody: []string{
				"Hi Grace Hopper,",
				"https://lms.example.com/course/view.php?id=4",
				"https://lms.example.com/user/profile.php?id=12",
			},
		},
		{
			name: "custom text with every placeholder",
			cfg: &models.EffectiveConfig{
				EmailSubject: "Redo {$a->coursename}",
				EmailBody:    "{$a->fullname} <{$a->email}> go to {$a->link} or {$a->profileurl}",
			},
			wantSubject: "Redo Navy Compilers",
			wantBody: []string{
				"Grace Hopper <grace@example.com> go to https://lms.example.com/course/view.php?id=4 or https://lms.example.com/user/profile.php?id=12",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, body := RenderResetMessage(tt.cfg, user, course, "https://lms.example.com/")
			assert.Equal(t, tt.wantSubject, subject)
			for _, want := range tt.wantBody {
				assert.Contains(t, body, want)
			}
			assert.NotContains(t, body, "{$a->")
		})
	}
}

func TestNotificationService_NotifyReset(t *testing.T) {
	course := &models.Course{ID: 4, FullName: "Navy Compilers"}
	enabled := &models.EffectiveConfig{EmailEnable: true}

	t.Run("sends text and html", func(t *testing.T) {
		users := new(MockUserDirectory)
		users.On("GetByID", mock.Anything, uint(12)).
			Return(&models.User{ID: 12, FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com"}, nil)
		mailer := mail.NewMockMailer()
		svc := NewNotificationService(mailer, users, NotificationConfig{SiteURL: "https://lms.example.com"}, testutil.Logger())

		require.NoError(t, svc.NotifyReset(context.Background(), 12, course, enabled))

		sent := mailer.Messages()
		require.Len(t, sent, 1)
		assert.Equal(t, "grace@example.com", sent[0].To.Address)
		assert.Equal(t, "Grace Hopper", sent[0].To.Name)
		assert.Contains(t, sent[0].HTML, "Hi Grace Hopper,<br />")
		users.AssertExpectations(t)
	})

	t.Run("disabled sends nothing", func(t *testing.T) {
		users := new(MockUserDirectory)
		mailer := mail.NewMockMailer()
		svc := NewNotificationService(mailer, users, NotificationConfig{}, testutil.Logger())

		require.NoError(t, svc.NotifyReset(context.Background(), 12, course, &models.EffectiveConfig{}))
		assert.Empty(t, mailer.Messages())
		users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("user without email is skipped", func(t *testing.T) {
		users := new(MockUserDirectory)
		users.On("GetByID", mock.Anything, uint(12)).Return(&models.User{ID: 12}, nil)
		mailer := mail.NewMockMailer()
		svc := NewNotificationService(mailer, users, NotificationConfig{}, testutil.Logger())

		require.NoError(t, svc.NotifyReset(context.Background(), 12, course, enabled))
		assert.Empty(t, mailer.Messages())
	})

	t.Run("lookup failure is returned", func(t *testing.T) {
		users := new(MockUserDirectory)
		users.On("GetByID", mock.Anything, uint(12)).Return(nil, errors.New("connection reset"))
		svc := NewNotificationService(mail.NewMockMailer(), users, NotificationConfig{}, testutil.Logger())

		err := svc.NotifyReset(context.Background(), 12, course, enabled)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection reset")
	})
}
