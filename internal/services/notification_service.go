package services

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	netmail "net/mail"
	"strings"

	"github.com/SAP-F-2025/recompletion-service/internal/mail"
	"github.com/SAP-F-2025/recompletion-service/internal/models"
)

// Template placeholders understood in the subject and body.
const (
	PlaceholderCourseName = "{$a->coursename}"
	PlaceholderProfileURL = "{$a->profileurl}"
	PlaceholderLink       = "{$a->link}"
	PlaceholderFullName   = "{$a->fullname}"
	PlaceholderEmail      = "{$a->email}"
)

const (
	DefaultEmailSubject = "Course completion reset: {$a->coursename}"
	DefaultEmailBody    = "Hi {$a->fullname},\n\n" +
		"Your completion of the course {$a->coursename} has been reset and you are now required to complete it again.\n\n" +
		"Course: {$a->link}\n" +
		"Your profile: {$a->profileurl}\n"
)

// NotificationService tells a learner that their course completion was reset
type NotificationService interface {
	NotifyReset(ctx context.Context, userID uint, course *models.Course, cfg *models.EffectiveConfig) error
}

// UserDirectory resolves users for messaging.
type UserDirectory interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

type NotificationConfig struct {
	SiteURL string
	From    netmail.Address
}

type notificationService struct {
	mailer mail.Mailer
	users  UserDirectory
	config NotificationConfig
	logger *slog.Logger
}

func NewNotificationService(mailer mail.Mailer, users UserDirectory, config NotificationConfig, logger *slog.Logger) NotificationService {
	return &notificationService{
		mailer: mailer,
		users:  users,
		config: config,
		logger: logger,
	}
}

func (s *notificationService) NotifyReset(ctx context.Context, userID uint, course *models.Course, cfg *models.EffectiveConfig) error {
	if cfg == nil || !cfg.EmailEnable {
		return nil
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user %d: %w", userID, err)
	}
	if user.Email == "" {
		s.logger.WarnContext(ctx, "Skipping recompletion message, user has no email", "user_id", userID, "course_id", course.ID)
		return nil
	}

	subject, body := RenderResetMessage(cfg, user, course, s.config.SiteURL)
	msg := mail.Message{
		From:    s.config.From,
		To:      netmail.Address{Name: user.FullName(), Address: user.Email},
		Subject: subject,
		Text:    body,
		HTML:    textToHTML(body),
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send recompletion message: %w", err)
	}

	s.logger.InfoContext(ctx, "Recompletion message sent", "user_id", userID, "course_id", course.ID)
	return nil
}

// RenderResetMessage fills the configured subject and body, using the defaults for blank text.
func RenderResetMessage(cfg *models.EffectiveConfig, user *models.User, course *models.Course, siteURL string) (string, string) {
	subject, body := strings.TrimSpace(cfg.EmailSubject), strings.TrimSpace(cfg.EmailBody)
	if subject == "" {
		subject = DefaultEmailSubject
	}
	if body == "" {
		body = DefaultEmailBody
	}

	base := strings.TrimRight(siteURL, "/")
	r := strings.NewReplacer(
		PlaceholderCourseName, course.FullName,
		PlaceholderProfileURL, fmt.Sprintf("%s/user/profile.php?id=%d", base, user.ID),
		PlaceholderLink, fmt.Sprintf("%s/course/view.php?id=%d", base, course.ID),
		PlaceholderFullName, user.FullName(),
		PlaceholderEmail, user.Email,
	)
	return r.Replace(subject), r.Replace(body)
}

func textToHTML(text string) string {
	return strings.ReplaceAll(html.EscapeString(text), "\n", "<br />\n")
}
