package identity

import (
	"context"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/recompletion-service/internal/config"
	"github.com/SAP-F-2025/recompletion-service/internal/models"
	"github.com/SAP-F-2025/recompletion-service/internal/repositories"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
)

// Accounts is the part of the Casdoor client the directory needs.
type Accounts interface {
	GetUser(name string) (*casdoorsdk.User, error)
}

// CasdoorDirectory serves users from the local table with contact details taken from Casdoor,
// which owns the accounts. A failed lookup falls back to the local row.
type CasdoorDirectory struct {
	users    repositories.UserRepository
	accounts Accounts
	logger   *slog.Logger
}

var _ repositories.UserRepository = (*CasdoorDirectory)(nil)

func NewCasdoorClient(cfg config.CasdoorConfig) *casdoorsdk.Client {
	return casdoorsdk.NewClient(cfg.Endpoint, cfg.ClientID, cfg.ClientSecret, cfg.Certificate, cfg.OrganizationName, cfg.ApplicationName)
}

func NewCasdoorDirectory(users repositories.UserRepository, accounts Accounts, logger *slog.Logger) *CasdoorDirectory {
	return &CasdoorDirectory{
		users:    users,
		accounts: accounts,
		logger:   logger.With("component", "casdoor"),
	}
}

func (d *CasdoorDirectory) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := d.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d.enrich(ctx, user)
	return user, nil
}

func (d *CasdoorDirectory) GetByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	users, err := d.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range users {
		d.enrich(ctx, &users[i])
	}
	return users, nil
}

func (d *CasdoorDirectory) enrich(ctx context.Context, user *models.User) {
	if user.Username == "" {
		return
	}
	account, err := d.accounts.GetUser(user.Username)
	if err != nil {
		d.logger.WarnContext(ctx, "Casdoor lookup failed, using local profile", "user_id", user.ID, "error", err)
		return
	}
	if account == nil {
		return
	}

	if email := strings.TrimSpace(account.Email); email != "" {
		user.Email = email
	}
	if name := strings.TrimSpace(account.DisplayName); name != "" {
		first, last, _ := strings.Cut(name, " ")
		user.FirstName, user.LastName = first, strings.TrimSpace(last)
	}
}
