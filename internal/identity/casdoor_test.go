package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/SAP-F-2025/recompletion-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/recompletion-service/internal/testutil"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccounts map[string]*casdoorsdk.User

func (f fakeAccounts) GetUser(name string) (*casdoorsdk.User, error) {
	if name == "offline" {
		return nil, errors.New("dial tcp: connection refused")
	}
	return f[name], nil
}

func TestCasdoorDirectory_GetByID(t *testing.T) {
	db := testutil.DB(t)
	accounts := fakeAccounts{
		"grace": {Name: "grace", DisplayName: "Grace Brewster Hopper", Email: "grace@navy.mil"},
		"blank": {Name: "blank"},
	}
	dir := NewCasdoorDirectory(postgres.NewUserPostgreSQL(db), accounts, testutil.Logger())

	tests := []struct {
		username  string
		wantEmail string
		wantName  string
	}{
		{username: "grace", wantEmail: "grace@navy.mil", wantName: "Grace Brewster Hopper"},
		{username: "blank", wantEmail: "blank@example.com", wantName: "Ada Lovelace"},
		{username: "unknown", wantEmail: "unknown@example.com", wantName: "Ada Lovelace"},
		{username: "offline", wantEmail: "offline@example.com", wantName: "Ada Lovelace"},
	}

	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			seeded := testutil.SeedUser(t, db, tt.username)

			user, err := dir.GetByID(context.Background(), seeded.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantEmail, user.Email)
			assert.Equal(t, tt.wantName, user.FullName())
		})
	}
}

func TestCasdoorDirectory_GetByIDs(t *testing.T) {
	db := testutil.DB(t)
	a := testutil.SeedUser(t, db, "grace")
	b := testutil.SeedUser(t, db, "offline")
	dir := NewCasdoorDirectory(postgres.NewUserPostgreSQL(db), fakeAccounts{
		"grace": {Name: "grace", Email: "grace@navy.mil"},
	}, testutil.Logger())

	users, err := dir.GetByIDs(context.Background(), []uint{a.ID, b.ID})
	require.NoError(t, err)
	require.Len(t, users, 2)

	byName := map[string]string{}
	for _, u := range users {
		byName[u.Username] = u.Email
	}
	assert.Equal(t, "grace@navy.mil", byName["grace"])
	assert.Equal(t, "offline@example.com", byName["offline"])
}

func TestCasdoorDirectory_MissingLocalUser(t *testing.T) {
	dir := NewCasdoorDirectory(postgres.NewUserPostgreSQL(testutil.DB(t)), fakeAccounts{}, testutil.Logger())

	_, err := dir.GetByID(context.Background(), 99)
	assert.Error(t, err)
}
