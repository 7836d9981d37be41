package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
)

func seedCashier(t *testing.T, db *gorm.DB, email, password string) *model.User {
	t.Helper()
	role := &model.Role{Code: model.RoleCashier, Name: "Cashier"}
	require.NoError(t, db.Create(role).Error)

	user := &model.User{
		Email:    email,
		FullName: "Casey Cashier",
		RoleID:   &role.ID,
		IsActive: true,
	}
	require.NoError(t, user.SetPassword(password))
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestLogin(t *testing.T) {
	db := newTestDB(t)
	seedCashier(t, db, "cashier@example.com", "secret123")
	svc := NewAuthService(repository.NewUserRepo(db), newTestHub())

	resp, err := svc.Login("cashier@example.com", "secret123")
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "cashier@example.com", resp.User.Email)
	require.NotNil(t, resp.Role)
	assert.Equal(t, model.RoleCashier, resp.Role.Code)
}

func TestLoginBadCredentials(t *testing.T) {
	db := newTestDB(t)
	seedCashier(t, db, "cashier@example.com", "secret123")
	svc := NewAuthService(repository.NewUserRepo(db), newTestHub())

	_, err := svc.Login("cashier@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login("nobody@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginInactiveUser(t *testing.T) {
	db := newTestDB(t)
	user := seedCashier(t, db, "cashier@example.com", "secret123")
	require.NoError(t, db.Model(user).Update("is_active", false).Error)
	svc := NewAuthService(repository.NewUserRepo(db), newTestHub())

	_, err := svc.Login("cashier@example.com", "secret123")
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestLoginSupersedesPreviousSession(t *testing.T) {
	db := newTestDB(t)
	seedCashier(t, db, "cashier@example.com", "secret123")
	svc := NewAuthService(repository.NewUserRepo(db), newTestHub())

	first, err := svc.Login("cashier@example.com", "secret123")
	require.NoError(t, err)
	second, err := svc.Login("cashier@example.com", "secret123")
	require.NoError(t, err)

	// The newer login rotates the token version; the older token is dead.
	_, err = svc.ValidateToken(first.Token)
	assert.ErrorIs(t, err, ErrSessionSuperseded)

	_, err = svc.ValidateToken(second.Token)
	assert.NoError(t, err)
}

func TestValidateTokenIdleTimeout(t *testing.T) {
	db := newTestDB(t)
	user := seedCashier(t, db, "cashier@example.com", "secret123")
	svc := NewAuthService(repository.NewUserRepo(db), newTestHub())

	resp, err := svc.Login("cashier@example.com", "secret123")
	require.NoError(t, err)

	stale := time.Now().Add(-10 * time.Minute)
	require.NoError(t, db.Model(user).Update("last_seen_at", stale).Error)

	_, err = svc.ValidateToken(resp.Token)
	assert.ErrorIs(t, err, ErrSessionTimeout)
}

func TestHeartbeatKeepsSessionAlive(t *testing.T) {
	db := newTestDB(t)
	user := seedCashier(t, db, "cashier@example.com", "secret123")
	svc := NewAuthService(repository.NewUserRepo(db), newTestHub())

	resp, err := svc.Login("cashier@example.com", "secret123")
	require.NoError(t, err)

	stale := time.Now().Add(-10 * time.Minute)
	require.NoError(t, db.Model(user).Update("last_seen_at", stale).Error)

	require.NoError(t, svc.Heartbeat(user.ID))

	_, err = svc.ValidateToken(resp.Token)
	assert.NoError(t, err)
}

func TestResetPassword(t *testing.T) {
	db := newTestDB(t)
	seedCashier(t, db, "cashier@example.com", "secret123")
	svc := NewAuthService(repository.NewUserRepo(db), newTestHub())

	assert.ErrorIs(t, svc.ResetPassword("cashier@example.com", "wrong", "newpass1"), ErrWrongPassword)
	require.NoError(t, svc.ResetPassword("cashier@example.com", "secret123", "newpass1"))

	_, err := svc.Login("cashier@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login("cashier@example.com", "newpass1")
	assert.NoError(t, err)
}
