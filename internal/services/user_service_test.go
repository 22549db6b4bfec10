package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fintrack/fintrack-be/internal/apperr"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	user, err := svc.Register("Ana", "Ana@Example.com", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "ana@example.com", user.Email, "email is stored lowercase")

	// Login matches regardless of email casing.
	got, err := svc.Authenticate("ANA@example.COM", "secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Empty(t, got.PasswordHash)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	_, err := svc.Register("Ana", "ana@example.com", "secret123")
	require.NoError(t, err)

	_, err = svc.Register("Other", "ANA@example.com", "different1")
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestRegisterValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	_, err := svc.Register("", "ana@example.com", "secret123")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.Register("Ana", "ana@example.com", "short")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestAuthenticateFailuresAreIndistinguishable(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	_, err := svc.Register("Ana", "ana@example.com", "secret123")
	require.NoError(t, err)

	_, wrongPassword := svc.Authenticate("ana@example.com", "wrong-pass")
	_, unknownEmail := svc.Authenticate("nobody@example.com", "secret123")

	assert.Equal(t, apperr.KindAuth, apperr.KindOf(wrongPassword))
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(unknownEmail))
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestGetUserByIDNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	_, err := svc.GetUserByID("no-such-id")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
