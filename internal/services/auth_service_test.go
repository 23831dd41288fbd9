package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthServiceFixture(t *testing.T) (*fakeStore, AuthService) {
	t.Helper()
	store := newFakeStore()
	svc := NewAuthService(&fakeAuthRepo{store: store}, &fakeCustomerRepo{store: store}, &fakeTransactor{store: store})
	return store, svc
}

func TestRegisterCustomer(t *testing.T) {
	store, svc := newAuthServiceFixture(t)

	phone := "2615551234"
	user, customer, err := svc.RegisterCustomer(RegisterRequest{
		Username:    "ana.torres",
		Email:       "ana@example.com",
		Password:    "s3cret-pass",
		FullName:    "Ana Torres",
		PhoneNumber: &phone,
	})
	require.NoError(t, err)

	assert.Equal(t, RoleCustomer, user.Role)
	assert.True(t, user.IsActive)
	require.NotNil(t, user.Email)
	assert.Equal(t, "ana@example.com", *user.Email)
	require.NotNil(t, user.FullName)
	assert.Equal(t, "Ana Torres", *user.FullName)

	// The customer profile is linked to the new user in the same transaction.
	require.NotNil(t, customer.UserID)
	assert.Equal(t, user.ID, *customer.UserID)
	assert.Equal(t, "Ana Torres", customer.FullName)
	require.Contains(t, store.users, user.ID)
	require.Contains(t, store.customers, customer.ID)

	// The stored hash is a bcrypt digest, never the raw password.
	assert.NotEqual(t, "s3cret-pass", store.passwords[user.ID])
	assert.NotEmpty(t, store.passwords[user.ID])
}

func TestRegisterCustomer_DuplicateUsername(t *testing.T) {
	_, svc := newAuthServiceFixture(t)

	req := RegisterRequest{
		Username: "ana.torres",
		Email:    "ana@example.com",
		Password: "s3cret-pass",
		FullName: "Ana Torres",
	}
	_, _, err := svc.RegisterCustomer(req)
	require.NoError(t, err)

	_, _, err = svc.RegisterCustomer(req)
	require.Error(t, err)
}

func TestCreateStaffUser(t *testing.T) {
	_, svc := newAuthServiceFixture(t)

	user, err := svc.CreateStaffUser(CreateStaffUserRequest{
		Username: "bruno.cook",
		Email:    "bruno@example.com",
		Password: "kitchen-pass",
		FullName: "Bruno Paz",
		Role:     RoleCook,
	})
	require.NoError(t, err)
	assert.Equal(t, RoleCook, user.Role)
	require.NotNil(t, user.Email)
	assert.Equal(t, "bruno@example.com", *user.Email)
	require.NotNil(t, user.FullName)
	assert.Equal(t, "Bruno Paz", *user.FullName)
}

func TestCreateStaffUser_RejectsInvalidRoles(t *testing.T) {
	_, svc := newAuthServiceFixture(t)

	for _, role := range []string{RoleCustomer, "superuser", ""} {
		_, err := svc.CreateStaffUser(CreateStaffUserRequest{
			Username: "staff",
			Email:    "staff@example.com",
			Password: "some-password",
			FullName: "Staff Member",
			Role:     role,
		})
		require.ErrorIs(t, err, ErrValidation, "role %q", role)
	}
}

func TestLogin(t *testing.T) {
	_, svc := newAuthServiceFixture(t)
	user, _, err := svc.RegisterCustomer(RegisterRequest{
		Username: "clara.ruiz",
		Email:    "clara@example.com",
		Password: "correct-horse",
		FullName: "Clara Ruiz",
	})
	require.NoError(t, err)

	resp, err := svc.Login(LoginRequest{Username: "clara.ruiz", Password: "correct-horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, user.ID, resp.User.ID)
}

func TestLogin_WrongPassword(t *testing.T) {
	_, svc := newAuthServiceFixture(t)
	_, _, err := svc.RegisterCustomer(RegisterRequest{
		Username: "clara.ruiz",
		Email:    "clara@example.com",
		Password: "correct-horse",
		FullName: "Clara Ruiz",
	})
	require.NoError(t, err)

	_, err = svc.Login(LoginRequest{Username: "clara.ruiz", Password: "wrong-horse"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownUser(t *testing.T) {
	_, svc := newAuthServiceFixture(t)
	_, err := svc.Login(LoginRequest{Username: "nobody", Password: "whatever"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_InactiveUser(t *testing.T) {
	store, svc := newAuthServiceFixture(t)
	user, _, err := svc.RegisterCustomer(RegisterRequest{
		Username: "diego.sol",
		Email:    "diego@example.com",
		Password: "some-password",
		FullName: "Diego Sol",
	})
	require.NoError(t, err)
	store.users[user.ID].IsActive = false

	_, err = svc.Login(LoginRequest{Username: "diego.sol", Password: "some-password"})
	require.ErrorIs(t, err, ErrUserInactive)
}

func TestGetUserProfile_NotFound(t *testing.T) {
	_, svc := newAuthServiceFixture(t)
	_, err := svc.GetUserProfile(424242)
	require.ErrorIs(t, err, ErrUserNotFound)
}
