package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"cov_inspection_service/internal/inspection/domain"
	"cov_inspection_service/pkg/encrypt"
	"cov_inspection_service/pkg/roster"
	"cov_inspection_service/pkg/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authConfig(t *testing.T) AuthConfig {
	t.Helper()
	hash, err := encrypt.HashPassword("sup3r-secret")
	require.NoError(t, err)
	return AuthConfig{
		SuperAdminCAPID:        "100000",
		SuperAdminPasswordHash: hash,
		AdminDutyPositions:     []string{"Transportation Officer", "Director of Operations"},
		ServiceName:            "inspection_service",
		SessionTTL:             time.Hour,
	}
}

func TestLoginSuperAdmin(t *testing.T) {
	sessions := newFakeSessions()
	u := NewAuthUseCase(emptyDirectory(), sessions, authConfig(t))

	res, err := u.Login(context.Background(), &domain.LoginReq{CAPID: "100000", Secret: "sup3r-secret"})
	require.NoError(t, err)

	assert.Equal(t, string(token.RoleSuperAdmin), res.Role)
	assert.True(t, res.IsAdmin)
	assert.NotEmpty(t, res.Token)

	claims, err := token.ParseJWT(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "100000", claims.CAPID)

	stored, err := sessions.Get(context.Background(), "session:100000")
	require.NoError(t, err)
	assert.Equal(t, res.Token, stored.Token)
}

func TestLoginMemberByDOB(t *testing.T) {
	directory := emptyDirectory()
	directory.members["123456"] = &roster.MemberInfo{
		CAPID: "123456", Rank: "Capt", FirstName: "Jane", LastName: "Smith", DOB: "01/02/1990",
	}
	directory.admins["123456"] = true

	u := NewAuthUseCase(directory, newFakeSessions(), authConfig(t))

	res, err := u.Login(context.Background(), &domain.LoginReq{CAPID: "123456", Secret: "01/02/1990"})
	require.NoError(t, err)
	assert.Equal(t, string(token.RoleAdmin), res.Role)
	assert.Equal(t, "Capt Jane Smith", res.Name)
}

func TestLoginMemberWithoutAdminDuty(t *testing.T) {
	directory := emptyDirectory()
	directory.members["234567"] = &roster.MemberInfo{
		CAPID: "234567", Rank: "SM", FirstName: "Bob", LastName: "Jones", DOB: "03/04/1985",
	}

	u := NewAuthUseCase(directory, newFakeSessions(), authConfig(t))

	res, err := u.Login(context.Background(), &domain.LoginReq{CAPID: "234567", Secret: "03/04/1985"})
	require.NoError(t, err)
	assert.Equal(t, string(token.RoleInspector), res.Role)
	assert.False(t, res.IsAdmin)
}

func TestLoginWrongDOB(t *testing.T) {
	directory := emptyDirectory()
	directory.members["234567"] = &roster.MemberInfo{CAPID: "234567", DOB: "03/04/1985"}

	u := NewAuthUseCase(directory, newFakeSessions(), authConfig(t))

	_, err := u.Login(context.Background(), &domain.LoginReq{CAPID: "234567", Secret: "01/01/2000"})
	assert.True(t, errors.Is(err, domain.ErrInvalidCredentials))
}

func TestLoginUnknownCAPID(t *testing.T) {
	u := NewAuthUseCase(emptyDirectory(), newFakeSessions(), authConfig(t))

	_, err := u.Login(context.Background(), &domain.LoginReq{CAPID: "999999", Secret: "01/01/2000"})
	assert.True(t, errors.Is(err, domain.ErrInvalidCredentials))
}

func TestLoginMissingFields(t *testing.T) {
	u := NewAuthUseCase(emptyDirectory(), newFakeSessions(), authConfig(t))

	_, err := u.Login(context.Background(), &domain.LoginReq{CAPID: "", Secret: ""})
	assert.True(t, errors.Is(err, domain.ErrInvalidCredentials))
}

func TestLogoutDropsSession(t *testing.T) {
	sessions := newFakeSessions()
	u := NewAuthUseCase(emptyDirectory(), sessions, authConfig(t))

	_, err := u.Login(context.Background(), &domain.LoginReq{CAPID: "100000", Secret: "sup3r-secret"})
	require.NoError(t, err)

	require.NoError(t, u.Logout(context.Background(), "100000"))
	_, err = sessions.Get(context.Background(), "session:100000")
	assert.Error(t, err)
}

func TestAccessInfo(t *testing.T) {
	directory := emptyDirectory()
	directory.members["123456"] = &roster.MemberInfo{
		CAPID: "123456", Rank: "Capt", FirstName: "Jane", LastName: "Smith",
	}
	directory.duties["123456"] = []string{"Transportation Officer", "Safety Officer"}

	u := NewAuthUseCase(directory, newFakeSessions(), authConfig(t))

	info, err := u.AccessInfo(context.Background(), "123456")
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", info.Name)
	assert.Equal(t, []string{"Transportation Officer", "Safety Officer"}, info.DutyPositions)
	assert.Equal(t, []string{"Transportation Officer"}, info.AdminDutyPositions)
	assert.False(t, info.IsSuperAdmin)
}
