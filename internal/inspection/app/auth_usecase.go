package app

import (
	"context"
	"fmt"
	"time"

	"cov_inspection_service/internal/inspection/domain"
	"cov_inspection_service/pkg/database"
	"cov_inspection_service/pkg/encrypt"
	"cov_inspection_service/pkg/logger"
	"cov_inspection_service/pkg/roster"
	"cov_inspection_service/pkg/token"

	"go.uber.org/zap"
)

// RosterDirectory is the roster surface the auth flow needs.
type RosterDirectory interface {
	FindMemberInfo(capid string) *roster.MemberInfo
	IsWingAdmin(capid string, adminDuties []string) bool
	DutyPositions(capid string) []string
}

// AuthUseCase issues and revokes sessions. Identity is resolved against
// the CAPWATCH roster; the configured super admin authenticates with a
// bcrypt password instead of a date of birth.
type AuthUseCase interface {
	Login(ctx context.Context, req *domain.LoginReq) (*domain.LoginRes, error)
	Logout(ctx context.Context, capid string) error
	AccessInfo(ctx context.Context, capid string) (*domain.AccessInfo, error)
}

// AuthConfig is the credential configuration slice the usecase needs.
type AuthConfig struct {
	SuperAdminCAPID        string
	SuperAdminPasswordHash string
	AdminDutyPositions     []string
	ServiceName            string
	SessionTTL             time.Duration
}

type authUseCase struct {
	directory RosterDirectory
	sessions  database.RedisRepository[domain.Session]
	cfg       AuthConfig
}

// NewAuthUseCase create an AuthUseCase
func NewAuthUseCase(directory RosterDirectory,
	sessions database.RedisRepository[domain.Session],
	cfg AuthConfig,
) AuthUseCase {
	return &authUseCase{directory: directory, sessions: sessions, cfg: cfg}
}

func (u *authUseCase) Login(ctx context.Context, req *domain.LoginReq) (*domain.LoginRes, error) {
	if req.CAPID == "" || req.Secret == "" {
		return nil, domain.ErrInvalidCredentials
	}

	role, name, err := u.authenticate(req.CAPID, req.Secret)
	if err != nil {
		return nil, err
	}

	jwt, err := token.GenerateJWT(req.CAPID, string(role), u.cfg.ServiceName)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	session := domain.Session{
		Token:     jwt,
		CAPID:     req.CAPID,
		Role:      string(role),
		Name:      name,
		CreatedAt: time.Now(),
		ExpiredAt: time.Now().Add(u.cfg.SessionTTL),
	}
	if u.sessions != nil {
		if err := u.sessions.Set(ctx, sessionKey(req.CAPID), session, u.cfg.SessionTTL); err != nil {
			// the JWT alone still authenticates; losing the session only costs
			// server-side revocation
			logger.Log.Warn("session store write failed",
				zap.String("capid", req.CAPID), zap.Error(err))
		}
	}

	return &domain.LoginRes{
		Token:   jwt,
		CAPID:   req.CAPID,
		Role:    string(role),
		Name:    name,
		IsAdmin: token.IsAdmin(string(role)),
	}, nil
}

func (u *authUseCase) authenticate(capid, secret string) (token.RoleType, string, error) {
	if capid == u.cfg.SuperAdminCAPID {
		if err := encrypt.CheckPassword(u.cfg.SuperAdminPasswordHash, secret); err == nil {
			return token.RoleSuperAdmin, "Super Admin", nil
		}
		// fall through: the super admin may also log in as a plain member
	}

	info := u.directory.FindMemberInfo(capid)
	if info == nil || info.DOB == "" || info.DOB != secret {
		return "", "", domain.ErrInvalidCredentials
	}

	name := fmt.Sprintf("%s %s %s", info.Rank, info.FirstName, info.LastName)
	if u.directory.IsWingAdmin(capid, u.cfg.AdminDutyPositions) {
		return token.RoleAdmin, name, nil
	}
	return token.RoleInspector, name, nil
}

func (u *authUseCase) Logout(ctx context.Context, capid string) error {
	if u.sessions == nil {
		return nil
	}
	return u.sessions.Del(ctx, sessionKey(capid))
}

func (u *authUseCase) AccessInfo(ctx context.Context, capid string) (*domain.AccessInfo, error) {
	info := u.directory.FindMemberInfo(capid)
	if info == nil {
		if capid == u.cfg.SuperAdminCAPID {
			return &domain.AccessInfo{
				CAPID:              capid,
				Name:               "Super Admin",
				AdminPositionsList: u.cfg.AdminDutyPositions,
				IsSuperAdmin:       true,
			}, nil
		}
		return nil, domain.ErrMemberNotFound
	}

	positions := u.directory.DutyPositions(capid)
	adminPositions := []string{}
	for _, p := range positions {
		for _, admin := range u.cfg.AdminDutyPositions {
			if p == admin {
				adminPositions = append(adminPositions, p)
			}
		}
	}

	return &domain.AccessInfo{
		CAPID:              capid,
		Name:               fmt.Sprintf("%s %s", info.FirstName, info.LastName),
		Rank:               info.Rank,
		DutyPositions:      positions,
		AdminDutyPositions: adminPositions,
		AdminPositionsList: u.cfg.AdminDutyPositions,
		IsSuperAdmin:       capid == u.cfg.SuperAdminCAPID,
	}, nil
}

func sessionKey(capid string) string {
	return "session:" + capid
}
