package domain

import (
	"errors"
	"time"
)

// ErrInvalidCredentials covers every login failure; callers never learn
// which part was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrMemberNotFound capid matched nothing in the roster.
var ErrMemberNotFound = errors.New("member not found")

// Session is the Redis-backed login session.
type Session struct {
	Token     string    `json:"token"`
	CAPID     string    `json:"capid"`
	Role      string    `json:"role"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	ExpiredAt time.Time `json:"expired_at"`
}

// IsExpired reports whether the session has lapsed.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiredAt)
}

// LoginReq is the body of POST /admin_login: super admins send their
// password as the secret, members their date of birth (MM/DD/YYYY).
type LoginReq struct {
	CAPID  string `json:"capid" form:"capid"`
	Secret string `json:"dob" form:"dob"`
}

// LoginRes carries the issued session.
type LoginRes struct {
	Token   string `json:"token"`
	CAPID   string `json:"capid"`
	Role    string `json:"role"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"is_admin"`
}

// AccessInfo describes a member's access for the admin page.
type AccessInfo struct {
	CAPID              string   `json:"capid"`
	Name               string   `json:"name"`
	Rank               string   `json:"rank"`
	DutyPositions      []string `json:"all_duty_positions"`
	AdminDutyPositions []string `json:"admin_duty_positions"`
	AdminPositionsList []string `json:"admin_duty_positions_list"`
	IsSuperAdmin       bool     `json:"is_super_admin"`
}
