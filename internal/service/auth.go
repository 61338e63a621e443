package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"portfolioapi/internal/analytics"
	"portfolioapi/internal/audit"
	"portfolioapi/internal/auth"
	"portfolioapi/internal/model"
	"portfolioapi/internal/repository"
)

type RegisterInput struct {
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=8,max=72"`
	FirstName      string `json:"first_name" validate:"required,max=100"`
	LastName       string `json:"last_name" validate:"required,max=100"`
	OrganizationID string `json:"organization_id,omitempty"`
	Department     string `json:"department,omitempty"`
	Title          string `json:"title,omitempty"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

// Session is returned by Login and Refresh.
type Session struct {
	User   *model.User    `json:"user"`
	Tokens auth.TokenPair `json:"tokens"`
}

// AuthService handles accounts and tokens.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	Login(ctx context.Context, in LoginInput) (*Session, error)
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
	Me(ctx context.Context) (*model.User, error)
	ChangePassword(ctx context.Context, in ChangePasswordInput) error
	CurrentActor(ctx context.Context, userID string) (auth.Actor, error)
}

type authService struct {
	users  repository.UserRepository
	orgs   repository.OrganizationRepository
	tokens *auth.TokenManager
	audit  auditor
	log    *zap.Logger
}

func NewAuthService(r Repositories, tokens *auth.TokenManager, rec audit.Recorder, log *zap.Logger) AuthService {
	return &authService{users: r.Users, orgs: r.Organizations, tokens: tokens, audit: newAuditor(rec, log), log: log}
}

// Register creates a pending member account. A requested organization is only
// recorded; the account joins it when an admin there activates it.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := check(in); err != nil {
		return nil, err
	}
	if _, err := s.users.FindOne(ctx, repository.Filter{"email": in.Email}); err == nil {
		return nil, ErrConflict
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if in.OrganizationID != "" {
		if _, err := s.orgs.FindByID(ctx, in.OrganizationID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, invalid("organization %s does not exist", in.OrganizationID)
			}
			return nil, err
		}
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	ts := now()
	u := &model.User{
		ID:            newID(),
		Email:         in.Email,
		PasswordHash:  hash,
		FirstName:     strings.TrimSpace(in.FirstName),
		LastName:      strings.TrimSpace(in.LastName),
		Role:          auth.RoleMember,
		Status:        model.UserStatusPending,
		Department:    in.Department,
		Title:         in.Title,
		Skills:        []model.Skill{},
		CapacityHours: analytics.DefaultCapacityHours,
		CreatedAt:     ts,
		UpdatedAt:     ts,

		RequestedOrganizationID: in.OrganizationID,
	}
	created, err := s.users.Create(ctx, u)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	s.audit.record(ctx, auth.Actor{UserID: created.ID, OrgID: created.RequestedOrganizationID}, audit.ActionCreate, "user", created.ID, nil)
	return created, nil
}

// Login verifies credentials. Pending and active accounts may log in.
func (s *authService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := check(in); err != nil {
		return nil, err
	}
	u, err := s.users.FindOne(ctx, repository.Filter{"email": in.Email})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := auth.CheckPassword(u.PasswordHash, in.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !canSignIn(u) {
		return nil, ErrAccountDisabled
	}

	ts := now()
	if updated, err := s.users.Update(ctx, u.ID, repository.Fields{"last_login_at": ts}); err != nil {
		s.log.Warn("update last login failed", zap.String("user_id", u.ID), zap.Error(err))
	} else {
		u = updated
	}
	sess, err := s.session(u)
	if err != nil {
		return nil, err
	}
	s.audit.record(ctx, actorOf(u), audit.ActionLogin, "user", u.ID, nil)
	return sess, nil
}

// Refresh exchanges a refresh token for a new pair built from the current user record.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	a, err := s.tokens.Parse(refreshToken, auth.TokenRefresh)
	if err != nil {
		return nil, ErrUnauthorized
	}
	u, err := s.users.FindByID(ctx, a.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if !canSignIn(u) {
		return nil, ErrAccountDisabled
	}
	return s.session(u)
}

// CurrentActor builds the request actor from the stored user so status, role
// and membership changes apply before the access token expires.
func (s *authService) CurrentActor(ctx context.Context, userID string) (auth.Actor, error) {
	u, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return auth.Actor{}, auth.ErrInvalidToken
	}
	if err != nil {
		return auth.Actor{}, err
	}
	if !canSignIn(u) {
		return auth.Actor{}, auth.ErrInactiveAccount
	}
	return actorOf(u), nil
}

func (s *authService) Me(ctx context.Context) (*model.User, error) {
	a, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, a.UserID)
	return u, mapRepoErr(err)
}

func (s *authService) ChangePassword(ctx context.Context, in ChangePasswordInput) error {
	a, err := actorFrom(ctx)
	if err != nil {
		return err
	}
	if err := check(in); err != nil {
		return err
	}
	u, err := s.users.FindByID(ctx, a.UserID)
	if err != nil {
		return mapRepoErr(err)
	}
	if err := auth.CheckPassword(u.PasswordHash, in.CurrentPassword); err != nil {
		return ErrInvalidCredentials
	}
	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	if _, err := s.users.Update(ctx, u.ID, repository.Fields{"password_hash": hash, "updated_at": now()}); err != nil {
		return mapRepoErr(err)
	}
	s.audit.record(ctx, a, audit.ActionUpdate, "user", u.ID, map[string]any{"field": "password"})
	return nil
}

func (s *authService) session(u *model.User) (*Session, error) {
	pair, err := s.tokens.Issue(actorOf(u))
	if err != nil {
		return nil, err
	}
	return &Session{User: u, Tokens: pair}, nil
}

func canSignIn(u *model.User) bool {
	return u.Status == model.UserStatusActive || u.Status == model.UserStatusPending
}

// actorOf only carries the organization for active accounts.
func actorOf(u *model.User) auth.Actor {
	a := auth.Actor{UserID: u.ID, Role: u.Role}
	if u.Status == model.UserStatusActive {
		a.OrgID = u.OrganizationID
	}
	return a
}
