package services

import (
	"context"
	"fmt"
	"time"

	"dailydiet/common"
	"dailydiet/models"
	"dailydiet/utils"
)

// ConflictPolicy decides what POST /sessions does when the caller already holds a session.
type ConflictPolicy string

const (
	// ConflictReuse returns the presented session unchanged.
	ConflictReuse ConflictPolicy = "reuse"
	// ConflictReject refuses to enroll a caller that already holds a session.
	ConflictReject ConflictPolicy = "reject"
)

func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch ConflictPolicy(s) {
	case "", ConflictReuse:
		return ConflictReuse, nil
	case ConflictReject:
		return ConflictReject, nil
	}
	return "", fmt.Errorf("unknown session conflict policy %q", s)
}

type SessionRepository interface {
	Ensure(ctx context.Context, s *models.Session) (*models.Session, bool, error)
	List(ctx context.Context) ([]models.Session, error)
}

// SessionService mints and resolves session tokens. Tokens are bearer
// capabilities: any well-formed token is accepted as an identity.
type SessionService struct {
	repo   SessionRepository
	policy ConflictPolicy
	newID  func() string
	now    func() time.Time
}

func NewSessionService(repo SessionRepository, policy ConflictPolicy) *SessionService {
	return &SessionService{repo: repo, policy: policy, newID: utils.NewToken, now: time.Now}
}

// Issue returns a fresh random token.
func (s *SessionService) Issue() string { return s.newID() }

// Resolve returns the presented token in canonical form when it is well-formed,
// otherwise a new one. issued reports whether a new token was minted.
func (s *SessionService) Resolve(requestToken string) (token string, issued bool) {
	if tok, ok := utils.CanonicalToken(requestToken); ok {
		return tok, false
	}
	return s.Issue(), true
}

// Enroll is the explicit bootstrap path. Under ConflictReject a caller that
// already presents a session gets common.ErrSessionExists.
func (s *SessionService) Enroll(ctx context.Context, presented string) (*models.Session, bool, error) {
	if utils.IsWellFormedToken(presented) && s.policy == ConflictReject {
		return nil, false, common.ErrSessionExists
	}

	token, issued := s.Resolve(presented)
	session, _, err := s.repo.Ensure(ctx, &models.Session{ID: token, CreatedAt: s.now()})
	if err != nil {
		return nil, false, err
	}
	return session, issued, nil
}

func (s *SessionService) List(ctx context.Context) ([]models.Session, error) {
	return s.repo.List(ctx)
}
