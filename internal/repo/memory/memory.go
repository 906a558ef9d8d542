// Package memory is a process-local repository used when DB_DRIVER=memory.
// It mirrors the postgres repository semantics, including revoke-on-password-change atomicity.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/JMURv/session-keeper/internal/dto"
	md "github.com/JMURv/session-keeper/internal/models"
	"github.com/JMURv/session-keeper/internal/repo"
	"github.com/google/uuid"
)

type Repository struct {
	mu       sync.RWMutex
	users    map[uuid.UUID]*md.User
	emails   map[string]uuid.UUID
	sessions []*md.Session
	tokens   map[string]*md.Session
	accounts []*md.Account
}

func New() *Repository {
	return &Repository{
		users:  make(map[uuid.UUID]*md.User),
		emails: make(map[string]uuid.UUID),
		tokens: make(map[string]*md.Session),
	}
}

func (r *Repository) Close(_ context.Context) error {
	return nil
}

func (r *Repository) GetUserByID(_ context.Context, userID uuid.UUID) (*md.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, repo.ErrNotFound
	}

	res := *u
	return &res, nil
}

func (r *Repository) GetUserByEmail(_ context.Context, email string) (*md.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.emails[email]
	if !ok {
		return nil, repo.ErrNotFound
	}

	res := *r.users[id]
	return &res, nil
}

func (r *Repository) CreateUser(_ context.Context, req *dto.CreateUserRequest) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.emails[req.Email]; ok {
		return uuid.Nil, repo.ErrAlreadyExists
	}

	now := time.Now()
	u := &md.User{
		ID:          uuid.New(),
		Email:       req.Email,
		Password:    req.Password,
		FullName:    req.FullName,
		DateOfBirth: req.DateOfBirth,
		Address:     req.Address,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	r.users[u.ID] = u
	r.emails[u.Email] = u.ID
	return u.ID, nil
}

func (r *Repository) UpdateUser(_ context.Context, id uuid.UUID, req *dto.UpdateUserRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return repo.ErrNotFound
	}

	u.FullName = req.FullName
	u.DateOfBirth = req.DateOfBirth
	u.Address = req.Address
	u.UpdatedAt = time.Now()
	return nil
}

func (r *Repository) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return repo.ErrNotFound
	}

	u.Password = hash
	u.UpdatedAt = time.Now()
	r.revokeAll(id)
	return nil
}

func (r *Repository) CreateSession(_ context.Context, s *md.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tokens[s.Token]; ok {
		return repo.ErrAlreadyExists
	}

	s.ID = uuid.New()
	s.IsValid = true
	s.RevokedAt = nil
	s.CreatedAt = time.Now()

	stored := *s
	r.sessions = append(r.sessions, &stored)
	r.tokens[stored.Token] = &stored
	return nil
}

// ListSessions returns valid sessions in creation order.
func (r *Repository) ListSessions(_ context.Context, uid uuid.UUID) ([]md.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := make([]md.Session, 0)
	for _, s := range r.sessions {
		if s.UserID == uid && s.IsValid {
			res = append(res, *s)
		}
	}
	return res, nil
}

func (r *Repository) RevokeSession(_ context.Context, uid, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.sessions {
		if s.ID == id && s.UserID == uid {
			revoke(s, time.Now())
			return nil
		}
	}
	return repo.ErrNotFound
}

func (r *Repository) RevokeAllSessions(_ context.Context, uid uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.revokeAll(uid)
	return nil
}

func (r *Repository) IsSessionLive(_ context.Context, token string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.tokens[token]
	return ok && s.IsValid, nil
}

func (r *Repository) revokeAll(uid uuid.UUID) {
	now := time.Now()
	for _, s := range r.sessions {
		if s.UserID == uid {
			revoke(s, now)
		}
	}
}

func revoke(s *md.Session, at time.Time) {
	s.IsValid = false
	if s.RevokedAt == nil {
		s.RevokedAt = &at
	}
}
