package memory

import (
	"context"
	"slices"
	"time"

	"github.com/JMURv/session-keeper/internal/dto"
	md "github.com/JMURv/session-keeper/internal/models"
	"github.com/JMURv/session-keeper/internal/repo"
	"github.com/google/uuid"
)

func (r *Repository) CreateAccount(_ context.Context, uid uuid.UUID, req *dto.CreateAccountRequest) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[uid]; !ok {
		return uuid.Nil, repo.ErrNotFound
	}

	a := &md.Account{
		ID:           uuid.New(),
		UserID:       uid,
		AccountType:  req.AccountType,
		Email:        req.Email,
		Secret:       req.Secret,
		LastModified: time.Now(),
	}
	r.accounts = append(r.accounts, a)
	return a.ID, nil
}

// ListAccounts returns the most recently modified accounts first.
func (r *Repository) ListAccounts(_ context.Context, uid uuid.UUID) ([]md.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := make([]md.Account, 0)
	for i := len(r.accounts) - 1; i >= 0; i-- {
		if r.accounts[i].UserID == uid {
			res = append(res, *r.accounts[i])
		}
	}

	slices.SortStableFunc(
		res, func(a, b md.Account) int {
			return b.LastModified.Compare(a.LastModified)
		},
	)
	return res, nil
}

func (r *Repository) GetAccount(_ context.Context, uid, id uuid.UUID) (*md.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a := r.findAccount(uid, id)
	if a == nil {
		return nil, repo.ErrNotFound
	}

	res := *a
	return &res, nil
}

func (r *Repository) UpdateAccount(_ context.Context, uid, id uuid.UUID, req *dto.UpdateAccountRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a := r.findAccount(uid, id)
	if a == nil {
		return repo.ErrNotFound
	}

	a.AccountType = req.AccountType
	a.Email = req.Email
	if req.Secret != "" {
		a.Secret = req.Secret
	}
	a.LastModified = time.Now()
	return nil
}

func (r *Repository) DeleteAccount(_ context.Context, uid, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := slices.IndexFunc(
		r.accounts, func(a *md.Account) bool {
			return a.ID == id && a.UserID == uid
		},
	)
	if idx < 0 {
		return repo.ErrNotFound
	}

	r.accounts = slices.Delete(r.accounts, idx, idx+1)
	return nil
}

func (r *Repository) findAccount(uid, id uuid.UUID) *md.Account {
	for _, a := range r.accounts {
		if a.ID == id && a.UserID == uid {
			return a
		}
	}
	return nil
}
