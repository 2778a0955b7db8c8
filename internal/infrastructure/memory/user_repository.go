package memory

import (
	"context"
	"sync"
	"time"

	"github.com/oksasatya/go-contacts-api/internal/domain/entity"
	repo "github.com/oksasatya/go-contacts-api/internal/domain/repository"
)

// UserRepository keeps users in process memory. The mutex makes
// SwapRefreshToken a true compare-and-swap.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*entity.User
	byEmail map[string]string
	now     func() time.Time
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    map[string]*entity.User{},
		byEmail: map[string]string{},
		now:     time.Now,
	}
}

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[u.Email]; ok {
		return repo.ErrDuplicateEmail
	}
	now := r.now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	cp := *u
	r.byID[u.ID] = &cp
	r.byEmail[u.Email] = u.ID
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *r.byID[id]
	return &cp, nil
}

func (r *UserRepository) SetRefreshToken(_ context.Context, userID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[userID]
	if !ok {
		return repo.ErrNotFound
	}
	u.RefreshToken = token
	u.UpdatedAt = r.now().UTC()
	return nil
}

func (r *UserRepository) SwapRefreshToken(_ context.Context, userID, expected, next string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[userID]
	if !ok {
		return repo.ErrNotFound
	}
	if u.RefreshToken != expected {
		return repo.ErrRefreshTokenMismatch
	}
	u.RefreshToken = next
	u.UpdatedAt = r.now().UTC()
	return nil
}

func (r *UserRepository) MarkConfirmed(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byEmail[email]
	if !ok {
		return false, repo.ErrNotFound
	}
	u := r.byID[id]
	if u.Confirmed {
		return false, nil
	}
	u.Confirmed = true
	u.UpdatedAt = r.now().UTC()
	return true, nil
}

func (r *UserRepository) UpdateAvatar(_ context.Context, userID, url string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[userID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	u.AvatarURL = url
	u.UpdatedAt = r.now().UTC()
	cp := *u
	return &cp, nil
}
