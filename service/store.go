package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rahulraut1220/LegalEase/model"
)

// ContractFilter narrows ListContracts. Empty fields match everything.
type ContractFilter struct {
	ClientID string
	LawyerID string
	Status   model.Status
}

func (f ContractFilter) Match(c *model.Contract) bool {
	return (f.ClientID == "" || c.ClientID == f.ClientID) &&
		(f.LawyerID == "" || c.LawyerID == f.LawyerID) &&
		(f.Status == "" || c.Status == f.Status)
}

// ContractRepository persists contracts. UpdateContract writes only when the
// stored version equals c.Version and then increments it, returning
// ErrConflict otherwise.
type ContractRepository interface {
	CreateContract(ctx context.Context, c *model.Contract) error
	GetContract(ctx context.Context, id string) (*model.Contract, error)
	ListContracts(ctx context.Context, filter ContractFilter) ([]*model.Contract, error)
	UpdateContract(ctx context.Context, c *model.Contract) error
}

// ContractTypeRepository persists contract type templates.
type ContractTypeRepository interface {
	GetContractType(ctx context.Context, id string) (*model.ContractType, error)
	ListContractTypes(ctx context.Context) ([]*model.ContractType, error)
	ReplaceContractTypes(ctx context.Context, types []*model.ContractType) error
}

// UserRepository is the user directory.
type UserRepository interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsersByRole(ctx context.Context, role model.Role) ([]*model.User, error)
}

// Store is everything the services need from persistence.
type Store interface {
	ContractRepository
	ContractTypeRepository
	UserRepository
	Close() error
}

// MemoryStore is an in-memory Store for tests and local runs
type MemoryStore struct {
	mu        sync.RWMutex
	contracts map[string]*model.Contract
	types     map[string]*model.ContractType
	users     map[string]*model.User
}

func NewMemoryStore() *MemoryStore {
	slog.Info("memory store initialized")
	return &MemoryStore{
		contracts: make(map[string]*model.Contract),
		types:     make(map[string]*model.ContractType),
		users:     make(map[string]*model.User),
	}
}

func (s *MemoryStore) CreateContract(_ context.Context, c *model.Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contracts[c.ID]; ok {
		return ErrDuplicate
	}
	s.contracts[c.ID] = c.Clone()
	return nil
}

func (s *MemoryStore) GetContract(_ context.Context, id string) (*model.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contracts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c.Clone(), nil
}

// ListContracts returns matching contracts, newest first
func (s *MemoryStore) ListContracts(_ context.Context, filter ContractFilter) ([]*model.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*model.Contract, 0)
	for _, c := range s.contracts {
		if filter.Match(c) {
			result = append(result, c.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *MemoryStore) UpdateContract(_ context.Context, c *model.Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.contracts[c.ID]
	if !ok {
		return ErrNotFound
	}
	if current.Version != c.Version {
		return ErrConflict
	}
	c.Version++
	c.UpdatedAt = time.Now()
	s.contracts[c.ID] = c.Clone()
	return nil
}

func (s *MemoryStore) GetContractType(_ context.Context, id string) (*model.ContractType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.types[id]
	if !ok {
		return nil, ErrNotFound
	}
	return t.Clone(), nil
}

func (s *MemoryStore) ListContractTypes(_ context.Context) ([]*model.ContractType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*model.ContractType, 0, len(s.types))
	for _, t := range s.types {
		result = append(result, t.Clone())
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (s *MemoryStore) ReplaceContractTypes(_ context.Context, types []*model.ContractType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.types = make(map[string]*model.ContractType, len(types))
	for _, t := range types {
		s.types[t.ID] = t.Clone()
	}
	return nil
}

func (s *MemoryStore) CreateUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrDuplicate
		}
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *MemoryStore) GetUser(_ context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListUsersByRole(_ context.Context, role model.Role) ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*model.User, 0)
	for _, u := range s.users {
		if u.Role == role {
			cp := *u
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// Count returns the number of contracts in the store
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.contracts)
}

func (s *MemoryStore) Close() error { return nil }
