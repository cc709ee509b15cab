package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rahulraut1220/LegalEase/model"
	"github.com/rahulraut1220/LegalEase/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned by Login for an unknown email or a wrong password
var ErrInvalidCredentials = errors.New("invalid email or password")

// TokenIssuer signs an access token for u
type TokenIssuer func(u *model.User) (token string, expiresAt time.Time, err error)

type RegisterInput struct {
	Name                 string
	Email                string
	Password             string
	Role                 model.Role
	Phone                string
	Specialization       string
	BarAssociationNumber string
}

// Session is the result of a successful register or login
type Session struct {
	User      *model.User
	Token     string
	ExpiresAt time.Time
}

type AuthService struct {
	users      UserRepository
	issueToken TokenIssuer
	cost       int
}

func NewAuthService(users UserRepository, issuer TokenIssuer) *AuthService {
	return &AuthService{
		users:      users,
		issueToken: issuer,
		cost:       bcrypt.DefaultCost,
	}
}

// Register creates a client or lawyer account and signs it in
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, invalid("Name, email and password are required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, invalid("Invalid email address")
	}
	if in.Role == "" {
		in.Role = model.RoleClient
	}
	if in.Role != model.RoleClient && in.Role != model.RoleLawyer {
		return nil, invalid("Role must be client or lawyer")
	}
	if in.Role == model.RoleLawyer && strings.TrimSpace(in.Specialization) == "" {
		return nil, invalid("Specialization is required for lawyers")
	}

	u, err := s.create(ctx, in)
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "user registered", "user_id", u.ID, "role", u.Role)
	return s.session(u)
}

// Login checks the credentials and signs the user in
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.session(u)
}

// Me returns the account of the principal
func (s *AuthService) Me(ctx context.Context, p Principal) (*model.User, error) {
	u, err := s.users.GetUser(ctx, p.UserID)
	if errors.Is(err, ErrNotFound) {
		return nil, notFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return u, nil
}

// EnsureUser creates a bootstrap account unless one with the same email
// exists. Any role is allowed here, including admin.
func (s *AuthService) EnsureUser(ctx context.Context, in RegisterInput) (*model.User, bool, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	existing, err := s.users.GetUserByEmail(ctx, in.Email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, fmt.Errorf("failed to load user: %w", err)
	}
	if !in.Role.Valid() {
		return nil, false, invalid("Invalid role %q", in.Role)
	}
	u, err := s.create(ctx, in)
	if err != nil {
		return nil, false, err
	}
	return u, true, nil
}

func (s *AuthService) create(ctx context.Context, in RegisterInput) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	u := &model.User{
		ID:                   uuid.New().String(),
		Name:                 in.Name,
		Email:                in.Email,
		PasswordHash:         string(hash),
		Role:                 in.Role,
		Phone:                in.Phone,
		Specialization:       strings.TrimSpace(in.Specialization),
		BarAssociationNumber: in.BarAssociationNumber,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, invalid("User already exists")
		}
		return nil, fmt.Errorf("failed to save user: %w", err)
	}
	return u, nil
}

func (s *AuthService) session(u *model.User) (*Session, error) {
	token, expiresAt, err := s.issueToken(u)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &Session{User: u, Token: token, ExpiresAt: expiresAt}, nil
}
