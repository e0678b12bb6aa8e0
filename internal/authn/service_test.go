package authn

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vancetran/medisupply-backend/internal/customers"
	"github.com/vancetran/medisupply-backend/pkg/config"
	"github.com/vancetran/medisupply-backend/pkg/db/models"
	"github.com/vancetran/medisupply-backend/pkg/enums"
	pkgerrors "github.com/vancetran/medisupply-backend/pkg/errors"
	"github.com/vancetran/medisupply-backend/pkg/logger"
	"github.com/vancetran/medisupply-backend/pkg/pagination"
	"github.com/vancetran/medisupply-backend/pkg/security"
)

type stubUserRepo struct {
	byEmail map[string]*models.User
	created []*models.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byEmail: map[string]*models.User{}}
}

func (s *stubUserRepo) addUser(u *models.User) *models.User {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	s.byEmail[u.Email] = u
	return u
}

func (s *stubUserRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubUserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = uuid.New()
	s.byEmail[user.Email] = user
	s.created = append(s.created, user)
	return user, nil
}

func (s *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	for _, u := range s.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := s.byEmail[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return nil
}

type noopCustomerRepo struct{}

func (noopCustomerRepo) WithTx(tx *gorm.DB) customers.Repository { return noopCustomerRepo{} }

func (noopCustomerRepo) Create(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	return customer, nil
}

func (noopCustomerRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	return nil, gorm.ErrRecordNotFound
}

func (noopCustomerRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Customer, error) {
	return nil, gorm.ErrRecordNotFound
}

func (noopCustomerRepo) List(ctx context.Context, params pagination.Params, filters customers.Filters) ([]models.Customer, int64, error) {
	return nil, 0, nil
}

func (noopCustomerRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return nil
}

func (noopCustomerRepo) RecordOrder(ctx context.Context, id uuid.UUID, grandTotal decimal.Decimal) error {
	return nil
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

// newTestService builds the service without a session manager; the covered
// paths reject before any session work happens.
func newTestService(t *testing.T, repo Repository) *service {
	t.Helper()
	return &service{
		repo:         repo,
		customerRepo: noopCustomerRepo{},
		jwtCfg:       config.JWTConfig{Secret: "secret", Issuer: "medisupply", ExpirationMinutes: 15},
		passwordCfg:  testPasswordConfig(),
		logg:         logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		now:          time.Now,
	}
}

func seedUser(t *testing.T, repo *stubUserRepo, email, password string, active bool) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, testPasswordConfig())
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return repo.addUser(&models.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     "Test User",
		Role:         enums.UserRoleStaff,
		IsActive:     active,
	})
}

func TestRegisterCreatesUser(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(t, repo)

	user, err := svc.Register(context.Background(), RegisterInput{
		Email:    "  Staff@Example.COM ",
		Password: "long-enough-password",
		FullName: "New Staffer",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if user.Email != "staff@example.com" {
		t.Fatalf("expected normalized email, got %s", user.Email)
	}
	if user.Role != enums.UserRoleStaff {
		t.Fatalf("expected default staff role, got %s", user.Role)
	}
	if !user.IsActive {
		t.Fatal("new accounts start active")
	}
	if user.PasswordHash == "long-enough-password" {
		t.Fatal("password must be hashed")
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := newTestService(t, newStubUserRepo())

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "a@example.com",
		Password: "short",
		FullName: "A",
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "taken@example.com", "password-123", true)
	svc := newTestService(t, repo)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "taken@example.com",
		Password: "password-456",
		FullName: "Second",
	})
	if err == nil {
		t.Fatal("expected conflict for existing email")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error got %v", err)
	}
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	svc := newTestService(t, newStubUserRepo())

	_, err := svc.Login(context.Background(), "nobody@example.com", "whatever")
	if err == nil {
		t.Fatal("expected unauthorized error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error got %v", err)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "user@example.com", "real-password", true)
	svc := newTestService(t, repo)

	_, err := svc.Login(context.Background(), "user@example.com", "wrong-password")
	if err == nil {
		t.Fatal("expected unauthorized error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error got %v", err)
	}
}

func TestLoginRejectsDisabledAccount(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "gone@example.com", "real-password", false)
	svc := newTestService(t, repo)

	_, err := svc.Login(context.Background(), "gone@example.com", "real-password")
	if err == nil {
		t.Fatal("expected unauthorized error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error got %v", err)
	}
}

func TestLogoutRequiresAccessID(t *testing.T) {
	svc := newTestService(t, newStubUserRepo())

	err := svc.Logout(context.Background(), "  ")
	if err == nil {
		t.Fatal("expected validation error for blank access id")
	}
}
