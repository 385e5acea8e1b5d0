package service

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/WinKyaw/InventSight-sub004/internal/model"
	"github.com/WinKyaw/InventSight-sub004/pkg/jwt"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *fakeUserRepo) FindByEmail(email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindByID(id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) Create(user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Update(user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) UpdateTokenVersion(userID uuid.UUID, version string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		u.TokenVersion = version
	}
	return nil
}

func seedUser(t *testing.T, repo *fakeUserRepo, password string) *model.User {
	t.Helper()
	user := &model.User{
		Email:     "manager@example.com",
		FullName:  "Warehouse Manager",
		CompanyID: uuid.New(),
		IsActive:  true,
	}
	if err := user.SetPassword(password); err != nil {
		t.Fatal(err)
	}
	if err := repo.Create(user); err != nil {
		t.Fatal(err)
	}
	return user
}

func TestLoginIssuesValidToken(t *testing.T) {
	repo := newFakeUserRepo()
	user := seedUser(t, repo, "hunter22")
	auth := NewAuthService(repo, zap.NewNop())

	resp, err := auth.Login(LoginInput{Email: user.Email, Password: "hunter22"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := jwt.ValidateToken(resp.Token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.UserID != user.ID || claims.CompanyID != user.CompanyID {
		t.Fatal("claims do not match user")
	}
	if claims.TokenVersion != user.TokenVersion {
		t.Fatal("token version must match the stored session")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	repo := newFakeUserRepo()
	user := seedUser(t, repo, "hunter22")
	auth := NewAuthService(repo, zap.NewNop())

	if _, err := auth.Login(LoginInput{Email: user.Email, Password: "wrong"}); err == nil {
		t.Fatal("wrong password should fail")
	}
	if _, err := auth.Login(LoginInput{Email: "nobody@example.com", Password: "hunter22"}); err == nil {
		t.Fatal("unknown email should fail")
	}

	user.IsActive = false
	if _, err := auth.Login(LoginInput{Email: user.Email, Password: "hunter22"}); err == nil {
		t.Fatal("deactivated account should fail")
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	repo := newFakeUserRepo()
	user := seedUser(t, repo, "hunter22")
	auth := NewAuthService(repo, zap.NewNop())

	resp, err := auth.Login(LoginInput{Email: user.Email, Password: "hunter22"})
	if err != nil {
		t.Fatal(err)
	}
	claims, _ := jwt.ValidateToken(resp.Token)

	if err := auth.Logout(user.ID); err != nil {
		t.Fatal(err)
	}
	if user.TokenVersion == claims.TokenVersion {
		t.Fatal("logout must rotate the token version")
	}
}

func TestSecondLoginInvalidatesFirstSession(t *testing.T) {
	repo := newFakeUserRepo()
	user := seedUser(t, repo, "hunter22")
	auth := NewAuthService(repo, zap.NewNop())

	first, err := auth.Login(LoginInput{Email: user.Email, Password: "hunter22"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := auth.Login(LoginInput{Email: user.Email, Password: "hunter22"}); err != nil {
		t.Fatal(err)
	}

	firstClaims, _ := jwt.ValidateToken(first.Token)
	if firstClaims.TokenVersion == user.TokenVersion {
		t.Fatal("second login must rotate the token version")
	}
}
