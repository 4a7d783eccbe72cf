package service

import (
	"cyberguard_backend/internal/config"
	"cyberguard_backend/internal/model"
	"cyberguard_backend/internal/repository"
	"cyberguard_backend/internal/util"
	"errors"
	"testing"
	"time"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	db := newTestDB(t)
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret-for-auth-service-tests"
	cfg.JWT.ExpireTime = time.Hour
	return NewAuthService(repository.NewUserRepository(db), cfg)
}

func TestFirstRegistrantBecomesAdmin(t *testing.T) {
	svc := newAuthService(t)

	first, err := svc.Register(RegisterRequest{
		Name: "Alice", Email: "alice@example.com", Password: "password123",
	})
	if err != nil {
		t.Fatalf("register first: %v", err)
	}
	if first.Role != model.RoleAdmin || first.Status != model.UserApproved {
		t.Errorf("first user = %s/%s, want admin/approved", first.Role, first.Status)
	}

	second, err := svc.Register(RegisterRequest{
		Name: "Bob", Email: "bob@example.com", Password: "password123",
	})
	if err != nil {
		t.Fatalf("register second: %v", err)
	}
	if second.Role != model.RoleMember || second.Status != model.UserPending {
		t.Errorf("second user = %s/%s, want member/pending", second.Role, second.Status)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newAuthService(t)

	if _, err := svc.Register(RegisterRequest{
		Name: "Alice", Email: "alice@example.com", Password: "password123",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := svc.Register(RegisterRequest{
		Name: "Alice Again", Email: "alice@example.com", Password: "password456",
	})
	if !errors.Is(err, util.ErrEmailRegistered) {
		t.Errorf("err = %v, want ErrEmailRegistered", err)
	}
}

func TestLoginApprovalGate(t *testing.T) {
	svc := newAuthService(t)
	userRepo := svc.UserRepo

	if _, err := svc.Register(RegisterRequest{
		Name: "Alice", Email: "alice@example.com", Password: "password123",
	}); err != nil {
		t.Fatalf("register admin: %v", err)
	}
	bob, err := svc.Register(RegisterRequest{
		Name: "Bob", Email: "bob@example.com", Password: "password123",
	})
	if err != nil {
		t.Fatalf("register bob: %v", err)
	}

	// 管理员直接可登录
	token, user, err := svc.Login("alice@example.com", "password123")
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	if token == "" || user.Email != "alice@example.com" {
		t.Errorf("login returned token=%q user=%v", token, user)
	}

	// 待审批用户被拒绝登录
	if _, _, err := svc.Login("bob@example.com", "password123"); !errors.Is(err, util.ErrAccountNotApproved) {
		t.Errorf("pending login err = %v, want ErrAccountNotApproved", err)
	}

	// 批准后可登录
	if err := userRepo.UpdateStatus(bob.ID, model.UserApproved); err != nil {
		t.Fatalf("approve bob: %v", err)
	}
	if _, _, err := svc.Login("bob@example.com", "password123"); err != nil {
		t.Errorf("approved login: %v", err)
	}

	// 拒绝后区分于待审批
	if err := userRepo.UpdateStatus(bob.ID, model.UserRejected); err != nil {
		t.Fatalf("reject bob: %v", err)
	}
	if _, _, err := svc.Login("bob@example.com", "password123"); !errors.Is(err, util.ErrAccountRejected) {
		t.Errorf("rejected login err = %v, want ErrAccountRejected", err)
	}
}

func TestLoginWrongCredentials(t *testing.T) {
	svc := newAuthService(t)

	if _, err := svc.Register(RegisterRequest{
		Name: "Alice", Email: "alice@example.com", Password: "password123",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, err := svc.Login("alice@example.com", "wrong-password"); !errors.Is(err, util.ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := svc.Login("nobody@example.com", "password123"); !errors.Is(err, util.ErrInvalidCredentials) {
		t.Errorf("unknown email err = %v, want ErrInvalidCredentials", err)
	}
}
