package service

import (
	"cyberguard_backend/internal/model"
	"cyberguard_backend/internal/repository"
	"cyberguard_backend/internal/util"
)

type UserService struct {
	Repo *repository.UserRepository
}

func NewUserService(repo *repository.UserRepository) *UserService {
	return &UserService{Repo: repo}
}

func (s *UserService) List(page, limit int, status string) ([]model.User, int64, error) {
	return s.Repo.List(page, limit, model.UserStatus(status))
}

func (s *UserService) Get(id uint) (*model.User, error) {
	return s.Repo.FindByID(id)
}

func (s *UserService) Approve(id uint) error {
	return s.Repo.UpdateStatus(id, model.UserApproved)
}

func (s *UserService) Reject(id uint) error {
	return s.Repo.UpdateStatus(id, model.UserRejected)
}

func (s *UserService) UpdateRole(id uint, role string) error {
	r := model.UserRole(role)
	if r != model.RoleAdmin && r != model.RoleMember {
		return util.ErrPermissionDenied
	}
	return s.Repo.UpdateRole(id, r)
}

// Delete 管理员动作，也是唯一的硬删除入口（gorm 软删）
func (s *UserService) Delete(id uint) error {
	return s.Repo.Delete(id)
}

type ProfileUpdateRequest struct {
	Name        string `json:"name"`
	CompanyName string `json:"companyName"`
}

func (s *UserService) UpdateProfile(id uint, req ProfileUpdateRequest) (*model.User, error) {
	user, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if req.Name != "" {
		user.Name = req.Name
	}
	if req.CompanyName != "" {
		user.CompanyName = req.CompanyName
	}
	if err := s.Repo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}
