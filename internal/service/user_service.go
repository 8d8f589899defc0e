package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Andywugh/habit-tracker/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	// ErrEmailTaken 表示注册邮箱已被占用
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials 表示邮箱或密码不匹配
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUserNotFound 在用户不存在时返回
	ErrUserNotFound = errors.New("user not found")
	// ErrWeakPassword 表示密码长度不足
	ErrWeakPassword = errors.New("password must be at least 6 characters")
)

// UserService 负责账号注册、认证与资料维护
type UserService struct {
	db *gorm.DB
}

// RegisterInput 定义注册所需字段
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// NewUserService 构造 UserService
func NewUserService(gdb *gorm.DB) *UserService {
	return &UserService{db: gdb}
}

// Register 创建新账号，密码以 bcrypt 哈希存储
func (s *UserService) Register(input RegisterInput) (*db.User, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email address")
	}
	if len(input.Password) < 6 {
		return nil, ErrWeakPassword
	}

	var existing db.User
	err := s.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := db.User{
		Email:    email,
		Password: string(hashed),
		Name:     strings.TrimSpace(input.Name),
	}

	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return &user, nil
}

// Authenticate 校验邮箱密码，失败时统一返回 ErrInvalidCredentials
func (s *UserService) Authenticate(email, password string) (*db.User, error) {
	var user db.User
	if err := s.db.Where("email = ?", strings.TrimSpace(strings.ToLower(email))).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

// Get 根据 ID 获取用户
func (s *UserService) Get(id uint) (*db.User, error) {
	var user db.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// ListAll 返回全部用户，供通知派发的全量模式使用
func (s *UserService) ListAll() ([]db.User, error) {
	var users []db.User
	if err := s.db.Order("id ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// UpdateAvatar 更新头像地址
func (s *UserService) UpdateAvatar(id uint, avatarURL string) error {
	result := s.db.Model(&db.User{}).Where("id = ?", id).Update("avatar_url", strings.TrimSpace(avatarURL))
	if result.Error != nil {
		return fmt.Errorf("update avatar: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
