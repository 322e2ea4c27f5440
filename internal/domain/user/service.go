package user

import (
	"context"
	"errors"
	"regexp"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/xiebiao/bookhub/pkg/errors"
)

// DefaultBcryptCost bcrypt成本因子（cost每+1，耗时翻倍）
const DefaultBcryptCost = 12

// Service 用户领域服务
// 设计说明：
// 1. Service包含不属于单个实体的业务逻辑（如密码加密、验证）
// 2. Service依赖Repository接口，不依赖具体实现（依赖倒置）
// 3. Service不处理HTTP请求，只处理业务逻辑
type Service interface {
	// Register 用户注册
	Register(ctx context.Context, email, password, nickname string) (*User, error)

	// Login 用户登录，已注销用户视为不存在
	Login(ctx context.Context, email, password string) (*User, error)

	// ChangePassword 校验原密码后设置新密码（调用方负责持久化）
	ChangePassword(u *User, oldPassword, newPassword string) error

	// ValidateNickname 昵称校验
	ValidateNickname(nickname string) error
}

type service struct {
	repo Repository
	cost int
}

// NewService 创建用户服务
func NewService(repo Repository) Service {
	return NewServiceWithCost(repo, DefaultBcryptCost)
}

// NewServiceWithCost 指定bcrypt成本（测试中使用bcrypt.MinCost）
func NewServiceWithCost(repo Repository, cost int) Service {
	return &service{repo: repo, cost: cost}
}

// Register 用户注册
// 业务规则：
// 1. 邮箱格式校验
// 2. 密码强度校验（8-20位，包含字母和数字）
// 3. 密码bcrypt加密
// 4. 邮箱唯一性由数据库UNIQUE索引保证
func (s *service) Register(ctx context.Context, email, password, nickname string) (*User, error) {
	// 1. 邮箱格式校验
	if !isValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	// 2. 密码强度校验
	if err := validatePasswordStrength(password); err != nil {
		return nil, err
	}

	// 3. 昵称校验
	if err := s.ValidateNickname(nickname); err != nil {
		return nil, err
	}

	// 4. 密码加密（bcrypt自动加盐，相同密码每次结果不同）
	hashed, err := s.hash(password)
	if err != nil {
		return nil, err
	}

	// 5. 持久化（邮箱重复由Repository转换为ErrEmailDuplicate）
	user := NewUser(email, hashed, nickname)
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login 用户登录
// 邮箱不存在与密码错误返回同一个错误，避免暴露邮箱是否已注册
func (s *service) Login(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := comparePassword(user.Password, password); err != nil {
		return nil, err
	}

	return user, nil
}

// ChangePassword 修改密码
func (s *service) ChangePassword(u *User, oldPassword, newPassword string) error {
	if err := comparePassword(u.Password, oldPassword); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return ErrWrongOldPassword
		}
		return err
	}
	if err := validatePasswordStrength(newPassword); err != nil {
		return err
	}
	hashed, err := s.hash(newPassword)
	if err != nil {
		return err
	}
	u.Password = hashed
	return nil
}

// ValidateNickname 昵称2-50个字符（按rune计数，中文昵称不会被误判）
func (s *service) ValidateNickname(nickname string) error {
	n := utf8.RuneCountInString(nickname)
	if n < 2 || n > 50 {
		return ErrInvalidNickname
	}
	return nil
}

func (s *service) hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", apperrors.Wrap(err, "密码加密失败")
	}
	return string(hashed), nil
}

func comparePassword(hashedPassword, plainPassword string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidCredentials
		}
		return apperrors.Wrap(err, "密码验证失败")
	}
	return nil
}

// =========================================
// 辅助函数：业务规则校验
// =========================================

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	hasLetter    = regexp.MustCompile(`[a-zA-Z]`)
	hasDigit     = regexp.MustCompile(`[0-9]`)
)

// isValidEmail 邮箱格式校验
func isValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// validatePasswordStrength 8-20位，必须包含字母和数字
func validatePasswordStrength(password string) error {
	if len(password) < 8 || len(password) > 20 {
		return ErrWeakPassword
	}
	if !hasLetter.MatchString(password) || !hasDigit.MatchString(password) {
		return ErrWeakPassword
	}
	return nil
}
