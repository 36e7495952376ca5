package service

import (
	"errors"
	"time"

	"github.com/routepilot/internal/config"
	"github.com/routepilot/internal/models"
	"github.com/routepilot/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// FieldAuthService 外勤端认证服务
type FieldAuthService struct {
	cfg          *config.Config
	salesmanRepo repository.SalesmanRepository
}

// NewFieldAuthService 创建认证服务实例
func NewFieldAuthService(cfg *config.Config, salesmanRepo repository.SalesmanRepository) *FieldAuthService {
	return &FieldAuthService{
		cfg:          cfg,
		salesmanRepo: salesmanRepo,
	}
}

// HashPassword 使用 bcrypt 加密密码
func (s *FieldAuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword 验证密码
func (s *FieldAuthService) VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// SalesmanClaims 外勤端 JWT 声明
type SalesmanClaims struct {
	SalesmanID uint   `json:"salesman_id"`
	Code       string `json:"code"`
	jwt.RegisteredClaims
}

// GenerateJWT 生成外勤端 JWT Token
func (s *FieldAuthService) GenerateJWT(salesman *models.Salesman) (string, time.Time, error) {
	expiresAt := time.Now().Add(time.Duration(s.cfg.JWT.ExpireHours) * time.Hour)

	claims := SalesmanClaims{
		SalesmanID: salesman.ID,
		Code:       salesman.Code,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// ParseJWT 解析外勤端 JWT Token
func (s *FieldAuthService) ParseJWT(tokenString string) (*SalesmanClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &SalesmanClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.SecretKey), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*SalesmanClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("无效的 token")
}

// Login 业务员登录，离职账号拒绝签发。
func (s *FieldAuthService) Login(code, password string) (*models.Salesman, string, time.Time, error) {
	salesman, err := s.salesmanRepo.GetByCode(code)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if salesman == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	if err := s.VerifyPassword(salesman.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	if !salesman.IsActive {
		return nil, "", time.Time{}, ErrSalesmanDisabled
	}

	token, expiresAt, err := s.GenerateJWT(salesman)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	return salesman, token, expiresAt, nil
}
