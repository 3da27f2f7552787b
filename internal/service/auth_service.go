package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hongyan02/ehs-new/internal/config"
	"github.com/hongyan02/ehs-new/internal/middleware"
	"github.com/hongyan02/ehs-new/internal/repository"
)

// AuthService 登录认证服务
// 账号口令交给外部IMS校验，权限从本地 user_permission 表加载后签入JWT
type AuthService struct {
	userRepo   *repository.UserRepository
	jwtCfg     config.JWTConfig
	imsCfg     config.IMSConfig
	httpClient *http.Client
	now        func() time.Time
}

func NewAuthService(userRepo *repository.UserRepository, jwtCfg config.JWTConfig, imsCfg config.IMSConfig) *AuthService {
	timeout := imsCfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &AuthService{
		userRepo: userRepo,
		jwtCfg:   jwtCfg,
		imsCfg:   imsCfg,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		now: time.Now,
	}
}

// SetClock 注入时钟，测试用
func (s *AuthService) SetClock(now func() time.Time) {
	s.now = now
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginUser 登录成功后的用户信息
type LoginUser struct {
	Name        string   `json:"name"`
	EmployeeID  string   `json:"employeeId"`
	Permissions []string `json:"permissions"`
}

// LoginResult 登录结果，token 同时种入 Permission-Token Cookie
type LoginResult struct {
	Token string    `json:"token"`
	User  LoginUser `json:"user"`
}

// imsLoginResponse IMS登录接口返回
type imsLoginResponse struct {
	Code       int    `json:"code"`
	Message    string `json:"message"`
	Name       string `json:"name"`
	EmployeeID string `json:"employeeId"`
	Data       *struct {
		Name       string `json:"name"`
		EmployeeID string `json:"employeeId"`
	} `json:"data"`
}

// callIMSLogin 调用外部IMS校验账号口令
func (s *AuthService) callIMSLogin(ctx context.Context, username, password string) (name, employeeID string, err error) {
	if s.imsCfg.BaseURL == "" {
		return "", "", fmt.Errorf("IMS API configuration missing")
	}

	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return "", "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.imsCfg.BaseURL+"/login", bytes.NewReader(body))
	if err != nil {
		return "", "", fmt.Errorf("创建IMS登录请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("请求IMS登录接口失败: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("读取IMS响应失败: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", "", UnauthorizedError("用户名或密码错误")
	}

	var result imsLoginResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", "", fmt.Errorf("解析IMS响应失败: %w", err)
	}

	name, employeeID = result.Name, result.EmployeeID
	if result.Data != nil {
		if result.Data.Name != "" {
			name = result.Data.Name
		}
		if result.Data.EmployeeID != "" {
			employeeID = result.Data.EmployeeID
		}
	}
	if employeeID == "" {
		return "", "", UnauthorizedError("用户名或密码错误")
	}
	return name, employeeID, nil
}

// getUserPermissions 加载用户权限，无记录或JSON损坏时按空权限处理
func (s *AuthService) getUserPermissions(ctx context.Context, employeeID string) []string {
	record, err := s.userRepo.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		return []string{}
	}

	var permissions []string
	if err := json.Unmarshal([]byte(record.Permissions), &permissions); err != nil {
		return []string{}
	}
	if permissions == nil {
		permissions = []string{}
	}
	return permissions
}

// Login IMS校验通过后签发JWT
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	name, employeeID, err := s.callIMSLogin(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	permissions := s.getUserPermissions(ctx, employeeID)

	token, err := s.issueToken(name, employeeID, permissions)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token: token,
		User: LoginUser{
			Name:        name,
			EmployeeID:  employeeID,
			Permissions: permissions,
		},
	}, nil
}

func (s *AuthService) issueToken(name, employeeID string, permissions []string) (string, error) {
	now := s.now()
	expire := s.jwtCfg.TokenExpire
	if expire <= 0 {
		expire = 12 * time.Hour
	}

	claims := middleware.JWTClaims{
		Name:        name,
		Permissions: permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   employeeID,
			Issuer:    s.jwtCfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expire)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtCfg.Secret))
	if err != nil {
		return "", fmt.Errorf("签发令牌失败: %w", err)
	}
	return signed, nil
}

// TokenExpire 令牌有效期，Cookie MaxAge 用
func (s *AuthService) TokenExpire() time.Duration {
	expire := s.jwtCfg.TokenExpire
	if expire <= 0 {
		expire = 12 * time.Hour
	}
	return expire
}
