package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Andywugh/habit-tracker/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const userIDContextKey = "user_id"

// authClaims 是签入 JWT 的负载
type authClaims struct {
	UserID uint   `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// generateToken 为用户签发 7 天有效期的 Bearer Token
func (a *API) generateToken(userID uint, email string) (string, error) {
	claims := authClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(7 * 24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.jwtSecret))
}

// AuthRequired 校验 Authorization: Bearer <token>，通过后把用户 ID 写入上下文。
// 每个请求都重新验签，签名或过期问题一律 401。
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			respondError(c, http.StatusUnauthorized, "缺少认证信息")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			respondError(c, http.StatusUnauthorized, "认证格式不正确")
			c.Abort()
			return
		}

		token, err := jwt.ParseWithClaims(tokenString, &authClaims{}, func(t *jwt.Token) (interface{}, error) {
			return []byte(a.jwtSecret), nil
		})
		if err != nil || !token.Valid {
			respondError(c, http.StatusUnauthorized, "无效或已过期的令牌")
			c.Abort()
			return
		}

		claims, ok := token.Claims.(*authClaims)
		if !ok || claims.UserID == 0 {
			respondError(c, http.StatusUnauthorized, "无效的令牌内容")
			c.Abort()
			return
		}

		c.Set(userIDContextKey, claims.UserID)
		c.Next()
	}
}

// currentUserID 从上下文取当前用户 ID，未认证时返回 0
func currentUserID(c *gin.Context) uint {
	value, exists := c.Get(userIDContextKey)
	if !exists {
		return 0
	}
	id, ok := value.(uint)
	if !ok {
		return 0
	}
	return id
}

type authPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Register 处理注册请求：创建账号并直接签发令牌
func (a *API) Register(c *gin.Context) {
	var payload authPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	user, err := a.users.Register(service.RegisterInput{
		Email:    payload.Email,
		Password: payload.Password,
		Name:     payload.Name,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			respondError(c, http.StatusConflict, "该邮箱已被注册")
		case errors.Is(err, service.ErrWeakPassword):
			respondError(c, http.StatusBadRequest, "密码长度至少 6 位")
		default:
			respondError(c, http.StatusBadRequest, "注册失败")
		}
		return
	}

	token, err := a.generateToken(user.ID, user.Email)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "签发令牌失败")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"token": token,
		"user":  userToPayload(user),
	})
}

// Login 处理登录请求
func (a *API) Login(c *gin.Context) {
	var payload authPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	user, err := a.users.Authenticate(payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, "邮箱或密码错误")
			return
		}
		respondError(c, http.StatusInternalServerError, "登录失败")
		return
	}

	token, err := a.generateToken(user.ID, user.Email)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "签发令牌失败")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"token": token,
		"user":  userToPayload(user),
	})
}
