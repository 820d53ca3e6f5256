package util

import (
	"errors"
	"time"

	"scms_backend/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const actorContextKey = "actor"

// Claims 外部认证服务签发的令牌，Subject 为用户 ID
type Claims struct {
	Name       string              `json:"name"`
	Role       model.UserRole      `json:"role"`
	University string              `json:"university,omitempty"`
	Department model.DepartmentKey `json:"department,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) Actor() model.Actor {
	return model.Actor{
		ID:         c.Subject,
		Name:       c.Name,
		Role:       c.Role,
		University: c.University,
		Department: c.Department,
	}
}

// GenerateJWT 测试和本地联调使用，线上令牌由认证服务签发
func GenerateJWT(actor model.Actor, secret string, expiration time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Name:       actor.Name,
		Role:       actor.Role,
		University: actor.University,
		Department: actor.Department,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseJWT(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" || !claims.Role.Valid() {
		return nil, errors.New("token is missing subject or role")
	}
	return claims, nil
}

func SetActor(c *gin.Context, actor model.Actor) {
	c.Set(actorContextKey, actor)
}

func GetActor(c *gin.Context) (model.Actor, bool) {
	v, exists := c.Get(actorContextKey)
	if !exists {
		return model.Actor{}, false
	}
	actor, ok := v.(model.Actor)
	return actor, ok
}
