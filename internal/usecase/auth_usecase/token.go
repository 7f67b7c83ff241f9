package auth

import (
	"errors"
	"time"

	"topupstore/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
)

const DefaultAccessTTL = 24 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

// HS256 で sub / role / tv を載せたアクセストークンを発行する。
// tv は users.token_version。ロール変更で進むので古いトークンは弾かれる。
type JWTIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func NewJWTIssuer(secret string, accessTTL time.Duration) *JWTIssuer {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	return &JWTIssuer{secret: []byte(secret), accessTTL: accessTTL}
}

func (i *JWTIssuer) Issue(userID string, role model.Role, tokenVersion int, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":  userID,
		"role": string(role),
		"tv":   tokenVersion,
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// 検証済みトークンの中身
type AccessClaims struct {
	UserID       string
	Role         model.Role
	TokenVersion int
}

// 署名・期限を検証して sub / role / tv を取り出す
func ParseAccessToken(secret string, raw string) (AccessClaims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || token == nil || !token.Valid {
		return AccessClaims{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return AccessClaims{}, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	if sub == "" {
		return AccessClaims{}, ErrInvalidToken
	}
	switch model.Role(role) {
	case model.RoleAdmin, model.RoleCustomer:
	default:
		return AccessClaims{}, ErrInvalidToken
	}

	//数値はfloat64で入る
	tv, ok := claims["tv"].(float64)
	if !ok || tv < 0 {
		return AccessClaims{}, ErrInvalidToken
	}

	return AccessClaims{UserID: sub, Role: model.Role(role), TokenVersion: int(tv)}, nil
}
