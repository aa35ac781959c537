package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Eddy007Saive/serverlog/internal/pkg/errors"
	"github.com/Eddy007Saive/serverlog/internal/platform/ctxutil"
	"github.com/Eddy007Saive/serverlog/internal/platform/logger"
)

// AuthService verifies bearer tokens issued by the account service and
// resolves them to a request principal.
type AuthService interface {
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	IssueToken(rd *ctxutil.RequestData, ttl time.Duration) (string, error)
}

// JWTClaims carries the principal. id is numeric in tokens minted by the
// account service and a string in ours; both are accepted.
type JWTClaims struct {
	UserID      any      `json:"id"`
	Username    string   `json:"username,omitempty"`
	Role        string   `json:"role,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

type authService struct {
	log          *logger.Logger
	jwtSecretKey string
}

func NewAuthService(log *logger.Logger, jwtSecretKey string) AuthService {
	return &authService{
		log:          log.With("service", "AuthService"),
		jwtSecretKey: jwtSecretKey,
	}
}

func (as *authService) IssueToken(rd *ctxutil.RequestData, ttl time.Duration) (string, error) {
	if rd == nil || strings.TrimSpace(rd.UserID) == "" {
		return "", fmt.Errorf("%w: principal id required", errors.ErrInvalidArgument)
	}
	now := time.Now()
	claims := JWTClaims{
		UserID:      rd.UserID,
		Username:    rd.Username,
		Role:        rd.Role,
		Permissions: rd.Permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  rd.UserID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, fmt.Errorf("%w: missing token", errors.ErrUnauthorized)
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return ctx, fmt.Errorf("%w: %w", errors.ErrUnauthorized, err)
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return ctx, fmt.Errorf("%w: invalid or expired token", errors.ErrUnauthorized)
	}
	userID := claimUserID(claims.UserID)
	if userID == "" {
		userID = claims.Subject
	}
	if userID == "" {
		return ctx, fmt.Errorf("%w: token has no user id", errors.ErrUnauthorized)
	}
	rd := &ctxutil.RequestData{
		UserID:      userID,
		Username:    claims.Username,
		Role:        claims.Role,
		Permissions: claims.Permissions,
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}

func claimUserID(v any) string {
	switch id := v.(type) {
	case string:
		return strings.TrimSpace(id)
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(id))
	}
}
