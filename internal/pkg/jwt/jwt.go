package jwt

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/leave-ledger/internal/domain/auth"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	TypeAccess = "access"
	TypeSSE    = "sse"

	sseTokenLifetime = 5 * time.Minute
)

type Service interface {
	GenerateAccessToken(employeeID string, role auth.Role) (token string, expiresAt int64, err error)
	GenerateSSEToken(employeeID string) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (employeeID string, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpiration time.Duration
	tokenAuth             *jwtauth.JWTAuth
	now                   func() time.Time
}

func NewJWTService(secretKey string, accessTokenExpiration time.Duration) *JWTService {
	return &JWTService{
		accessTokenExpiration: accessTokenExpiration,
		tokenAuth:             jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		now:                   time.Now,
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// GenerateAccessToken issues the bearer token the API authenticates with.
func (j *JWTService) GenerateAccessToken(employeeID string, role auth.Role) (token string, expiresAt int64, err error) {
	if employeeID == "" {
		return "", 0, auth.ErrMissingIdentity
	}
	if _, ok := auth.ParseRole(string(role)); !ok {
		return "", 0, fmt.Errorf("unknown role %q", role)
	}
	expiresAt = j.now().Add(j.accessTokenExpiration).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"employee_id": employeeID,
		"role":        string(role),
		"type":        TypeAccess,
		"exp":         expiresAt,
	})
	return tokenString, expiresAt, err
}

// GenerateSSEToken generates a short-lived token for SSE connections
func (j *JWTService) GenerateSSEToken(employeeID string) (token string, expiresIn int, err error) {
	expiresAt := j.now().Add(sseTokenLifetime).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"employee_id": employeeID,
		"type":        TypeSSE,
		"exp":         expiresAt,
	})
	if err != nil {
		return "", 0, err
	}

	return tokenString, int(sseTokenLifetime.Seconds()), nil
}

// ValidateSSEToken validates an SSE token and returns the employee ID
func (j *JWTService) ValidateSSEToken(tokenString string) (employeeID string, err error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return "", auth.ErrInvalidToken
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != TypeSSE {
		return "", auth.ErrInvalidToken
	}

	idVal, ok := token.Get("employee_id")
	if !ok {
		return "", auth.ErrMissingIdentity
	}
	employeeID, ok = idVal.(string)
	if !ok || employeeID == "" {
		return "", auth.ErrMissingIdentity
	}

	return employeeID, nil
}

// ActorFromClaims reads the caller of an access token.
func ActorFromClaims(claims map[string]interface{}) (auth.Actor, error) {
	tokenType, _ := claims["type"].(string)
	if tokenType != TypeAccess {
		return auth.Actor{}, auth.ErrInvalidToken
	}

	employeeID, _ := claims["employee_id"].(string)
	if employeeID == "" {
		return auth.Actor{}, auth.ErrMissingIdentity
	}

	roleStr, _ := claims["role"].(string)
	role, ok := auth.ParseRole(roleStr)
	if !ok {
		return auth.Actor{}, auth.ErrInvalidToken
	}

	return auth.Actor{EmployeeID: employeeID, Role: role}, nil
}
