package jwt

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Service verifies access tokens issued by the identity service. Issuing is
// kept for service accounts and tests.
type Service interface {
	GenerateAccessToken(userID string, employeeID *int64, role user.Role, ttl time.Duration) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	tokenAuth *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string) Service {
	return &JWTService{
		tokenAuth: jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) GenerateAccessToken(userID string, employeeID *int64, role user.Role, ttl time.Duration) (token string, expiresAt int64, err error) {
	expiresAt = time.Now().Add(ttl).Unix()

	claims := map[string]interface{}{
		"user_id": userID,
		"role":    string(role),
		"type":    "access",
		"exp":     expiresAt,
	}
	if employeeID != nil {
		claims["employee_id"] = *employeeID
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// IdentityFromClaims reads the caller identity out of verified access token claims.
func IdentityFromClaims(claims map[string]interface{}) (user.Identity, error) {
	tokenType, _ := claims["type"].(string)
	if tokenType != "access" {
		return user.Identity{}, user.ErrInvalidToken
	}

	userID, _ := claims["user_id"].(string)
	role, _ := claims["role"].(string)
	if userID == "" || role == "" {
		return user.Identity{}, user.ErrInvalidToken
	}

	identity := user.Identity{UserID: userID, Role: user.Role(role)}

	if raw, ok := claims["employee_id"]; ok && raw != nil {
		id, err := toInt64(raw)
		if err != nil {
			return user.Identity{}, fmt.Errorf("%w: employee_id: %v", user.ErrInvalidToken, err)
		}
		identity.EmployeeID = &id
	}
	return identity, nil
}

// IdentityFromContext reads the identity placed on ctx by jwtauth.Verifier.
func IdentityFromContext(ctx context.Context) (user.Identity, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return user.Identity{}, fmt.Errorf("%w: %v", user.ErrInvalidToken, err)
	}
	return IdentityFromClaims(claims)
}

func toInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case float64:
		return int64(n), nil
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case string:
		return strconv.ParseInt(n, 10, 64)
	}
	return 0, fmt.Errorf("unexpected type %T", v)
}
