package models

import "github.com/golang-jwt/jwt/v5"

// UserRole represents the available roles for route guards.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleTeacher UserRole = "TEACHER"
	RoleStudent UserRole = "STUDENT"
)

// Roles lists every assignable role in display order.
func Roles() []string {
	return []string{string(RoleAdmin), string(RoleTeacher), string(RoleStudent)}
}

// Identity is the caller resolved by a guard. It lives for one request and is
// never persisted.
type Identity struct {
	SubjectID string         `json:"subjectId"`
	Role      UserRole       `json:"role"`
	SchoolID  string         `json:"schoolId"`
	Email     string         `json:"email"`
	TokenID   string         `json:"-"`
	Claims    map[string]any `json:"-"`
}

// Clone returns a deep copy so handlers cannot mutate the guard's result.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	clone := *i
	if i.Claims != nil {
		clone.Claims = make(map[string]any, len(i.Claims))
		for k, v := range i.Claims {
			clone.Claims[k] = v
		}
	}
	return &clone
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	SchoolID string   `json:"school_id"`
	Email    string   `json:"email"`
	jwt.RegisteredClaims
}

// Identity converts verified claims into a request identity.
func (c *JWTClaims) Identity() *Identity {
	claims := map[string]any{
		"user_id":   c.UserID,
		"role":      string(c.Role),
		"school_id": c.SchoolID,
		"email":     c.Email,
		"iss":       c.Issuer,
		"sub":       c.Subject,
	}
	if c.ExpiresAt != nil {
		claims["exp"] = c.ExpiresAt.Unix()
	}
	return &Identity{
		SubjectID: c.UserID,
		Role:      c.Role,
		SchoolID:  c.SchoolID,
		Email:     c.Email,
		TokenID:   c.ID,
		Claims:    claims,
	}
}
