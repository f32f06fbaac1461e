package auth

import (
	"context"
	"sort"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Principal types embedded in token claims and checked against the route
// group's expected type.
const (
	PrincipalTenantUser = "TENANT_USER"
	PrincipalSuperAdmin = "SUPER_ADMIN"
)

// Claims is the signed token payload. Tenant-user tokens carry identity only;
// permissions are always re-read at request time so a role change revokes
// access immediately. Super-admin tokens are trusted as-is.
type Claims struct {
	UserID       int64  `json:"user_id,omitempty"`
	TenantID     int64  `json:"tenant_id,omitempty"`
	RoleID       int64  `json:"role_id,omitempty"`
	Type         string `json:"type,omitempty"`
	SuperAdminID int64  `json:"super_admin_id,omitempty"`
	Role         string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// PermissionSet is the canonical normalized permission shape. Nothing outside
// the resolver should ever see permissions as anything else.
type PermissionSet map[string]struct{}

func NewPermissionSet(keys []string) PermissionSet {
	set := make(PermissionSet, len(keys))
	for _, key := range keys {
		if key == "" {
			continue
		}
		set[key] = struct{}{}
	}
	return set
}

func (s PermissionSet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

func (s PermissionSet) Keys() []string {
	keys := make([]string, 0, len(s))
	for key := range s {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

type TenantInfo struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// Principal is the immutable per-request authorization context produced by
// the resolver middleware.
type Principal struct {
	Type         string
	UserID       int64
	SuperAdminID int64
	TenantID     int64
	RoleID       int64
	RoleName     string
	Email        string
	Permissions  PermissionSet
	Tenant       TenantInfo
}

func (p *Principal) IsSuperAdmin() bool {
	return p != nil && p.Type == PrincipalSuperAdmin
}

type ctxKey string

const contextPrincipalKey ctxKey = "principal"

func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(contextPrincipalKey).(*Principal)
	return p, ok
}

func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, contextPrincipalKey, p)
}

// TenantUserRecord is the account row plus the tenant and role needed to
// authenticate and to build a principal.
type TenantUserRecord struct {
	ID               int64
	TenantID         int64
	RoleID           int64
	Email            string
	Name             string
	PasswordHash     string
	IsActive         bool
	FailedLoginCount int
	LockedUntil      *time.Time
	RoleName         string
	TenantName       string
	TenantCategory   string
	TenantActive     bool
}

type SuperAdminRecord struct {
	ID               int64
	Email            string
	Name             string
	PasswordHash     string
	IsActive         bool
	FailedLoginCount int
	LockedUntil      *time.Time
}

// RepositoryAPI is the slice of the entity store the auth core depends on.
type RepositoryAPI interface {
	FindTenantUserByEmail(ctx context.Context, email string) (*TenantUserRecord, error)
	FindTenantUserByID(ctx context.Context, userID int64) (*TenantUserRecord, error)
	FindSuperAdminByEmail(ctx context.Context, email string) (*SuperAdminRecord, error)
	GetRolePermissionKeys(ctx context.Context, roleID int64) ([]string, error)

	// RegisterFailedLogin increments the counter and sets the lock window in
	// one transaction once the threshold is reached. Returns the new count.
	RegisterFailedLogin(ctx context.Context, principalType string, accountID int64, threshold int, lockFor time.Duration) (int, error)
	ResetLoginFailures(ctx context.Context, principalType string, accountID int64) error
}

// TokenGeneratorAPI issues and verifies signed session tokens.
type TokenGeneratorAPI interface {
	GenerateTenantToken(user *TenantUserRecord) (string, error)
	GeneratePlatformToken(adminID int64) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// ServiceAPI is what transport depends on.
type ServiceAPI interface {
	AuthenticateTenantUser(ctx context.Context, dto LoginDTO, origin Origin) (*TenantLoginResult, error)
	AuthenticateSuperAdmin(ctx context.Context, dto LoginDTO, origin Origin) (*PlatformLoginResult, error)
	ValidateToken(tokenString string) (*Claims, error)
	ResolveTenantPrincipal(ctx context.Context, claims *Claims) (*Principal, error)
	ResolveSuperAdminPrincipal(claims *Claims) *Principal
	HashPassword(password string) (string, error)
}

// Origin is the request metadata recorded with each login attempt.
type Origin struct {
	IPAddress string
	UserAgent string
}

type TenantLoginResult struct {
	Token  string        `json:"token"`
	User   LoginUserView `json:"user"`
	Tenant TenantInfo    `json:"tenant"`
}

type PlatformLoginResult struct {
	Token string        `json:"token"`
	User  LoginUserView `json:"user"`
}

type LoginUserView struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
}
