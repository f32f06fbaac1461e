package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/tenant-admin/internal"
	"github.com/frahmantamala/tenant-admin/internal/audit"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	attemptReasonInvalidEmail    = "INVALID_EMAIL"
	attemptReasonInvalidPassword = "INVALID_PASSWORD"
	attemptReasonAccountLocked   = "ACCOUNT_LOCKED"
	attemptReasonLoginSuccess    = "LOGIN_SUCCESS"
)

type LockoutPolicy struct {
	MaxFailedLogins int
	LockWindow      time.Duration
}

// Service authenticates principals and issues session tokens. Every attempt
// is recorded before the response returns; a failed attempt-record is logged
// and swallowed, but a failed lockout-counter write aborts the login because
// silently losing counts would defeat the lockout guarantee.
type Service struct {
	repo       RepositoryAPI
	tokens     TokenGeneratorAPI
	attempts   audit.AttemptRecorder
	lockout    LockoutPolicy
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, tokens TokenGeneratorAPI, attempts audit.AttemptRecorder, lockout LockoutPolicy, bcryptCost int, logger *slog.Logger) *Service {
	if lockout.MaxFailedLogins <= 0 {
		lockout.MaxFailedLogins = 5
	}
	if lockout.LockWindow <= 0 {
		lockout.LockWindow = 15 * time.Minute
	}
	return &Service{
		repo:       repo,
		tokens:     tokens,
		attempts:   attempts,
		lockout:    lockout,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *Service) AuthenticateTenantUser(ctx context.Context, dto LoginDTO, origin Origin) (*TenantLoginResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	user, err := s.repo.FindTenantUserByEmail(ctx, dto.Email)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up user", err)
	}

	recordAttempt := func(userRec *TenantUserRecord, success bool, reason string) {
		attempt := audit.Attempt{
			ActorType: audit.ActorTenantUser,
			Email:     dto.Email,
			Success:   success,
			Reason:    reason,
			Origin:    audit.Origin{IPAddress: origin.IPAddress, UserAgent: origin.UserAgent},
		}
		if userRec != nil {
			attempt.UserID = &userRec.ID
			attempt.TenantID = &userRec.TenantID
		}
		if err := s.attempts.RecordLoginAttempt(ctx, attempt); err != nil {
			s.logger.Error("failed to record login attempt", "email", dto.Email, "error", err)
		}
	}

	// Unknown email and wrong password produce the same response so callers
	// cannot enumerate accounts.
	if user == nil || !user.IsActive {
		recordAttempt(nil, false, attemptReasonInvalidEmail)
		return nil, internal.ErrInvalidCredentials
	}

	// Lock check precedes password verification.
	if user.LockedUntil != nil && user.LockedUntil.After(time.Now()) {
		recordAttempt(user, false, attemptReasonAccountLocked)
		return nil, internal.ErrAccountLocked
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(dto.Password)); err != nil {
		if _, regErr := s.repo.RegisterFailedLogin(ctx, PrincipalTenantUser, user.ID, s.lockout.MaxFailedLogins, s.lockout.LockWindow); regErr != nil {
			return nil, internal.NewInternalError("failed to register login failure", regErr)
		}
		recordAttempt(user, false, attemptReasonInvalidPassword)
		return nil, internal.ErrInvalidCredentials
	}

	if err := s.repo.ResetLoginFailures(ctx, PrincipalTenantUser, user.ID); err != nil {
		return nil, internal.NewInternalError("failed to reset login failures", err)
	}

	recordAttempt(user, true, attemptReasonLoginSuccess)

	token, err := s.tokens.GenerateTenantToken(user)
	if err != nil {
		return nil, internal.NewInternalError("failed to issue token", err)
	}

	return &TenantLoginResult{
		Token: token,
		User: LoginUserView{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.Name,
			Role:  user.RoleName,
		},
		Tenant: TenantInfo{
			ID:       user.TenantID,
			Name:     user.TenantName,
			Category: user.TenantCategory,
		},
	}, nil
}

func (s *Service) AuthenticateSuperAdmin(ctx context.Context, dto LoginDTO, origin Origin) (*PlatformLoginResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	admin, err := s.repo.FindSuperAdminByEmail(ctx, dto.Email)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up super admin", err)
	}

	recordAttempt := func(adminRec *SuperAdminRecord, success bool, reason string) {
		attempt := audit.Attempt{
			ActorType: audit.ActorSuperAdmin,
			Email:     dto.Email,
			Success:   success,
			Reason:    reason,
			Origin:    audit.Origin{IPAddress: origin.IPAddress, UserAgent: origin.UserAgent},
		}
		if adminRec != nil {
			attempt.SuperAdminID = &adminRec.ID
		}
		if err := s.attempts.RecordLoginAttempt(ctx, attempt); err != nil {
			s.logger.Error("failed to record login attempt", "email", dto.Email, "error", err)
		}
	}

	if admin == nil || !admin.IsActive {
		recordAttempt(nil, false, attemptReasonInvalidEmail)
		return nil, internal.ErrInvalidCredentials
	}

	if admin.LockedUntil != nil && admin.LockedUntil.After(time.Now()) {
		recordAttempt(admin, false, attemptReasonAccountLocked)
		return nil, internal.ErrAccountLocked
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(dto.Password)); err != nil {
		if _, regErr := s.repo.RegisterFailedLogin(ctx, PrincipalSuperAdmin, admin.ID, s.lockout.MaxFailedLogins, s.lockout.LockWindow); regErr != nil {
			return nil, internal.NewInternalError("failed to register login failure", regErr)
		}
		recordAttempt(admin, false, attemptReasonInvalidPassword)
		return nil, internal.ErrInvalidCredentials
	}

	if err := s.repo.ResetLoginFailures(ctx, PrincipalSuperAdmin, admin.ID); err != nil {
		return nil, internal.NewInternalError("failed to reset login failures", err)
	}

	recordAttempt(admin, true, attemptReasonLoginSuccess)

	token, err := s.tokens.GeneratePlatformToken(admin.ID)
	if err != nil {
		return nil, internal.NewInternalError("failed to issue token", err)
	}

	return &PlatformLoginResult{
		Token: token,
		User: LoginUserView{
			ID:    admin.ID,
			Email: admin.Email,
			Name:  admin.Name,
			Role:  PrincipalSuperAdmin,
		},
	}, nil
}

func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	return s.tokens.ValidateToken(tokenString)
}

// ResolveTenantPrincipal rebuilds the authorization context from the entity
// store. The token is never trusted for permissions: the Role→Permission join
// is re-read so revocation is visible on the very next request.
func (s *Service) ResolveTenantPrincipal(ctx context.Context, claims *Claims) (*Principal, error) {
	user, err := s.repo.FindTenantUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if user == nil || !user.IsActive {
		return nil, internal.ErrAccountInactive
	}
	if !user.TenantActive {
		return nil, internal.ErrTenantDisabled
	}

	keys, err := s.repo.GetRolePermissionKeys(ctx, user.RoleID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load role permissions", err)
	}

	return &Principal{
		Type:        PrincipalTenantUser,
		UserID:      user.ID,
		TenantID:    user.TenantID,
		RoleID:      user.RoleID,
		RoleName:    user.RoleName,
		Email:       user.Email,
		Permissions: NewPermissionSet(keys),
		Tenant: TenantInfo{
			ID:       user.TenantID,
			Name:     user.TenantName,
			Category: user.TenantCategory,
		},
	}, nil
}

// ResolveSuperAdminPrincipal trusts the embedded claims without a re-query;
// super-admin identity changes are rare and lower-risk.
func (s *Service) ResolveSuperAdminPrincipal(claims *Claims) *Principal {
	return &Principal{
		Type:         PrincipalSuperAdmin,
		SuperAdminID: claims.SuperAdminID,
		Permissions:  PermissionSet{},
	}
}

func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// JWTTokenGenerator signs HS256 tokens with per-principal-type lifetimes.
type JWTTokenGenerator struct {
	Secret      []byte
	TenantTTL   time.Duration
	PlatformTTL time.Duration
}

func NewJWTTokenGenerator(secret string, tenantTTL, platformTTL time.Duration) *JWTTokenGenerator {
	return &JWTTokenGenerator{
		Secret:      []byte(secret),
		TenantTTL:   tenantTTL,
		PlatformTTL: platformTTL,
	}
}

func (j *JWTTokenGenerator) GenerateTenantToken(user *TenantUserRecord) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   user.ID,
		TenantID: user.TenantID,
		RoleID:   user.RoleID,
		Type:     PrincipalTenantUser,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(j.TenantTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   fmt.Sprintf("%d", user.ID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

func (j *JWTTokenGenerator) GeneratePlatformToken(adminID int64) (string, error) {
	now := time.Now()
	claims := &Claims{
		SuperAdminID: adminID,
		Role:         PrincipalSuperAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(j.PlatformTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   fmt.Sprintf("%d", adminID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.Secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrUnauthenticated
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, internal.ErrUnauthenticated
	}
	return claims, nil
}
