package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"innersignature/internal/domain"
	"innersignature/internal/repository"
)

// AuthService coordina login, cambio de compania y logout del lado servidor.
type AuthService struct {
	logger    *zap.Logger
	users     repository.UserRepository
	companies repository.CompanyRepository
	sessions  repository.SessionRepository
	tokens    *TokenService
	blacklist AccessTokenBlacklist
	limiter   LoginRateLimiter
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRateLimited        = errors.New("rate limited")
	ErrNotMember          = errors.New("user is not a member of the company")
	ErrUserNotFound       = errors.New("user not found")
)

// RequestMeta acompana las operaciones de sesion con datos del cliente para
// la auditoria de sesiones.
type RequestMeta struct {
	UserAgent string
	IPAddress string
}

func NewAuthService(
	logger *zap.Logger,
	users repository.UserRepository,
	companies repository.CompanyRepository,
	sessions repository.SessionRepository,
	tokens *TokenService,
	blacklist AccessTokenBlacklist,
	limiter LoginRateLimiter,
) *AuthService {
	if blacklist == nil {
		blacklist = NewMemoryAccessBlacklist()
	}
	if limiter == nil {
		limiter = NewLoginRateLimiter(10*time.Minute, 5)
	}
	return &AuthService{
		logger:    logger,
		users:     users,
		companies: companies,
		sessions:  sessions,
		tokens:    tokens,
		blacklist: blacklist,
		limiter:   limiter,
	}
}

// Blacklist expone la blacklist de access tokens en uso, para que el
// middleware consulte exactamente la misma instancia donde Logout escribe.
func (s *AuthService) Blacklist() AccessTokenBlacklist {
	return s.blacklist
}

// LoginResult agrupa el snapshot de identidad y el par de tokens emitidos.
type LoginResult struct {
	Identity domain.Identity `json:"user"`
	Tokens   TokenPair       `json:"tokens"`
}

// Login autentica por email y password, y emite credenciales para la
// compania principal del usuario.
func (s *AuthService) Login(ctx context.Context, emailAddr, password string, meta RequestMeta) (LoginResult, error) {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	password = strings.TrimSpace(password)
	if emailAddr == "" || password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}
	if !s.limiter.Allow(emailAddr) {
		return LoginResult{}, ErrRateLimited
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}
	if user.PasswordHash == "" {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	identity := domain.IdentityFor(user, user.HomeCompanyID)
	return s.issue(ctx, identity, meta)
}

// SwitchCompany emite un par nuevo con la identidad re-alcanzada a la
// compania destino. Verifica la membresia antes de emitir nada: las
// credenciales anteriores siguen vigentes hasta que las nuevas existen.
func (s *AuthService) SwitchCompany(ctx context.Context, claims Claims, companyID, oldRefreshToken string, meta RequestMeta) (LoginResult, error) {
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return LoginResult{}, ErrNotMember
	}

	ok, err := s.companies.IsMember(ctx, claims.UserID, companyID)
	if err != nil {
		return LoginResult{}, err
	}
	if !ok {
		return LoginResult{}, ErrNotMember
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return LoginResult{}, ErrUserNotFound
		}
		return LoginResult{}, err
	}

	identity := domain.IdentityFor(user, companyID)
	result, err := s.issue(ctx, identity, meta)
	if err != nil {
		return LoginResult{}, err
	}

	// Con el par nuevo emitido, el refresh anterior deja de valer.
	s.retireRefresh(ctx, oldRefreshToken)
	return result, nil
}

// Refresh rota el par de tokens a partir de un refresh token vigente.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string, meta RequestMeta) (LoginResult, error) {
	claims, err := s.tokens.ParseRefreshClaims(refreshToken)
	if err != nil {
		return LoginResult{}, err
	}
	pair, err := s.tokens.RefreshPair(refreshToken)
	if err != nil {
		return LoginResult{}, err
	}
	if err := s.recordSession(ctx, claims.Identity(), pair, meta); err != nil {
		s.logger.Warn("session audit record failed", zap.Error(err))
	}
	if s.sessions != nil {
		if err := s.sessions.RevokeByJTI(ctx, claims.ID); err != nil {
			s.logger.Warn("session revoke failed", zap.Error(err))
		}
	}
	return LoginResult{Identity: claims.Identity(), Tokens: pair}, nil
}

// Logout invalida las credenciales del lado servidor: el access va a la
// blacklist hasta su expiracion natural y el refresh queda revocado.
// Es idempotente; un refresh ya invalido no es un error.
func (s *AuthService) Logout(ctx context.Context, claims Claims, refreshToken string) error {
	expiresAt := time.Now().UTC()
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := s.blacklist.Blacklist(claims.ID, expiresAt); err != nil {
		return err
	}
	s.retireRefresh(ctx, refreshToken)
	return nil
}

// ListMemberships devuelve el directorio de companias del usuario.
func (s *AuthService) ListMemberships(ctx context.Context, userID string) ([]domain.CompanyMembership, error) {
	memberships, err := s.companies.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if memberships == nil {
		memberships = []domain.CompanyMembership{}
	}
	return memberships, nil
}

func (s *AuthService) issue(ctx context.Context, identity domain.Identity, meta RequestMeta) (LoginResult, error) {
	pair, err := s.tokens.GeneratePair(identity)
	if err != nil {
		return LoginResult{}, err
	}
	if err := s.recordSession(ctx, identity, pair, meta); err != nil {
		s.logger.Warn("session audit record failed", zap.Error(err))
	}
	return LoginResult{Identity: identity, Tokens: pair}, nil
}

func (s *AuthService) recordSession(ctx context.Context, identity domain.Identity, pair TokenPair, meta RequestMeta) error {
	if s.sessions == nil {
		return nil
	}
	claims, err := s.tokens.ParseRefreshClaims(pair.RefreshToken)
	if err != nil {
		return err
	}
	return s.sessions.Create(ctx, repository.LoginSession{
		ID:         uuid.NewString(),
		UserID:     identity.ID,
		CompanyID:  identity.CompanyID,
		RefreshJTI: claims.ID,
		UserAgent:  meta.UserAgent,
		IPAddress:  meta.IPAddress,
		ExpiresAt:  claims.ExpiresAt.Time,
		CreatedAt:  time.Now().UTC(),
	})
}

func (s *AuthService) retireRefresh(ctx context.Context, refreshToken string) {
	if strings.TrimSpace(refreshToken) == "" {
		return
	}
	claims, err := s.tokens.ParseRefreshClaims(refreshToken)
	if err != nil {
		return
	}
	if err := s.tokens.RevokeRefresh(refreshToken); err != nil {
		s.logger.Warn("refresh revoke failed", zap.Error(err))
	}
	if s.sessions != nil {
		if err := s.sessions.RevokeByJTI(ctx, claims.ID); err != nil {
			s.logger.Warn("session revoke failed", zap.Error(err))
		}
	}
}
