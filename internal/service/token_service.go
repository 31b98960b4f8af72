package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"innersignature/internal/domain"
)

// TokenService emite y valida pares de tokens JWT con el snapshot de
// identidad completo, incluida la compania activa.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	store      RefreshTokenStore
}

type TokenPair struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

type Claims struct {
	UserID    string      `json:"uid"`
	Name      string      `json:"name,omitempty"`
	Email     string      `json:"email,omitempty"`
	Role      domain.Role `json:"role"`
	CompanyID string      `json:"cid"`
	Position  string      `json:"position,omitempty"`
	TokenType string      `json:"typ"`
	jwt.RegisteredClaims
}

// Identity reconstruye el snapshot de identidad contenido en los claims.
func (c Claims) Identity() domain.Identity {
	return domain.Identity{
		ID:        c.UserID,
		Name:      c.Name,
		Email:     c.Email,
		Role:      c.Role,
		CompanyID: c.CompanyID,
		Position:  c.Position,
	}
}

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

func NewTokenService(secret string, accessTTL, refreshTTL time.Duration) *TokenService {
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 14 * 24 * time.Hour
	}
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		issuer:     "innersignature",
		store:      NewMemoryRefreshTokenStore(),
	}
}

func NewTokenServiceWithStore(secret string, accessTTL, refreshTTL time.Duration, store RefreshTokenStore) *TokenService {
	svc := NewTokenService(secret, accessTTL, refreshTTL)
	if store != nil {
		svc.store = store
	}
	return svc
}

// AccessTTL expone la vida util del access token.
func (s *TokenService) AccessTTL() time.Duration { return s.accessTTL }

// RefreshTTL expone la vida util del refresh token.
func (s *TokenService) RefreshTTL() time.Duration { return s.refreshTTL }

// GeneratePair emite un access token y un refresh token para la identidad.
// El jti del refresh queda registrado en el store para poder revocarlo.
func (s *TokenService) GeneratePair(identity domain.Identity) (TokenPair, error) {
	if len(s.secret) == 0 {
		return TokenPair{}, ErrTokenInvalid
	}
	now := time.Now().UTC()
	access, err := s.signToken(identity, now, s.accessTTL, "access")
	if err != nil {
		return TokenPair{}, err
	}
	refresh, jti, err := s.signRefreshToken(identity, now)
	if err != nil {
		return TokenPair{}, err
	}
	if s.store != nil {
		if err := s.store.Store(jti, identity.ID, s.refreshTTL); err != nil {
			return TokenPair{}, err
		}
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

// RefreshPair rota el par: el refresh usado queda revocado y se emite uno
// nuevo con la misma identidad.
func (s *TokenService) RefreshPair(refreshToken string) (TokenPair, error) {
	claims, err := s.parseRefresh(refreshToken)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.store.Revoke(claims.ID); err != nil {
		return TokenPair{}, ErrTokenInvalid
	}
	return s.GeneratePair(claims.Identity())
}

// RevokeRefresh invalida un refresh token emitido.
func (s *TokenService) RevokeRefresh(refreshToken string) error {
	claims, err := s.parseRefresh(refreshToken)
	if err != nil {
		return err
	}
	return s.store.Revoke(claims.ID)
}

// ParseRefreshClaims valida un refresh token vigente sin consumirlo.
func (s *TokenService) ParseRefreshClaims(refreshToken string) (Claims, error) {
	return s.parseRefresh(refreshToken)
}

func (s *TokenService) parseRefresh(refreshToken string) (Claims, error) {
	if len(s.secret) == 0 || strings.TrimSpace(refreshToken) == "" {
		return Claims{}, ErrTokenInvalid
	}
	claims, err := s.parseToken(refreshToken)
	if err != nil {
		return Claims{}, err
	}
	if claims.TokenType != "refresh" || !s.isValidClaims(claims) {
		return Claims{}, ErrTokenInvalid
	}
	if claims.ID == "" || s.store == nil {
		return Claims{}, ErrTokenInvalid
	}
	ok, err := s.store.Exists(claims.ID)
	if err != nil || !ok {
		return Claims{}, ErrTokenInvalid
	}
	return claims, nil
}

// ParseAccessToken valida un access token y devuelve sus claims.
func (s *TokenService) ParseAccessToken(accessToken string) (Claims, error) {
	if len(s.secret) == 0 {
		return Claims{}, ErrTokenInvalid
	}
	if strings.TrimSpace(accessToken) == "" {
		return Claims{}, ErrTokenInvalid
	}
	claims, err := s.parseToken(accessToken)
	if err != nil {
		return Claims{}, err
	}
	if claims.TokenType != "access" {
		return Claims{}, ErrTokenInvalid
	}
	if !s.isValidClaims(claims) {
		return Claims{}, ErrTokenInvalid
	}
	return claims, nil
}

func (s *TokenService) signToken(identity domain.Identity, now time.Time, ttl time.Duration, tokenType string) (string, error) {
	claims := Claims{
		UserID:    identity.ID,
		Name:      identity.Name,
		Email:     identity.Email,
		Role:      identity.Role,
		CompanyID: identity.CompanyID,
		Position:  identity.Position,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			// El access tambien lleva jti para poder ir a blacklist en logout.
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   identity.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *TokenService) signRefreshToken(identity domain.Identity, now time.Time) (string, string, error) {
	jti := uuid.NewString()
	claims := Claims{
		UserID:    identity.ID,
		Name:      identity.Name,
		Email:     identity.Email,
		Role:      identity.Role,
		CompanyID: identity.CompanyID,
		Position:  identity.Position,
		TokenType: "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    s.issuer,
			Subject:   identity.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	return signed, jti, err
}

func (s *TokenService) parseToken(tokenString string) (Claims, error) {
	var claims Claims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}
	return claims, nil
}

func (s *TokenService) isValidClaims(claims Claims) bool {
	if strings.TrimSpace(claims.UserID) == "" {
		return false
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return false
	}
	if claims.Subject != claims.UserID {
		return false
	}
	if !claims.Role.Valid() {
		return false
	}
	return strings.TrimSpace(claims.Issuer) == s.issuer
}
