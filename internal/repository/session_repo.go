package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LoginSession es el registro de auditoria de una sesion emitida: que usuario
// obtuvo credenciales, para que compania y hasta cuando son validas.
type LoginSession struct {
	ID         string
	UserID     string
	CompanyID  string
	RefreshJTI string
	UserAgent  string
	IPAddress  string
	ExpiresAt  time.Time
	RevokedAt  *time.Time
	CreatedAt  time.Time
}

// SessionRepository define el contrato de persistencia para sesiones.
type SessionRepository interface {
	Create(ctx context.Context, s LoginSession) error
	RevokeByJTI(ctx context.Context, jti string) error
	RevokeAllForUser(ctx context.Context, userID string) error
}

// PgSessionRepository implementa SessionRepository usando pgxpool.
type PgSessionRepository struct {
	pool *pgxpool.Pool
}

func NewPgSessionRepository(pool *pgxpool.Pool) *PgSessionRepository {
	return &PgSessionRepository{pool: pool}
}

func (r *PgSessionRepository) Create(ctx context.Context, s LoginSession) error {
	const query = `
		INSERT INTO login_sessions (id, user_id, company_id, refresh_jti, user_agent, ip_address, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		s.ID,
		s.UserID,
		s.CompanyID,
		s.RefreshJTI,
		s.UserAgent,
		s.IPAddress,
		s.ExpiresAt,
		s.CreatedAt,
	)
	return err
}

func (r *PgSessionRepository) RevokeByJTI(ctx context.Context, jti string) error {
	const query = `
		UPDATE login_sessions
		SET revoked_at = now()
		WHERE refresh_jti = $1 AND revoked_at IS NULL
	`
	_, err := r.pool.Exec(ctx, query, jti)
	return err
}

func (r *PgSessionRepository) RevokeAllForUser(ctx context.Context, userID string) error {
	const query = `
		UPDATE login_sessions
		SET revoked_at = now()
		WHERE user_id = $1 AND revoked_at IS NULL
	`
	_, err := r.pool.Exec(ctx, query, userID)
	return err
}
