package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"innersignature/internal/domain"
)

// CompanyRepository define el contrato de persistencia para companias y
// membresias usuario-compania.
type CompanyRepository interface {
	GetByID(ctx context.Context, id string) (domain.Company, error)
	ListByUser(ctx context.Context, userID string) ([]domain.CompanyMembership, error)
	IsMember(ctx context.Context, userID, companyID string) (bool, error)
}

// PgCompanyRepository implementa CompanyRepository usando pgxpool.
type PgCompanyRepository struct {
	pool *pgxpool.Pool
}

func NewPgCompanyRepository(pool *pgxpool.Pool) *PgCompanyRepository {
	return &PgCompanyRepository{pool: pool}
}

func (r *PgCompanyRepository) GetByID(ctx context.Context, id string) (domain.Company, error) {
	const query = `
		SELECT id, name, created_at
		FROM companies
		WHERE id = $1
	`
	var c domain.Company
	err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		return domain.Company{}, err
	}
	return c, nil
}

func (r *PgCompanyRepository) ListByUser(ctx context.Context, userID string) ([]domain.CompanyMembership, error) {
	const query = `
		SELECT c.id, c.name
		FROM companies c
		JOIN company_members m ON m.company_id = c.id
		WHERE m.user_id = $1
		ORDER BY c.name
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memberships []domain.CompanyMembership
	for rows.Next() {
		var m domain.CompanyMembership
		if err := rows.Scan(&m.CompanyID, &m.CompanyName); err != nil {
			return nil, err
		}
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}

func (r *PgCompanyRepository) IsMember(ctx context.Context, userID, companyID string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM company_members
			WHERE user_id = $1 AND company_id = $2
		)
	`
	var ok bool
	err := r.pool.QueryRow(ctx, query, userID, companyID).Scan(&ok)
	return ok, err
}
