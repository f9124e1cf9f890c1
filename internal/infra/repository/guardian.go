package repository

import (
	"context"
	"errors"

	"childcare-booking/internal/infra"
	"childcare-booking/internal/infra/db"
	"childcare-booking/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type GuardianRepository struct {
	db db.DBTX
}

func NewGuardianRepository(dbtx db.DBTX) *GuardianRepository {
	return &GuardianRepository{db: dbtx}
}

func (r *GuardianRepository) FindByEmail(ctx context.Context, email string) (*shared.GuardianSnapshot, error) {
	const q = `SELECT id, email, name, phone, doc_number FROM guardians WHERE email = $1`

	var g shared.GuardianSnapshot
	err := r.db.QueryRow(ctx, q, email).Scan(&g.ID, &g.Email, &g.Name, &g.Phone, &g.DocNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("guardian not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find guardian by email", err)
	}
	return &g, nil
}

func (r *GuardianRepository) Create(ctx context.Context, email, name string) (*shared.GuardianSnapshot, error) {
	const q = `
		INSERT INTO guardians (id, email, name)
		VALUES ($1, $2, $3)
		RETURNING id, email, name, phone, doc_number`

	var g shared.GuardianSnapshot
	err := r.db.QueryRow(ctx, q, uuid.New(), email, name).
		Scan(&g.ID, &g.Email, &g.Name, &g.Phone, &g.DocNumber)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to create guardian", err)
	}
	return &g, nil
}

func (r *GuardianRepository) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE guardians SET name = $2, updated_at = now() WHERE id = $1`, id, name)
	if err != nil {
		return infra.WrapRepoErr("failed to update guardian name", err)
	}
	return nil
}

func (r *GuardianRepository) UpdateContact(ctx context.Context, id uuid.UUID, phone, docNumber *string) error {
	const q = `
		UPDATE guardians
		SET phone = COALESCE($2, phone),
		    doc_number = COALESCE($3, doc_number),
		    updated_at = now()
		WHERE id = $1`

	if _, err := r.db.Exec(ctx, q, id, phone, docNumber); err != nil {
		return infra.WrapRepoErr("failed to update guardian contact", err)
	}
	return nil
}

func (r *GuardianRepository) FindChildren(ctx context.Context, guardianID uuid.UUID) ([]shared.ChildSnapshot, error) {
	const q = `
		SELECT id, full_name, age_years, dni, has_conditions, conditions
		FROM children
		WHERE guardian_id = $1
		ORDER BY full_name`

	rows, err := r.db.Query(ctx, q, guardianID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find guardian children", err)
	}
	defer rows.Close()

	var out []shared.ChildSnapshot
	for rows.Next() {
		var c shared.ChildSnapshot
		if err := rows.Scan(&c.ID, &c.FullName, &c.AgeYears, &c.DNI,
			&c.HasConditions, &c.Conditions); err != nil {
			return nil, infra.WrapRepoErr("failed to scan child", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate children", err)
	}
	return out, nil
}

func (r *GuardianRepository) CreateChild(ctx context.Context, guardianID uuid.UUID, c shared.ChildSnapshot) (uuid.UUID, error) {
	const q = `
		INSERT INTO children (id, guardian_id, full_name, age_years, dni, has_conditions, conditions)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	var id uuid.UUID
	err := r.db.QueryRow(ctx, q,
		uuid.New(), guardianID, c.FullName, c.AgeYears, c.DNI, c.HasConditions, c.Conditions,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to create child", err)
	}
	return id, nil
}

func (r *GuardianRepository) UpdateChild(ctx context.Context, childID uuid.UUID, hasConditions bool, conditions, dni *string) error {
	const q = `
		UPDATE children
		SET has_conditions = $2,
		    conditions = $3,
		    dni = COALESCE($4, dni),
		    updated_at = now()
		WHERE id = $1`

	if _, err := r.db.Exec(ctx, q, childID, hasConditions, conditions, dni); err != nil {
		return infra.WrapRepoErr("failed to update child", err)
	}
	return nil
}
