package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"vet-vaccination-tracker/internal/domain/doses"
)

type DosesRepo struct {
	db *sql.DB
}

func NewDosesRepo(db *sql.DB) *DosesRepo {
	return &DosesRepo{db: db}
}

func (r *DosesRepo) Create(ctx context.Context, d doses.AppliedDose) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO applied_doses (
			id, patient_id,
			dose_definition_id,
			applied_on, recorded_at, recorded_by,
			notes
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		d.ID,
		d.PatientID,
		d.DoseDefinitionID,
		d.AppliedOn,
		d.RecordedAt,
		d.RecordedBy,
		d.Notes,
	)
	return err
}

func (r *DosesRepo) GetByID(ctx context.Context, id string) (doses.AppliedDose, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return doses.AppliedDose{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, patient_id,
			dose_definition_id,
			applied_on, recorded_at, recorded_by,
			notes
		FROM applied_doses
		WHERE id = $1
	`, id)

	var d doses.AppliedDose
	if err := row.Scan(
		&d.ID,
		&d.PatientID,
		&d.DoseDefinitionID,
		&d.AppliedOn,
		&d.RecordedAt,
		&d.RecordedBy,
		&d.Notes,
	); err != nil {
		if err == sql.ErrNoRows {
			return doses.AppliedDose{}, ErrNotFound
		}
		return doses.AppliedDose{}, err
	}
	return d, nil
}

func (r *DosesRepo) ListByPatient(ctx context.Context, patientID string, filter doses.ListFilter) ([]doses.AppliedDose, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return nil, nil
	}

	sb := strings.Builder{}
	sb.WriteString(`
		SELECT
			id, patient_id,
			dose_definition_id,
			applied_on, recorded_at, recorded_by,
			notes
		FROM applied_doses
		WHERE patient_id = $1
	`)

	args := []any{patientID}
	argN := 2

	if filter.From != nil {
		sb.WriteString(fmt.Sprintf(" AND applied_on >= $%d", argN))
		args = append(args, *filter.From)
		argN++
	}
	if filter.To != nil {
		sb.WriteString(fmt.Sprintf(" AND applied_on <= $%d", argN))
		args = append(args, *filter.To)
		argN++
	}

	// Historial en orden de aplicación; Limit <= 0 = completo (el pipeline
	// recalcula siempre sobre el snapshot total).
	sb.WriteString(" ORDER BY applied_on ASC")
	if filter.Limit > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", argN))
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]doses.AppliedDose, 0)
	for rows.Next() {
		var d doses.AppliedDose
		if err := rows.Scan(
			&d.ID,
			&d.PatientID,
			&d.DoseDefinitionID,
			&d.AppliedOn,
			&d.RecordedAt,
			&d.RecordedBy,
			&d.Notes,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *DosesRepo) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrNotFound
	}

	res, err := r.db.ExecContext(ctx, `
		DELETE FROM applied_doses
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
