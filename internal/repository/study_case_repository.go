package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmorel/etude-backend/internal/model"
)

// StudyCaseRepo provides access to the 'study_cases' table. Dates and
// timings are formatted on read so the wire strings survive the DATE/TIME
// column round trip unchanged.
type StudyCaseRepo struct{ DB *sql.DB }

func NewStudyCaseRepo(db *sql.DB) *StudyCaseRepo { return &StudyCaseRepo{DB: db} }

const studyCaseCols = `id, nom_etude,
	DATE_FORMAT(date_debut,'%Y-%m-%d'), DATE_FORMAT(date_fin,'%Y-%m-%d'),
	TIME_FORMAT(timing_attendu,'%H:%i:%s'), TIME_FORMAT(timing_reelle,'%H:%i:%s'),
	cadence_attendu, cadence_reelle, zip_file, created_at, updated_at`

func scanStudyCase(row *sql.Row) (model.StudyCase, error) {
	var sc model.StudyCase
	err := row.Scan(&sc.ID, &sc.NomEtude, &sc.DateDebut, &sc.DateFin,
		&sc.TimingAttendu, &sc.TimingReelle, &sc.CadenceAttendu, &sc.CadenceReelle,
		&sc.ZipFile, &sc.CreatedAt, &sc.UpdatedAt)
	if err == sql.ErrNoRows {
		return sc, ErrNotFound
	}
	return sc, err
}

// Create inserts a study case row and returns its ID.
func (r *StudyCaseRepo) Create(ctx context.Context, sc model.StudyCase) (uint64, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO study_cases
		(nom_etude, date_debut, date_fin, timing_attendu, timing_reelle,
		 cadence_attendu, cadence_reelle, zip_file)
		VALUES (?,?,?,?,?,?,?,?)`,
		sc.NomEtude, sc.DateDebut, sc.DateFin, sc.TimingAttendu, sc.TimingReelle,
		sc.CadenceAttendu, sc.CadenceReelle, sc.ZipFile)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a study case by id.
func (r *StudyCaseRepo) GetByID(ctx context.Context, id uint64) (model.StudyCase, error) {
	return scanStudyCase(r.DB.QueryRowContext(ctx,
		"SELECT "+studyCaseCols+" FROM study_cases WHERE id=? LIMIT 1", id))
}

// List returns all study cases.
func (r *StudyCaseRepo) List(ctx context.Context) ([]model.StudyCase, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+studyCaseCols+" FROM study_cases ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.StudyCase{}
	for rows.Next() {
		var sc model.StudyCase
		if err := rows.Scan(&sc.ID, &sc.NomEtude, &sc.DateDebut, &sc.DateFin,
			&sc.TimingAttendu, &sc.TimingReelle, &sc.CadenceAttendu, &sc.CadenceReelle,
			&sc.ZipFile, &sc.CreatedAt, &sc.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// StudyCasePatch carries the optional metadata fields of an update. Nil
// means "leave unchanged". ZipFile is set by the handler when a rename
// rewrote the stored path.
type StudyCasePatch struct {
	NomEtude       *string
	DateDebut      *string
	DateFin        *string
	TimingAttendu  *string
	TimingReelle   *string
	CadenceAttendu *float64
	CadenceReelle  *float64
	ZipFile        *string
}

// Update persists the non-nil fields of the patch.
func (r *StudyCaseRepo) Update(ctx context.Context, id uint64, p StudyCasePatch) (model.StudyCase, error) {
	sets := []string{}
	args := []any{}
	add := func(col string, v any) {
		sets = append(sets, col+"=?")
		args = append(args, v)
	}
	if p.NomEtude != nil {
		add("nom_etude", *p.NomEtude)
	}
	if p.DateDebut != nil {
		add("date_debut", *p.DateDebut)
	}
	if p.DateFin != nil {
		add("date_fin", *p.DateFin)
	}
	if p.TimingAttendu != nil {
		add("timing_attendu", *p.TimingAttendu)
	}
	if p.TimingReelle != nil {
		add("timing_reelle", *p.TimingReelle)
	}
	if p.CadenceAttendu != nil {
		add("cadence_attendu", *p.CadenceAttendu)
	}
	if p.CadenceReelle != nil {
		add("cadence_reelle", *p.CadenceReelle)
	}
	if p.ZipFile != nil {
		add("zip_file", *p.ZipFile)
	}
	if len(sets) > 0 {
		args = append(args, id)
		if _, err := r.DB.ExecContext(ctx,
			"UPDATE study_cases SET "+strings.Join(sets, ", ")+", updated_at=NOW() WHERE id=?",
			args...); err != nil {
			return model.StudyCase{}, err
		}
	}
	return r.GetByID(ctx, id)
}

// UpdateZipFile rewrites only the stored archive path.
func (r *StudyCaseRepo) UpdateZipFile(ctx context.Context, id uint64, zipFile string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE study_cases SET zip_file=?, updated_at=NOW() WHERE id=?", zipFile, id)
	return err
}

// Delete removes the metadata row; comments cascade via the FK constraint.
func (r *StudyCaseRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM study_cases WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
