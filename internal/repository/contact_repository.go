package repository

import (
	"context"
	"database/sql"

	"github.com/jmorel/etude-backend/internal/model"
)

// ContactRepo serves the two flat reference datasets. Both tables are
// seeded once at startup and read-only afterwards.
type ContactRepo struct{ DB *sql.DB }

func NewContactRepo(db *sql.DB) *ContactRepo { return &ContactRepo{DB: db} }

// ListB2B returns every business contact record.
func (r *ContactRepo) ListB2B(ctx context.Context) ([]model.B2BContact, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, entreprise_id, nom_entreprise, tel,
		       COALESCE(tel2,''), COALESCE(tel3,''), siret,
		       DATE_FORMAT(date_creation,'%Y-%m-%d'), tranche_effectifs,
		       categorie_juridique, activite_principale, adresse, code_postal,
		       commune, dept, secteur, region13
		FROM b2b_contacts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.B2BContact{}
	for rows.Next() {
		var c model.B2BContact
		if err := rows.Scan(&c.ID, &c.EntrepriseID, &c.NomEntreprise, &c.Tel,
			&c.Tel2, &c.Tel3, &c.Siret, &c.DateCreation, &c.TrancheEffectifs,
			&c.CategorieJuridique, &c.ActivitePrincipale, &c.Adresse, &c.CodePostal,
			&c.Commune, &c.Dept, &c.Secteur, &c.Region13); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListB2C returns every consumer contact record.
func (r *ContactRepo) ListB2C(ctx context.Context) ([]model.B2CContact, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, nom, tel, age, sexe, dep, region13, type_tel, habitat, csp
		FROM b2c_contacts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.B2CContact{}
	for rows.Next() {
		var c model.B2CContact
		if err := rows.Scan(&c.ID, &c.Nom, &c.Tel, &c.Age, &c.Sexe, &c.Dep,
			&c.Region13, &c.TypeTel, &c.Habitat, &c.CSP); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CountB2B reports how many rows the b2b_contacts table holds; used to
// decide whether seeding is needed.
func (r *ContactRepo) CountB2B(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM b2b_contacts").Scan(&n)
	return n, err
}

// CountB2C reports how many rows the b2c_contacts table holds.
func (r *ContactRepo) CountB2C(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM b2c_contacts").Scan(&n)
	return n, err
}

// InsertB2B adds one seeded business contact.
func (r *ContactRepo) InsertB2B(ctx context.Context, c model.B2BContact) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO b2b_contacts
		(entreprise_id, nom_entreprise, tel, tel2, tel3, siret, date_creation,
		 tranche_effectifs, categorie_juridique, activite_principale, adresse,
		 code_postal, commune, dept, secteur, region13)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		c.EntrepriseID, c.NomEntreprise, c.Tel, nullIfEmpty(c.Tel2), nullIfEmpty(c.Tel3),
		c.Siret, c.DateCreation, c.TrancheEffectifs, c.CategorieJuridique,
		c.ActivitePrincipale, c.Adresse, c.CodePostal, c.Commune, c.Dept,
		c.Secteur, c.Region13)
	return err
}

// InsertB2C adds one seeded consumer contact.
func (r *ContactRepo) InsertB2C(ctx context.Context, c model.B2CContact) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO b2c_contacts (nom, tel, age, sexe, dep, region13, type_tel, habitat, csp)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		c.Nom, c.Tel, c.Age, c.Sexe, c.Dep, c.Region13, c.TypeTel, c.Habitat, c.CSP)
	return err
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
