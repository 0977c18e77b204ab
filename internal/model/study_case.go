package model

import "time"

// StudyCase mirrors the `study_cases` table. NomEtude doubles as the name
// of the on-disk directory holding the uploaded archive, so ZipFile must
// always carry the directory prefix derived from the current NomEtude.
// Dates and timings are kept as the wire strings ("2006-01-02" and
// "15:04:05") the columns are formatted with on read.
type StudyCase struct {
	ID             uint64    `json:"id"`
	NomEtude       string    `json:"nom_etude"`
	DateDebut      string    `json:"date_debut"`
	DateFin        string    `json:"date_fin"`
	TimingAttendu  string    `json:"timing_attendu"`
	TimingReelle   string    `json:"timing_reelle"`
	CadenceAttendu float64   `json:"cadence_attendu"`
	CadenceReelle  float64   `json:"cadence_reelle"`
	ZipFile        string    `json:"zipFile"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
