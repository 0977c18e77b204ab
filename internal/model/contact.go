package model

// B2BContact is an immutable-after-seed business contact record from the
// `b2b_contacts` reference table. Column names keep the French field names
// of the source dataset (SIRET registry extract).
type B2BContact struct {
	ID                 uint64 `json:"id"`
	EntrepriseID       string `json:"EntrepriseID"`
	NomEntreprise      string `json:"nomUniteLegale_def"`
	Tel                string `json:"TEL"`
	Tel2               string `json:"TEL2,omitempty"`
	Tel3               string `json:"TEL3,omitempty"`
	Siret              string `json:"SIRET"`
	DateCreation       string `json:"dateCreationUniteLegale"`
	TrancheEffectifs   string `json:"trancheEffectifsUniteLegale"`
	CategorieJuridique string `json:"categorieJuridiqueUniteLegale"`
	ActivitePrincipale string `json:"activitePrincipaleUniteLegale_def"`
	Adresse            string `json:"adresse"`
	CodePostal         string `json:"codePostalEtablissement"`
	Commune            string `json:"libelleCommuneEtablissement"`
	Dept               string `json:"DEPT"`
	Secteur            string `json:"SECTEUR"`
	Region13           string `json:"Region13"`
}

// B2CContact is an immutable-after-seed consumer contact record from the
// `b2c_contacts` reference table.
type B2CContact struct {
	ID       uint64 `json:"id"`
	Nom      string `json:"Nom"`
	Tel      string `json:"TEL"`
	Age      int    `json:"Age"`
	Sexe     string `json:"Sexe"`
	Dep      string `json:"DEP"`
	Region13 string `json:"Region13"`
	TypeTel  string `json:"Type_TEL"`
	Habitat  string `json:"Habitat"`
	CSP      string `json:"CSP_Interviewe"`
}
