package database

import (
	"context"
	"fmt"
	"log"
	"math/rand"

	"github.com/jmorel/etude-backend/internal/model"
	"github.com/jmorel/etude-backend/internal/repository"
)

// SeedContacts fills the two reference tables when they are empty. The
// records are generated from a fixed seed so every environment gets the
// same dataset. Tables that already hold rows are left alone; the
// listings are immutable after seeding.
func SeedContacts(ctx context.Context, contacts *repository.ContactRepo) error {
	n, err := contacts.CountB2B(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		rng := rand.New(rand.NewSource(42))
		for i := 0; i < 50; i++ {
			if err := contacts.InsertB2B(ctx, fakeB2B(rng, i)); err != nil {
				return err
			}
		}
		log.Printf("seeded 50 b2b_contacts rows")
	}

	n, err = contacts.CountB2C(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		rng := rand.New(rand.NewSource(43))
		for i := 0; i < 50; i++ {
			if err := contacts.InsertB2C(ctx, fakeB2C(rng, i)); err != nil {
				return err
			}
		}
		log.Printf("seeded 50 b2c_contacts rows")
	}
	return nil
}

var (
	companies = []string{"Atelier Lumière", "Nordtech", "Groupe Vexin", "Soltiva",
		"Ets Charpin", "Mécalor", "Thermaux Industrie", "Provexa", "Cartel Ouest", "Dynalis"}
	sectors   = []string{"Industrie", "Services", "Commerce", "BTP", "Transport"}
	legales   = []string{"SAS", "SARL", "SA", "EURL"}
	effectifs = []string{"1-10", "11-50", "51-100", "101-250"}
	communes  = []string{"Lyon", "Nantes", "Lille", "Rennes", "Dijon", "Toulouse", "Metz", "Pau"}
	regions   = []string{"Auvergne-Rhône-Alpes", "Pays de la Loire", "Hauts-de-France",
		"Bretagne", "Bourgogne", "Occitanie", "Grand Est", "Nouvelle-Aquitaine"}
	firstNames = []string{"Claire", "Marc", "Sophie", "Julien", "Inès", "Paul", "Léa", "Hugo", "Anne", "Rémi"}
	lastNames  = []string{"Bernard", "Moreau", "Lefevre", "Garnier", "Roux", "Fontaine", "Chevalier", "Gauthier"}
)

func fakeB2B(rng *rand.Rand, i int) model.B2BContact {
	ci := rng.Intn(len(companies))
	name := companies[ci]
	dept := fmt.Sprintf("%02d", 1+rng.Intn(95))
	return model.B2BContact{
		EntrepriseID:       fmt.Sprintf("ENT-%05d", 10000+i),
		NomEntreprise:      name,
		Tel:                fakePhone(rng),
		Tel2:               maybePhone(rng),
		Tel3:               maybePhone(rng),
		Siret:              fmt.Sprintf("%014d", rng.Int63n(1e14)),
		DateCreation:       fmt.Sprintf("%d-%02d-%02d", 1980+rng.Intn(40), 1+rng.Intn(12), 1+rng.Intn(28)),
		TrancheEffectifs:   effectifs[rng.Intn(len(effectifs))],
		CategorieJuridique: legales[rng.Intn(len(legales))],
		ActivitePrincipale: sectors[rng.Intn(len(sectors))],
		Adresse:            fmt.Sprintf("%d rue de la République", 1+rng.Intn(180)),
		CodePostal:         dept + fmt.Sprintf("%03d", rng.Intn(1000)),
		Commune:            communes[rng.Intn(len(communes))],
		Dept:               dept,
		Secteur:            sectors[rng.Intn(len(sectors))],
		Region13:           regions[rng.Intn(len(regions))],
	}
}

func fakeB2C(rng *rand.Rand, i int) model.B2CContact {
	sexe := "M"
	if rng.Intn(2) == 0 {
		sexe = "F"
	}
	typeTel := "Mobile"
	if rng.Intn(3) == 0 {
		typeTel = "Fixe"
	}
	habitat := "Urbain"
	if rng.Intn(3) == 0 {
		habitat = "Rural"
	}
	return model.B2CContact{
		Nom:      firstNames[rng.Intn(len(firstNames))] + " " + lastNames[rng.Intn(len(lastNames))],
		Tel:      fakePhone(rng),
		Age:      18 + rng.Intn(72),
		Sexe:     sexe,
		Dep:      fmt.Sprintf("%02d", 1+rng.Intn(95)),
		Region13: regions[rng.Intn(len(regions))],
		TypeTel:  typeTel,
		Habitat:  habitat,
		CSP:      sectors[rng.Intn(len(sectors))],
	}
}

func fakePhone(rng *rand.Rand) string {
	return fmt.Sprintf("0%d%08d", 1+rng.Intn(7), rng.Intn(1e8))
}

func maybePhone(rng *rand.Rand) string {
	if rng.Intn(2) == 0 {
		return ""
	}
	return fakePhone(rng)
}
