package source

import (
	"time"

	"github.com/JakeFAU/mission-site/internal/mission"
)

// FallbackJobs returns the fixed demo dataset used when the store cannot be
// read. Each call returns a fresh copy.
func FallbackJobs() []mission.Job {
	return []mission.Job{
		{
			ID:       "fallback-1",
			Slug:     "developpeur-full-stack-react-node-js-paris",
			Title:    "Développeur Full Stack React/Node.js",
			Company:  "TechCorp",
			Location: "Paris, Île-de-France",
			Type:     mission.TypeMission,
			Description: "Nous recherchons un développeur Full Stack pour renforcer notre équipe produit.\n" +
				"Vous participerez à la conception et au développement de nouvelles fonctionnalités " +
				"sur une plateforme SaaS à fort trafic.",
			Salary:       "650",
			SalaryType:   mission.SalaryDayRate,
			Requirements: []string{"3 ans d'expérience minimum en React", "Maîtrise de Node.js et TypeScript", "Connaissance de PostgreSQL"},
			Benefits:     []string{"Télétravail 3 jours par semaine", "Mission longue durée"},
			CreatedAt:    fixedDate(2024, time.January, 15),
			Applicants:   12,
			Featured:     true,
		},
		{
			ID:       "fallback-2",
			Slug:     "data-engineer-python-lyon",
			Title:    "Data Engineer Python",
			Company:  "DataFlow",
			Location: "Lyon, Auvergne-Rhône-Alpes",
			Type:     mission.TypeFreelance,
			Description: "Mission de 6 mois pour industrialiser les pipelines de données d'un acteur du retail.\n" +
				"Environnement Airflow, dbt et BigQuery.",
			Salary:       "600",
			SalaryType:   mission.SalaryDayRate,
			Requirements: []string{"Python avancé", "Expérience Airflow ou équivalent"},
			CreatedAt:    fixedDate(2024, time.January, 10),
			UpdatedAt:    fixedDate(2024, time.January, 20),
			Applicants:   1,
		},
		{
			ID:           "fallback-3",
			Slug:         "chef-de-projet-digital-bordeaux",
			Title:        "Chef de Projet Digital",
			Company:      "Agence Horizon",
			Location:     "Bordeaux, Nouvelle-Aquitaine",
			Type:         mission.TypeCDI,
			Description:  "Pilotage de projets web pour des clients grands comptes, de la conception à la mise en production.",
			Salary:       "55000",
			SalaryType:   mission.SalaryAnnual,
			Benefits:     []string{"Tickets restaurant", "Mutuelle prise en charge à 100%"},
			CreatedAt:    fixedDate(2024, time.January, 5),
			Applicants:   0,
		},
	}
}

func fixedDate(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}
