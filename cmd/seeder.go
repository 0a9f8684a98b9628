package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

// seedCmd bootstraps a development organization with one member per role and
// a starter set of categories. Passwords default to "password".
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with a demo organization, one user per role and default categories.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		if clearData {
			tables := []string{
				"notifications", "audit_entries", "payment_requests",
				"transactions", "categories", "users", "organizations",
			}
			for _, table := range tables {
				if _, err := db.Exec("DELETE FROM " + table); err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		orgName := "Centro de Padres Demo"
		var orgID int64
		err = db.Get(&orgID, "SELECT id FROM organizations WHERE name = $1", orgName)
		if err != nil {
			if err := db.Get(&orgID,
				"INSERT INTO organizations (name, created_at, updated_at) VALUES ($1, now(), now()) RETURNING id",
				orgName); err != nil {
				log.Fatalf("failed to insert organization: %v", err)
			}
			fmt.Println("Seeded organization:", orgName)
		}

		hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)

		users := []struct {
			Email string
			Name  string
			Role  string
		}{
			{"presidente@demo.cl", "Presidenta Demo", "presidente"},
			{"secretaria@demo.cl", "Secretaria Demo", "secretaria"},
			{"delegado@demo.cl", "Delegado Demo", "delegado"},
		}

		for _, u := range users {
			var exists int
			if err := db.Get(&exists,
				"SELECT 1 FROM users WHERE organization_id = $1 AND email = $2", orgID, u.Email); err == nil {
				fmt.Println("user already exists:", u.Email)
				continue
			}
			if _, err := db.Exec(
				`INSERT INTO users (organization_id, email, name, role, password_hash, is_active, created_at, updated_at)
				 VALUES ($1, $2, $3, $4, $5, true, now(), now())`,
				orgID, u.Email, u.Name, u.Role, string(hash)); err != nil {
				log.Fatalf("failed to insert user %s: %v", u.Email, err)
			}
			fmt.Println("Seeded user:", u.Email, "role:", u.Role)
		}

		categories := []struct {
			Name string
			Type string
		}{
			{"Cuotas", "ingreso"},
			{"Donaciones", "ingreso"},
			{"Eventos", "ingreso"},
			{"Materiales", "egreso"},
			{"Actividades", "egreso"},
			{"Gastos operacionales", "egreso"},
		}

		for _, c := range categories {
			var exists int
			if err := db.Get(&exists,
				"SELECT 1 FROM categories WHERE organization_id = $1 AND name = $2", orgID, c.Name); err == nil {
				continue
			}
			if _, err := db.Exec(
				`INSERT INTO categories (organization_id, name, type, created_at, updated_at)
				 VALUES ($1, $2, $3, now(), now())`,
				orgID, c.Name, c.Type); err != nil {
				log.Fatalf("failed to insert category %s: %v", c.Name, err)
			}
			fmt.Println("Seeded category:", c.Name)
		}

		fmt.Println("Seeding complete")
	},
}
