package main

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/oksasatya/go-contacts-api/config"
	"github.com/oksasatya/go-contacts-api/pkg/helpers"
)

type seedContact struct {
	name, surname, email, mobile string
	birthday                     string
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "demo@example.com"
	password := "password123"
	username := "demouser"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO users (id, username, email, password_hash, avatar_url, confirmed)
		VALUES ($1, $2, $3, $4, $5, true)
		ON CONFLICT (email) DO UPDATE SET username = EXCLUDED.username, confirmed = true, updated_at = now()
		RETURNING id
	`, uuid.NewString(), username, email, hash, helpers.GravatarURL(email)).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s username=%s password=%s\n", id, email, username, password)

	soon := time.Now().AddDate(-30, 0, 3).Format("2006-01-02")
	contacts := []seedContact{
		{"Olena", "Shevchenko", "olena@example.com", "+380501112233", soon},
		{"Taras", "Koval", "taras@example.com", "+380671234567", "1988-11-02"},
		{"Maria", "Bondar", "maria@example.com", "+380931119988", ""},
	}
	for _, c := range contacts {
		var dob any
		if c.birthday != "" {
			dob = c.birthday
		}
		if _, err := db.Exec(`
			INSERT INTO contacts (id, owner_id, name, surname, email, mobile, date_of_birth)
			SELECT $1, $2, $3, $4, $5, $6, $7::date
			WHERE NOT EXISTS (SELECT 1 FROM contacts WHERE owner_id = $2 AND email = $5)
		`, uuid.NewString(), id, c.name, c.surname, c.email, c.mobile, dob); err != nil {
			log.Fatalf("failed to seed contact %s: %v", c.email, err)
		}
	}
	fmt.Printf("seeded %d contacts for %s (existing ones kept)\n", len(contacts), email)
}
