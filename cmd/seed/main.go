package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/ignite/marketing-console/internal/auth"
	"github.com/ignite/marketing-console/internal/config"
	"github.com/ignite/marketing-console/internal/permission"
)

// Seeds one user per role and prints a bearer token for each, for local
// development against a fresh database.
func main() {
	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	manager := auth.NewManager(db, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, log)

	users := []struct {
		name, email, role string
	}{
		{"Ada Admin", "admin@example.com", permission.RoleAdmin},
		{"Mina Manager", "manager@example.com", permission.RoleManager},
		{"Eli Editor", "editor@example.com", permission.RoleEditor},
		{"Vic Viewer", "viewer@example.com", permission.RoleViewer},
	}

	for _, u := range users {
		var id string
		err := db.QueryRow(`SELECT id FROM users WHERE email = $1`, u.email).Scan(&id)
		if err != nil {
			id = uuid.New().String()
			_, err = db.Exec(
				`INSERT INTO users (id, name, email, role, created_at) VALUES ($1, $2, $3, $4, $5)`,
				id, u.name, u.email, u.role, time.Now().UTC(),
			)
			if err != nil {
				log.Fatal("failed to insert user", zap.String("email", u.email), zap.Error(err))
			}
		}

		token, err := manager.GenerateToken(id)
		if err != nil {
			log.Fatal("failed to mint token", zap.String("email", u.email), zap.Error(err))
		}
		fmt.Printf("%-8s %s\n  token: %s\n", u.role, u.email, token)
	}
}
