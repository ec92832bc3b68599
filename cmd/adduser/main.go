// cmd/adduser/main.go
// Creates or updates a portal user in the database.
//
// Usage:
//
//	go run ./cmd/adduser -username nasr -password testing -role admin
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"

	"github.com/nasreddinesoltani/trf-portal-api/config"
	bundb "github.com/nasreddinesoltani/trf-portal-api/db"
	"github.com/nasreddinesoltani/trf-portal-api/models"
)

func main() {
	username := flag.String("username", "", "username (required)")
	password := flag.String("password", "", "plain-text password (required)")
	role := flag.String("role", models.RoleViewer, "user role: admin or viewer")
	flag.Parse()

	if *username == "" || *password == "" {
		log.Fatal("both -username and -password are required")
	}
	if *role != models.RoleAdmin && *role != models.RoleViewer {
		log.Fatalf("unknown role %q", *role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("bcrypt:", err)
	}

	cfg := config.Load()
	db := bundb.Setup(cfg)
	defer db.Close()

	user := &models.User{
		Username: *username,
		Password: string(hash),
		Role:     *role,
	}

	_, err = db.NewInsert().Model(user).
		On("CONFLICT (username) DO UPDATE SET password = EXCLUDED.password, role = EXCLUDED.role").
		Exec(context.Background())
	if err != nil {
		log.Fatal("insert user:", err)
	}

	fmt.Printf("user %q saved with role %s\n", *username, *role)
}
