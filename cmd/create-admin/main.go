// create-admin provisions an administrator account. Admins are never
// self-service; this is the only way to create one.
//
// Usage: create-admin <username> <password> [email] [fullName]
package main

import (
	"fmt"
	"log"
	"os"

	"oasis/config"
	"oasis/service"

	_ "github.com/lib/pq"
)

func main() {
	args := os.Args[1:]
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: create-admin <username> <password> [email] [fullName]")
		os.Exit(1)
	}
	username := args[0]
	password := args[1]
	email := fmt.Sprintf("%s@oasis.local", username)
	if len(args) > 2 {
		email = args[2]
	}
	fullName := fmt.Sprintf("%s (Admin)", username)
	if len(args) > 3 {
		fullName = args[3]
	}

	cfg := config.Env()
	db, err := config.InitDB(
		cfg.DatabaseHost,
		cfg.DatabasePort,
		cfg.PostgresUser,
		cfg.PostgresPassword,
		cfg.DatabaseName,
	)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	adminService := service.NewAdminService(db)
	admin, err := adminService.CreateAdmin(username, password, email, fullName)
	if err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}
	fmt.Println("Admin user created successfully")
	fmt.Println("Username:", admin.Username)
	fmt.Println("Email:", admin.Email)
	fmt.Println("Full Name:", admin.FullName)
}
