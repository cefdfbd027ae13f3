// admin-manager administers the platform's admin accounts: listing,
// creation, activation/deactivation and password resets.
package main

import (
	"fmt"
	"log"
	"os"

	"oasis/config"
	"oasis/service"

	_ "github.com/lib/pq"
)

func usage() {
	fmt.Fprintln(os.Stderr, "Available commands:")
	fmt.Fprintln(os.Stderr, "  list                                            - List all admin users")
	fmt.Fprintln(os.Stderr, "  create <username> <password> [email] [fullName] - Create new admin")
	fmt.Fprintln(os.Stderr, "  deactivate <username>                           - Deactivate admin user")
	fmt.Fprintln(os.Stderr, "  activate <username>                             - Activate admin user")
	fmt.Fprintln(os.Stderr, "  reset-password <username> <newPassword>         - Reset admin password")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
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

	command := os.Args[1]
	args := os.Args[2:]
	switch command {
	case "list":
		admins, err := adminService.ListAdmins()
		if err != nil {
			log.Fatalf("Failed to list admins: %v", err)
		}
		if len(admins) == 0 {
			fmt.Println("No admin users found.")
			return
		}
		for _, admin := range admins {
			status := "Active"
			if !admin.IsActive {
				status = "Inactive"
			}
			lastLogin := "Never"
			if admin.LastLogin != nil {
				lastLogin = admin.LastLogin.Format("2006-01-02")
			}
			fmt.Printf("%s (%s)\n", admin.Username, admin.FullName)
			fmt.Printf("  Email: %s\n", admin.Email)
			fmt.Printf("  Status: %s\n", status)
			fmt.Printf("  Created: %s\n", admin.CreatedAt.Format("2006-01-02"))
			fmt.Printf("  Last Login: %s\n", lastLogin)
		}
	case "create":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "Usage: admin-manager create <username> <password> [email] [fullName]")
			os.Exit(1)
		}
		username := args[0]
		email := fmt.Sprintf("%s@oasis.local", username)
		if len(args) > 2 {
			email = args[2]
		}
		fullName := fmt.Sprintf("%s (Admin)", username)
		if len(args) > 3 {
			fullName = args[3]
		}
		admin, err := adminService.CreateAdmin(username, args[1], email, fullName)
		if err != nil {
			log.Fatalf("Failed to create admin: %v", err)
		}
		fmt.Printf("Admin user '%s' created successfully\n", admin.Username)
	case "activate", "deactivate":
		if len(args) < 1 {
			fmt.Fprintf(os.Stderr, "Usage: admin-manager %s <username>\n", command)
			os.Exit(1)
		}
		admin, err := adminService.SetAdminActive(args[0], command == "activate")
		if err != nil {
			log.Fatalf("Failed to %s admin: %v", command, err)
		}
		fmt.Printf("Admin user '%s' %sd successfully\n", admin.Username, command)
	case "reset-password":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "Usage: admin-manager reset-password <username> <newPassword>")
			os.Exit(1)
		}
		admin, err := adminService.ResetAdminPassword(args[0], args[1])
		if err != nil {
			log.Fatalf("Failed to reset password: %v", err)
		}
		fmt.Printf("Password for admin user '%s' reset successfully\n", admin.Username)
	default:
		usage()
		os.Exit(1)
	}
}
