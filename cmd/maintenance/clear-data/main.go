package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mkheight/hostel-backend/internal/config"
	"github.com/mkheight/hostel-backend/internal/database"
)

func main() {
	var (
		dbURLFlag string
		driver    string
		yes       bool
	)
	flag.StringVar(&dbURLFlag, "database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	flag.StringVar(&driver, "driver", "", "database driver: postgres or pgx (overrides DATABASE_DRIVER)")
	flag.BoolVar(&yes, "yes", false, "skip the confirmation prompt")
	flag.Parse()

	// Try loading .env from current working directory (optional)
	_ = godotenv.Load()

	dbURL := dbURLFlag
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set and -database-url was not provided")
	}
	if driver == "" {
		driver = os.Getenv("DATABASE_DRIVER")
	}

	// Build minimal database config without loading full app config
	dbCfg := config.DatabaseConfig{
		URL:                dbURL,
		Driver:             driver,
		MaxConnections:     5,
		MaxIdleConnections: 2,
	}

	if !yes && !confirm(fmt.Sprintf("This deletes ALL data in %s. Type 'yes' to continue: ", strings.Join(database.HostelTables, ", "))) {
		fmt.Println("Aborted.")
		return
	}

	db, err := database.NewConnection(dbCfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	fmt.Println("Connected to database. Truncating tables...")

	truncateSQL := fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(database.HostelTables, ", "))
	if _, err := db.Exec(truncateSQL); err != nil {
		log.Fatalf("failed to truncate tables: %v", err)
	}

	fmt.Println("All data cleared successfully (tables truncated, identities reset).")

	// Verify by printing row counts for each table
	fmt.Println("Post-clear row counts:")
	for _, t := range database.HostelTables {
		var count int
		if err := db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", t)).Scan(&count); err != nil {
			fmt.Printf("  %s: error: %v\n", t, err)
			continue
		}
		fmt.Printf("  %s: %d\n", t, count)
	}
}

func confirm(prompt string) bool {
	fmt.Print(prompt)
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(strings.ToLower(answer)) == "yes"
}
