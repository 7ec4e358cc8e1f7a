package db

import (
	"database/sql"
	"fmt"
	"log"

	"Blockbuster/config"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

var DB *sql.DB

// ConnectDB establishes a connection to the database.
func ConnectDB(cfg *config.Config) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	var err error
	DB, err = sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	if err = DB.Ping(); err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Successfully connected to the database.")
	return nil
}

// InitDB initializes the database schema, creating tables if they don't exist.
func InitDB() error {
	if err := createUsersTable(); err != nil {
		return err
	}
	if err := createEntriesTable(); err != nil {
		return err
	}
	log.Println("Database initialization completed.")
	return nil
}

func createUsersTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id INT AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(100) NOT NULL UNIQUE,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	);
	`
	if _, err := DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}
	return nil
}

func createEntriesTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS entries (
		id CHAR(36) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		channel_id VARCHAR(32) NOT NULL,
		content_id VARCHAR(255) NOT NULL,
		media_type VARCHAR(32),
		title VARCHAR(255),
		metadata JSON,
		cover_art_path VARCHAR(767),
		state TINYINT NOT NULL DEFAULT 1,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	);
	`
	if _, err := DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create entries table: %w", err)
	}
	return nil
}
