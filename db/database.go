package db

import (
	"database/sql"
	"fmt"
	"log"

	"WaveFM/config"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

// DB is the restricted-tier pool used for reads, chat and the play counter.
var DB *sql.DB

// AdminDB is the privileged pool. It bypasses the row-level restrictions the
// public tier is subject to; only the song metadata insert goes through it.
var AdminDB *sql.DB

// ConnectDB establishes both database connections.
func ConnectDB(cfg *config.Config) error {
	var err error
	DB, err = openPool(cfg.DBUser, cfg.DBPassword, cfg)
	if err != nil {
		return fmt.Errorf("public tier: %w", err)
	}

	AdminDB, err = openPool(cfg.DBAdminUser, cfg.DBAdminPassword, cfg)
	if err != nil {
		DB.Close()
		return fmt.Errorf("admin tier: %w", err)
	}

	log.Println("Successfully connected to the database (public and admin tiers).")
	return nil
}

func openPool(user, password string, cfg *config.Config) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		user, password, cfg.DBHost, cfg.DBPort, cfg.DBName)

	pool, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err = pool.Ping(); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// CloseDB closes both pools.
func CloseDB() {
	if DB != nil {
		DB.Close()
	}
	if AdminDB != nil {
		AdminDB.Close()
	}
}

// InitDB initializes the database schema, creating tables if they don't exist.
// Runs on the admin tier; the public tier has no DDL rights.
func InitDB() error {
	if err := createSongsTable(); err != nil {
		return err
	}
	log.Println("Database initialization completed.")
	return nil
}

func createSongsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS songs (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		artist VARCHAR(255) NOT NULL DEFAULT 'Unknown Artist',
		file_url VARCHAR(767) NOT NULL,
		thumbnail_url VARCHAR(767),
		play_count BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMP(6) DEFAULT CURRENT_TIMESTAMP(6)
	);
	`
	_, err := AdminDB.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create songs table: %w", err)
	}
	log.Println("Songs table initialized successfully (or already exists).")
	return nil
}
