package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"

	"github.com/osse101/EcoRewards_Go/internal/config"
	"github.com/osse101/EcoRewards_Go/internal/database"
	"github.com/osse101/EcoRewards_Go/migrations"
)

func main() {
	create := flag.Bool("create", false, "create the database if it does not exist")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: migrate [-create] up|down|status\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	direction := database.MigrateUp
	if flag.NArg() > 0 {
		direction = flag.Arg(0)
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &config.Config{
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBName:     getEnv("DB_NAME", "ecorewards"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if *create {
		if err := ensureDatabase(ctx, cfg); err != nil {
			log.Fatalf("Failed to create database: %v", err)
		}
	}

	pool, err := database.NewPool(cfg.GetDBConnString(), 2, time.Minute, 10*time.Minute)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, migrations.FS, direction); err != nil {
		log.Fatalf("Migration %s failed: %v", direction, err)
	}
	log.Printf("Migration %s complete for database %s\n", direction, cfg.DBName)
}

// ensureDatabase connects to the server's maintenance database and creates cfg.DBName when missing
func ensureDatabase(ctx context.Context, cfg *config.Config) error {
	serverCfg := *cfg
	serverCfg.DBName = "postgres"

	conn, err := pgx.Connect(ctx, serverCfg.GetDBConnString())
	if err != nil {
		return fmt.Errorf("unable to connect to postgres database: %w", err)
	}
	defer conn.Close(ctx)

	var exists bool
	err = conn.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", cfg.DBName).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check if database exists: %w", err)
	}
	if exists {
		log.Printf("Database %s already exists.\n", cfg.DBName)
		return nil
	}

	log.Printf("Creating database %s...\n", cfg.DBName)
	if _, err := conn.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{cfg.DBName}.Sanitize()); err != nil {
		return err
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
