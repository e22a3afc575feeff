package cmd

import (
	"context"
	"log"

	"WaveFM/config"
	"WaveFM/db"
	"WaveFM/model"
	"WaveFM/repository"

	"github.com/spf13/cobra"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Initialize the database schema",
	Long:  `Connects to MySQL and creates or migrates the songs and chat_messages tables without starting the server.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()

		if err := db.ConnectDB(cfg); err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.CloseDB()

		if err := db.ConnectGormDB(cfg); err != nil {
			log.Fatalf("Failed to connect to database with GORM: %v", err)
		}
		defer db.CloseGormDB()

		if err := db.InitDB(); err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		if err := db.AutoMigrateModels(&model.ChatMessage{}); err != nil {
			log.Fatalf("Failed to migrate chat schema: %v", err)
		}

		log.Println("Database schema is up to date.")

		// Retention health: the prune on every post should keep this at or
		// below the configured history limit.
		chatRepo := repository.NewGormChatRepository(db.GormDB)
		count, err := chatRepo.CountMessages(context.Background())
		if err != nil {
			log.Printf("Failed to count chat messages: %v", err)
			return
		}
		log.Printf("chat_messages rows: %d (retention limit %d)", count, cfg.ChatHistoryLimit)
	},
}

func init() {
	rootCmd.AddCommand(dbCmd)
}
