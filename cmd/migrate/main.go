package main

import (
	"log"

	"hue-chat/config"
	"hue-chat/internal/domain/friend"
	"hue-chat/internal/domain/message"
	"hue-chat/internal/domain/user"
	"hue-chat/pkg/database"
)

func main() {
	cfg := config.LoadConfig()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Running migrations...")
	if err := db.AutoMigrate(
		&user.User{},
		&user.Session{},
		&friend.Request{},
		&friend.Friendship{},
		&message.Message{},
		&message.Reaction{},
	); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migrations completed")
}
