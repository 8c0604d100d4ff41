package db

import (
	"log"

	"github.com/virelio/ai-workspace/internal/models"
	"github.com/virelio/ai-workspace/internal/workspace"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func Connect(dsn string) *gorm.DB {
	gdb, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	if err := gdb.AutoMigrate(&models.User{}, &workspace.Job{}); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	return gdb
}
