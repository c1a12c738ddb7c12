package config

import (
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	model "fairwork.com/fairwork/internal/models"
)

func New(dsn string) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	if err := db.AutoMigrate(
		&model.Requester{},
		&model.TaskGroup{},
		&model.Task{},
		&model.Worker{},
		&model.Submission{},
		&model.DurationReport{},
		&model.Audit{},
		&model.Freeze{},
	); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	return db
}
