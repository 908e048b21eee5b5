package models

import (
	"log"

	"github.com/quotelane/cpq_backend/config"
)

func MigrateTable() {
	db := config.GetDB()
	err := db.AutoMigrate(
		&ProductTemplate{},
		&OptionGroup{},
		&Option{},
		&ConfigurationRule{},
		&TemplatePreset{},
		&Configuration{},
	)
	if err != nil {
		log.Fatalf("auto migration failed: %v", err)
	}
	log.Println("auto migration completed")
}
