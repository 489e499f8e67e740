package models

import (
	"log"

	"bitbucket.org/mmdatafocus/tally_bridge/config"
)

func MigrateTable() {
	db := config.GetDB()
	if db == nil {
		log.Println("skipping migration: db is nil")
		return
	}
	err := db.AutoMigrate(
		&User{},
		&TallyConnection{},
		&TallySyncRun{},
		&TallySyncError{},
		&TallyCompany{},
		&TallyLedger{},
		&TallyVoucher{},
		&TallyStockItem{},
		&TallyGroup{},
		&TallyCostCentre{},
		&TallyCurrency{},
	)
	if err != nil {
		log.Printf("auto migrate failed: %v", err)
	}
}
