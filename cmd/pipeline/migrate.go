package main

import (
	"fmt"

	"github.com/moses-ayandau/image-sharing-microservice-sub000/internal/utils"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/database"
)

const (
	docMigrate = `Apply database migrations (postgres driver only)`
)

type optsMigrate struct {
	optsGeneral
	optsDatabase
}

func (c *optsMigrate) Execute(args []string) error {
	log := utils.NewLogger(c.Debug)
	if c.DatabaseDriver != database.DriverPostgres {
		return fmt.Errorf("migrations are only run against postgres, not %s", c.DatabaseDriver)
	}
	err := database.Migrate(&database.Options{Driver: c.DatabaseDriver, URL: c.DatabaseURL})
	if err != nil {
		return err
	}
	log.Info("database up to date")
	return nil
}
