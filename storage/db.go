package storage

import (
	"fmt"
	"strings"

	"github.com/hidenkeys/frontdesk/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the snapshot database and migrates its tables. driver is
// "sqlite" (dsn is a file path or ":memory:") or "mysql".
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(driver) {
	case "", "sqlite":
		dialector = sqlite.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	log := config.GetLogger()
	if err := db.Use(otelgorm.NewPlugin()); err != nil {
		log.WithField("module", "storage").Warn("db connected but failed to install otelgorm plugin: " + err.Error())
	}
	if err := db.AutoMigrate(&ReservationSnapshot{}, &ProfileSnapshot{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.WithField("module", "storage").WithField("driver", driver).Info("connected to db")
	return db, nil
}
