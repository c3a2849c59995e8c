package models

import (
	"fmt"
	"strings"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DatabaseOptions Connection settings for the record store
type DatabaseOptions struct {
	Driver          string // sqlite or mysql
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
}

// ConnectDataBase Open the database described by opts and configure its connection pool
func ConnectDataBase(opts DatabaseOptions) (*gorm.DB, error) {
	dialector, err := dialectorFor(opts)
	if err != nil {
		return nil, err
	}

	logLevel := opts.LogLevel
	if logLevel == 0 {
		logLevel = logger.Warn
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(log.StandardLogger(), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
		}),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("cannot connect %s database: %w", opts.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("cannot access connection pool: %w", err)
	}
	maxOpen := opts.MaxOpenConns
	if opts.Driver == "sqlite" {
		// SQLite allows a single writer, so writers queue in the pool instead of failing with SQLITE_BUSY.
		maxOpen = 1
	}
	if maxOpen > 0 {
		sqlDB.SetMaxOpenConns(maxOpen)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	log.WithFields(log.Fields{"driver": opts.Driver}).Info("Connected to database")
	return db, nil
}

// AutoMigrate Create or update the image_pairs table
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&ImagePair{}); err != nil {
		return fmt.Errorf("migrate image_pairs: %w", err)
	}
	log.Info("Database initialized successfully")
	return nil
}

func dialectorFor(opts DatabaseOptions) (gorm.Dialector, error) {
	switch opts.Driver {
	case "sqlite":
		return sqlite.Open(sqliteDSN(opts.DSN)), nil
	case "mysql":
		dsn, err := mysqlDSN(opts.DSN)
		if err != nil {
			return nil, err
		}
		return mysql.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", opts.Driver)
	}
}

// sqliteDSN Add a busy timeout unless the DSN already sets one
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_busy_timeout") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_busy_timeout=5000"
}

// mysqlDSN Force time parsing in UTC so upload_date scans into time.Time
func mysqlDSN(dsn string) (string, error) {
	cfg, err := mysqldriver.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}
