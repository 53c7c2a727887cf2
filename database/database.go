package database

import (
	"context"
	"fmt"

	"coursemaster/config"
	"coursemaster/logger"
	"coursemaster/store"
	"coursemaster/store/gormstore"
	"coursemaster/store/mongostore"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect opens the Record Store selected by cfg.DBDriver.
func Connect(ctx context.Context, cfg *config.Config, log *logger.Logger) (store.Store, error) {
	if cfg.DBDriver == "mongo" {
		st, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		log.Info("Connected Successfully to MongoDB", "db", cfg.MongoDB)
		return st, nil
	}

	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	gormCfg := &gorm.Config{TranslateError: true}
	if cfg.LogMode == "dev" {
		gormCfg.Logger = gormlogger.Default.LogMode(gormlogger.Info)
	} else {
		gormCfg.Logger = gormlogger.Default.LogMode(gormlogger.Warn)
	}

	// Open database connection
	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.DBDriver, err)
	}

	// Set up connection pooling
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	if cfg.DBDriver == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(5)
	}
	sqlDB.SetConnMaxLifetime(0) // No timeout

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping %s: %w", cfg.DBDriver, err)
	}
	log.Info("Connected Successfully to database", "driver", cfg.DBDriver)

	if err := runMigrations(db, log); err != nil {
		return nil, err
	}
	return gormstore.New(db), nil
}

func dialectorFor(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case "postgres", "":
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
		)
		return postgres.Open(dsn), nil
	case "mysql":
		dsn := fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName,
		)
		return mysql.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(cfg.SQLitePath), nil
	}
	return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
}

// runMigrations performs database migrations
func runMigrations(db *gorm.DB, log *logger.Logger) error {
	log.Info("Running Migrations...")
	if err := gormstore.AutoMigrate(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	log.Info("Migrations completed successfully.")
	return nil
}
