package database

import (
	"drake-homes/internal/config"
	"drake-homes/internal/models"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when a lookup by id matches no row
var ErrNotFound = errors.New("record not found")

type GormDB struct {
	db *gorm.DB
}

// Open connects to the database described by cfg. Values left empty in the
// config fall back to DB_* environment variables.
func Open(cfg config.DatabaseConfig, logLevel string) (*GormDB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(parseLogLevel(logLevel)),
		NowFunc: func() time.Time {
			return time.Now().Local()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Type, err)
	}

	// Test connection
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping %s database: %w", cfg.Type, err)
	}

	return &GormDB{db: db}, nil
}

func dialectorFor(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Type {
	case "", "sqlite":
		path := config.GetEnvOrConfig(cfg.SQLite.Path, "DB_PATH", "data/drake.db")
		if dir := filepath.Dir(path); dir != "." && !strings.HasPrefix(path, "file:") {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		return sqlite.Open(path), nil

	case "mysql":
		c := cfg.MySQL
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			config.GetEnvOrConfig(c.User, "DB_USER", "drake"),
			config.GetEnvOrConfig(c.Password, "DB_PASSWORD", "drake"),
			config.GetEnvOrConfig(c.Host, "DB_HOST", "mysql"),
			config.GetEnvOrConfig(portString(c.Port), "DB_PORT", "3306"),
			config.GetEnvOrConfig(c.Database, "DB_NAME", "drake_homes"),
		)
		return mysql.Open(dsn), nil

	case "postgres":
		c := cfg.Postgres
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			config.GetEnvOrConfig(c.Host, "DB_HOST", "db"),
			config.GetEnvOrConfig(portString(c.Port), "DB_PORT", "5432"),
			config.GetEnvOrConfig(c.User, "DB_USER", "drake"),
			config.GetEnvOrConfig(c.Password, "DB_PASSWORD", "drake"),
			config.GetEnvOrConfig(c.Database, "DB_NAME", "drake_homes"),
			config.GetEnvOrConfig(c.SSLMode, "DB_SSLMODE", "disable"),
		)
		// lib/pq registers the "postgres" driver name
		return postgres.New(postgres.Config{DriverName: "postgres", DSN: dsn}), nil
	}
	return nil, fmt.Errorf("unsupported database type %q", cfg.Type)
}

func portString(port int) string {
	if port <= 0 {
		return ""
	}
	return fmt.Sprintf("%d", port)
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// NewGormDBFromDB creates a GormDB wrapper from an existing gorm.DB instance
func NewGormDBFromDB(db *gorm.DB) *GormDB {
	return &GormDB{db: db}
}

// DB returns the underlying gorm.DB instance
func (gdb *GormDB) DB() *gorm.DB {
	return gdb.db
}

func (gdb *GormDB) Close() error {
	sqlDB, err := gdb.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InitSchema creates tables using GORM AutoMigrate
func (gdb *GormDB) InitSchema() error {
	return gdb.db.AutoMigrate(
		&models.Property{},
		&models.PropertyImage{},
		&models.PropertyChange{},
		&models.Plan{},
		&models.PlanFeature{},
		&models.PlanImage{},
		&models.PlanDocument{},
		&models.Lot{},
		&models.LotFeature{},
		&models.LotImage{},
		&models.Gallery{},
		&models.GalleryImage{},
		&models.CustomizationCategory{},
		&models.CustomizationOption{},
		&models.Configuration{},
		&models.SelectionBook{},
		&models.Testimonial{},
		&models.DeleteLog{},
		&models.SearchIndexJob{},
	)
}

// notFound maps gorm's sentinel onto ErrNotFound
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// deleteByID removes one row of model and reports ErrNotFound when nothing matched
func deleteByID(tx *gorm.DB, model interface{}, id uint) error {
	result := tx.Delete(model, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// deleteChild removes a child row only when it belongs to parentID
func deleteChild(tx *gorm.DB, model interface{}, parentColumn string, parentID, id uint) error {
	result := tx.Where(parentColumn+" = ?", parentID).Delete(model, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// exists reports ErrNotFound when no row of model has the given id
func exists(tx *gorm.DB, model interface{}, id uint) error {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

func bySortOrder(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC, id ASC")
}
