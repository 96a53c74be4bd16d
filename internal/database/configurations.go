package database

import (
	"context"
	"drake-homes/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (gdb *GormDB) ListConfigurations(ctx context.Context, status string) ([]models.Configuration, error) {
	q := gdb.db.WithContext(ctx).Preload("Options")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var configs []models.Configuration
	err := q.Order("created_at DESC").Find(&configs).Error
	return configs, err
}

func (gdb *GormDB) GetConfiguration(ctx context.Context, id uint) (*models.Configuration, error) {
	var cfg models.Configuration
	err := gdb.db.WithContext(ctx).Preload("Options").Preload("Plan").First(&cfg, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &cfg, nil
}

// CreateConfiguration inserts the configuration and links its options
func (gdb *GormDB) CreateConfiguration(ctx context.Context, cfg *models.Configuration) error {
	return gdb.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &models.Plan{}, cfg.PlanID); err != nil {
			return err
		}
		options := cfg.Options
		if err := tx.Omit(clause.Associations).Create(cfg).Error; err != nil {
			return err
		}
		cfg.Options = options
		if len(options) == 0 {
			return nil
		}
		return tx.Model(cfg).Association("Options").Replace(options)
	})
}

// UpdateConfiguration saves scalar fields and replaces the option links
func (gdb *GormDB) UpdateConfiguration(ctx context.Context, cfg *models.Configuration) error {
	return gdb.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &models.Configuration{}, cfg.ID); err != nil {
			return err
		}
		options := cfg.Options
		if err := tx.Omit(clause.Associations).Save(cfg).Error; err != nil {
			return err
		}
		cfg.Options = options
		return tx.Model(cfg).Association("Options").Replace(options)
	})
}

func (gdb *GormDB) DeleteConfiguration(ctx context.Context, id uint) error {
	return gdb.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cfg := models.Configuration{ID: id}
		if err := exists(tx, &models.Configuration{}, id); err != nil {
			return err
		}
		if err := tx.Model(&cfg).Association("Options").Clear(); err != nil {
			return err
		}
		return deleteByID(tx, &models.Configuration{}, id)
	})
}
