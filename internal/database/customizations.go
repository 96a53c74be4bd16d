package database

import (
	"context"
	"drake-homes/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListCustomizationCategories returns categories with their options in display order
func (gdb *GormDB) ListCustomizationCategories(ctx context.Context, activeOnly bool) ([]models.CustomizationCategory, error) {
	q := gdb.db.WithContext(ctx)
	if activeOnly {
		q = q.Where("is_active = ?", true).Preload("Options", func(db *gorm.DB) *gorm.DB {
			return bySortOrder(db.Where("is_active = ?", true))
		})
	} else {
		q = q.Preload("Options", bySortOrder)
	}

	var categories []models.CustomizationCategory
	err := bySortOrder(q).Find(&categories).Error
	return categories, err
}

func (gdb *GormDB) GetCustomizationCategory(ctx context.Context, id uint) (*models.CustomizationCategory, error) {
	var category models.CustomizationCategory
	if err := gdb.db.WithContext(ctx).Preload("Options", bySortOrder).First(&category, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &category, nil
}

func (gdb *GormDB) CreateCustomizationCategory(ctx context.Context, c *models.CustomizationCategory) error {
	return gdb.db.WithContext(ctx).Create(c).Error
}

func (gdb *GormDB) UpdateCustomizationCategory(ctx context.Context, c *models.CustomizationCategory) error {
	return gdb.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &models.CustomizationCategory{}, c.ID); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Save(c).Error
	})
}

func (gdb *GormDB) DeleteCustomizationCategory(ctx context.Context, id uint) error {
	return gdb.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", id).Delete(&models.CustomizationOption{}).Error; err != nil {
			return err
		}
		return deleteByID(tx, &models.CustomizationCategory{}, id)
	})
}

// ListCustomizationOptions returns options, optionally restricted to one category
func (gdb *GormDB) ListCustomizationOptions(ctx context.Context, categoryID *uint) ([]models.CustomizationOption, error) {
	q := gdb.db.WithContext(ctx)
	if categoryID != nil {
		q = q.Where("category_id = ?", *categoryID)
	}
	var options []models.CustomizationOption
	err := bySortOrder(q).Find(&options).Error
	return options, err
}

func (gdb *GormDB) GetCustomizationOption(ctx context.Context, id uint) (*models.CustomizationOption, error) {
	var opt models.CustomizationOption
	if err := gdb.db.WithContext(ctx).First(&opt, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &opt, nil
}

// FindCustomizationOptions loads the options with the given ids. Every id
// must exist.
func (gdb *GormDB) FindCustomizationOptions(ctx context.Context, ids []uint) ([]models.CustomizationOption, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var options []models.CustomizationOption
	if err := gdb.db.WithContext(ctx).Where("id IN ?", ids).Find(&options).Error; err != nil {
		return nil, err
	}
	if len(options) != len(uniqueIDs(ids)) {
		return nil, ErrNotFound
	}
	return options, nil
}

func (gdb *GormDB) CreateCustomizationOption(ctx context.Context, opt *models.CustomizationOption) error {
	return gdb.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &models.CustomizationCategory{}, opt.CategoryID); err != nil {
			return err
		}
		return tx.Create(opt).Error
	})
}

func (gdb *GormDB) UpdateCustomizationOption(ctx context.Context, opt *models.CustomizationOption) error {
	return gdb.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &models.CustomizationOption{}, opt.ID); err != nil {
			return err
		}
		return tx.Save(opt).Error
	})
}

func (gdb *GormDB) DeleteCustomizationOption(ctx context.Context, id uint) error {
	return deleteByID(gdb.db.WithContext(ctx), &models.CustomizationOption{}, id)
}

func uniqueIDs(ids []uint) map[uint]struct{} {
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
