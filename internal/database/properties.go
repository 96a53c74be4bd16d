package database

import (
	"context"
	"drake-homes/internal/models"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListProperties returns every property with its images, newest first
func (gdb *GormDB) ListProperties(ctx context.Context) ([]models.Property, error) {
	var properties []models.Property
	err := gdb.db.WithContext(ctx).
		Preload("Images", bySortOrder).
		Order("created_at DESC").
		Find(&properties).Error
	return properties, err
}

// GetProperty retrieves a property by ID
func (gdb *GormDB) GetProperty(ctx context.Context, id uint) (*models.Property, error) {
	var property models.Property
	err := gdb.db.WithContext(ctx).Preload("Images", bySortOrder).First(&property, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &property, nil
}

// CreateProperty inserts a property together with any images it carries.
// The first image becomes main when none is flagged.
func (gdb *GormDB) CreateProperty(ctx context.Context, p *models.Property) error {
	if len(p.Images) > 0 && p.MainImage() == nil {
		p.Images[0].IsMain = true
	}
	return gdb.db.WithContext(ctx).Create(p).Error
}

// UpdateProperty saves scalar fields and records detected changes in one transaction
func (gdb *GormDB) UpdateProperty(ctx context.Context, p *models.Property, changes []models.PropertyChange) error {
	return gdb.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &models.Property{}, p.ID); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(p).Error; err != nil {
			return fmt.Errorf("failed to save property %d: %w", p.ID, err)
		}
		if len(changes) > 0 {
			if err := tx.Create(&changes).Error; err != nil {
				return fmt.Errorf("failed to record changes for property %d: %w", p.ID, err)
			}
		}
		return nil
	})
}

// UpdatePropertyFields applies a partial update, used by bulk actions
func (gdb *GormDB) UpdatePropertyFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	result := gdb.db.WithContext(ctx).Model(&models.Property{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return exists(gdb.db.WithContext(ctx), &models.Property{}, id)
	}
	return nil
}

// DeleteProperty removes a property, its images and its change history
func (gdb *GormDB) DeleteProperty(ctx context.Context, id uint) error {
	return gdb.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("property_id = ?", id).Delete(&models.PropertyImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("property_id = ?", id).Delete(&models.PropertyChange{}).Error; err != nil {
			return err
		}
		return deleteByID(tx, &models.Property{}, id)
	})
}

// CountPropertyImages returns how many images a property already has
func (gdb *GormDB) CountPropertyImages(ctx context.Context, propertyID uint) (int, error) {
	var count int64
	err := gdb.db.WithContext(ctx).Model(&models.PropertyImage{}).
		Where("property_id = ?", propertyID).
		Count(&count).Error
	return int(count), err
}

// AddPropertyImage appends an image. A main image clears the flag on its
// siblings; the first image of a property is always main.
func (gdb *GormDB) AddPropertyImage(ctx context.Context, img *models.PropertyImage) error {
	return gdb.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &models.Property{}, img.PropertyID); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.PropertyImage{}).Where("property_id = ?", img.PropertyID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			img.IsMain = true
		}
		if img.SortOrder == 0 {
			img.SortOrder = int(count)
		}

		if img.IsMain {
			if err := clearMainImage(tx, img.PropertyID); err != nil {
				return err
			}
		}
		return tx.Create(img).Error
	})
}

// SetMainPropertyImage makes imageID the only main image of the property
func (gdb *GormDB) SetMainPropertyImage(ctx context.Context, propertyID, imageID uint) error {
	return gdb.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var img models.PropertyImage
		if err := tx.Where("property_id = ?", propertyID).First(&img, imageID).Error; err != nil {
			return notFound(err)
		}
		if err := clearMainImage(tx, propertyID); err != nil {
			return err
		}
		return tx.Model(&img).Update("is_main", true).Error
	})
}

// DeletePropertyImage removes one image. Removing the main image leaves the
// property without one until another is chosen.
func (gdb *GormDB) DeletePropertyImage(ctx context.Context, propertyID, imageID uint) error {
	return deleteChild(gdb.db.WithContext(ctx), &models.PropertyImage{}, "property_id", propertyID, imageID)
}

func clearMainImage(tx *gorm.DB, propertyID uint) error {
	return tx.Model(&models.PropertyImage{}).
		Where("property_id = ? AND is_main = ?", propertyID, true).
		Update("is_main", false).Error
}
