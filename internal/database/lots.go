package database

import (
	"context"
	"drake-homes/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListLots returns every lot with features and images, newest first
func (gdb *GormDB) ListLots(ctx context.Context) ([]models.Lot, error) {
	var lots []models.Lot
	err := gdb.db.WithContext(ctx).
		Preload("Features", bySortOrder).
		Preload("Images", bySortOrder).
		Order("created_at DESC").
		Find(&lots).Error
	return lots, err
}

func (gdb *GormDB) GetLot(ctx context.Context, id uint) (*models.Lot, error) {
	var lot models.Lot
	err := gdb.db.WithContext(ctx).
		Preload("Features", bySortOrder).
		Preload("Images", bySortOrder).
		First(&lot, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &lot, nil
}

func (gdb *GormDB) CreateLot(ctx context.Context, lot *models.Lot) error {
	return gdb.db.WithContext(ctx).Create(lot).Error
}

func (gdb *GormDB) UpdateLot(ctx context.Context, lot *models.Lot) error {
	return gdb.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &models.Lot{}, lot.ID); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Save(lot).Error
	})
}

// UpdateLotFields applies a partial update, used by bulk actions
func (gdb *GormDB) UpdateLotFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	result := gdb.db.WithContext(ctx).Model(&models.Lot{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return exists(gdb.db.WithContext(ctx), &models.Lot{}, id)
	}
	return nil
}

func (gdb *GormDB) DeleteLot(ctx context.Context, id uint) error {
	return gdb.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lot_id = ?", id).Delete(&models.LotFeature{}).Error; err != nil {
			return err
		}
		if err := tx.Where("lot_id = ?", id).Delete(&models.LotImage{}).Error; err != nil {
			return err
		}
		return deleteByID(tx, &models.Lot{}, id)
	})
}

func (gdb *GormDB) AddLotFeature(ctx context.Context, f *models.LotFeature) error {
	return gdb.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &models.Lot{}, f.LotID); err != nil {
			return err
		}
		return tx.Create(f).Error
	})
}

func (gdb *GormDB) DeleteLotFeature(ctx context.Context, lotID, featureID uint) error {
	return deleteChild(gdb.db.WithContext(ctx), &models.LotFeature{}, "lot_id", lotID, featureID)
}

func (gdb *GormDB) AddLotImage(ctx context.Context, img *models.LotImage) error {
	return gdb.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &models.Lot{}, img.LotID); err != nil {
			return err
		}
		return tx.Create(img).Error
	})
}

func (gdb *GormDB) DeleteLotImage(ctx context.Context, lotID, imageID uint) error {
	return deleteChild(gdb.db.WithContext(ctx), &models.LotImage{}, "lot_id", lotID, imageID)
}
