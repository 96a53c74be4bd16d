package database

import (
	"context"
	"drake-homes/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GalleryImageFilter narrows ListGalleryImages; nil fields are ignored
type GalleryImageFilter struct {
	GalleryID *uint
	Featured  *bool
	Category  string
}

func (gdb *GormDB) ListGalleries(ctx context.Context) ([]models.Gallery, error) {
	var galleries []models.Gallery
	err := bySortOrder(gdb.db.WithContext(ctx).Preload("Images", bySortOrder)).Find(&galleries).Error
	return galleries, err
}

func (gdb *GormDB) GetGallery(ctx context.Context, id uint) (*models.Gallery, error) {
	var gallery models.Gallery
	if err := gdb.db.WithContext(ctx).Preload("Images", bySortOrder).First(&gallery, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &gallery, nil
}

func (gdb *GormDB) CreateGallery(ctx context.Context, g *models.Gallery) error {
	return gdb.db.WithContext(ctx).Create(g).Error
}

func (gdb *GormDB) UpdateGallery(ctx context.Context, g *models.Gallery) error {
	return gdb.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &models.Gallery{}, g.ID); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Save(g).Error
	})
}

func (gdb *GormDB) DeleteGallery(ctx context.Context, id uint) error {
	return gdb.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("gallery_id = ?", id).Delete(&models.GalleryImage{}).Error; err != nil {
			return err
		}
		return deleteByID(tx, &models.Gallery{}, id)
	})
}

func (gdb *GormDB) ListGalleryImages(ctx context.Context, f GalleryImageFilter) ([]models.GalleryImage, error) {
	q := gdb.db.WithContext(ctx)
	if f.GalleryID != nil {
		q = q.Where("gallery_id = ?", *f.GalleryID)
	}
	if f.Featured != nil {
		q = q.Where("is_featured = ?", *f.Featured)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}

	var images []models.GalleryImage
	err := bySortOrder(q).Find(&images).Error
	return images, err
}

func (gdb *GormDB) GetGalleryImage(ctx context.Context, id uint) (*models.GalleryImage, error) {
	var img models.GalleryImage
	if err := gdb.db.WithContext(ctx).First(&img, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &img, nil
}

func (gdb *GormDB) CreateGalleryImage(ctx context.Context, img *models.GalleryImage) error {
	return gdb.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &models.Gallery{}, img.GalleryID); err != nil {
			return err
		}
		return tx.Create(img).Error
	})
}

func (gdb *GormDB) UpdateGalleryImage(ctx context.Context, img *models.GalleryImage) error {
	return gdb.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &models.GalleryImage{}, img.ID); err != nil {
			return err
		}
		return tx.Save(img).Error
	})
}

func (gdb *GormDB) DeleteGalleryImage(ctx context.Context, id uint) error {
	return deleteByID(gdb.db.WithContext(ctx), &models.GalleryImage{}, id)
}
