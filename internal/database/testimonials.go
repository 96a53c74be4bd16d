package database

import (
	"context"
	"drake-homes/internal/models"
)

// TestimonialFilter narrows ListTestimonials; nil fields are ignored
type TestimonialFilter struct {
	Active   *bool
	Featured *bool
}

func (gdb *GormDB) ListTestimonials(ctx context.Context, f TestimonialFilter) ([]models.Testimonial, error) {
	q := gdb.db.WithContext(ctx)
	if f.Active != nil {
		q = q.Where("is_active = ?", *f.Active)
	}
	if f.Featured != nil {
		q = q.Where("is_featured = ?", *f.Featured)
	}
	var testimonials []models.Testimonial
	err := q.Order("created_at DESC").Find(&testimonials).Error
	return testimonials, err
}

func (gdb *GormDB) GetTestimonial(ctx context.Context, id uint) (*models.Testimonial, error) {
	var t models.Testimonial
	if err := gdb.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (gdb *GormDB) CreateTestimonial(ctx context.Context, t *models.Testimonial) error {
	return gdb.db.WithContext(ctx).Create(t).Error
}

func (gdb *GormDB) UpdateTestimonial(ctx context.Context, t *models.Testimonial) error {
	if err := exists(gdb.db.WithContext(ctx), &models.Testimonial{}, t.ID); err != nil {
		return err
	}
	return gdb.db.WithContext(ctx).Save(t).Error
}

func (gdb *GormDB) DeleteTestimonial(ctx context.Context, id uint) error {
	return deleteByID(gdb.db.WithContext(ctx), &models.Testimonial{}, id)
}
