package database

import (
	"context"
	"drake-homes/internal/models"
	"time"
)

// StatusCount is one row of a GROUP BY status query
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// Stats summarises the catalogue and customer pipeline for the admin dashboard
type Stats struct {
	Properties     []StatusCount `json:"properties"`
	Lots           []StatusCount `json:"lots"`
	Configurations []StatusCount `json:"configurations"`
	SelectionBooks []StatusCount `json:"selection_books"`
	Plans          int64         `json:"plans"`
	ActivePlans    int64         `json:"active_plans"`
	Testimonials   int64         `json:"testimonials"`
	GalleryImages  int64         `json:"gallery_images"`
	ChangesLast7d  int64         `json:"changes_last_7_days"`
	DeletedLast30d int64         `json:"deleted_last_30_days"`
}

func (gdb *GormDB) Stats(ctx context.Context) (*Stats, error) {
	db := gdb.db.WithContext(ctx)
	stats := &Stats{}

	grouped := []struct {
		model interface{}
		dest  *[]StatusCount
	}{
		{&models.Property{}, &stats.Properties},
		{&models.Lot{}, &stats.Lots},
		{&models.Configuration{}, &stats.Configurations},
		{&models.SelectionBook{}, &stats.SelectionBooks},
	}
	for _, g := range grouped {
		if err := db.Model(g.model).
			Select("status, count(*) as count").
			Group("status").
			Order("status").
			Scan(g.dest).Error; err != nil {
			return nil, err
		}
	}

	counts := []struct {
		model interface{}
		where string
		args  []interface{}
		dest  *int64
	}{
		{&models.Plan{}, "", nil, &stats.Plans},
		{&models.Plan{}, "is_active = ?", []interface{}{true}, &stats.ActivePlans},
		{&models.Testimonial{}, "", nil, &stats.Testimonials},
		{&models.GalleryImage{}, "", nil, &stats.GalleryImages},
		{&models.PropertyChange{}, "detected_at >= ?", []interface{}{time.Now().AddDate(0, 0, -7)}, &stats.ChangesLast7d},
		{&models.DeleteLog{}, "deleted_at >= ?", []interface{}{time.Now().AddDate(0, 0, -30)}, &stats.DeletedLast30d},
	}
	for _, c := range counts {
		q := db.Model(c.model)
		if c.where != "" {
			q = q.Where(c.where, c.args...)
		}
		if err := q.Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	return stats, nil
}
