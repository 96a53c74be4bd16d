package database

import (
	"context"
	"drake-homes/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (gdb *GormDB) ListPlans(ctx context.Context, activeOnly bool) ([]models.Plan, error) {
	var plans []models.Plan
	q := gdb.db.WithContext(ctx).Preload("Features", bySortOrder).Preload("Images", bySortOrder)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Order("price ASC, id ASC").Find(&plans).Error
	return plans, err
}

func (gdb *GormDB) GetPlan(ctx context.Context, id uint) (*models.Plan, error) {
	var plan models.Plan
	err := gdb.db.WithContext(ctx).
		Preload("Features", bySortOrder).
		Preload("Images", bySortOrder).
		Preload("Documents", bySortOrder).
		First(&plan, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &plan, nil
}

func (gdb *GormDB) CreatePlan(ctx context.Context, plan *models.Plan) error {
	return gdb.db.WithContext(ctx).Create(plan).Error
}

func (gdb *GormDB) UpdatePlan(ctx context.Context, plan *models.Plan) error {
	return gdb.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &models.Plan{}, plan.ID); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Save(plan).Error
	})
}

func (gdb *GormDB) DeletePlan(ctx context.Context, id uint) error {
	return gdb.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, child := range []interface{}{&models.PlanFeature{}, &models.PlanImage{}, &models.PlanDocument{}} {
			if err := tx.Where("plan_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		return deleteByID(tx, &models.Plan{}, id)
	})
}

func (gdb *GormDB) AddPlanFeature(ctx context.Context, f *models.PlanFeature) error {
	return gdb.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &models.Plan{}, f.PlanID); err != nil {
			return err
		}
		return tx.Create(f).Error
	})
}

func (gdb *GormDB) DeletePlanFeature(ctx context.Context, planID, featureID uint) error {
	return deleteChild(gdb.db.WithContext(ctx), &models.PlanFeature{}, "plan_id", planID, featureID)
}

func (gdb *GormDB) AddPlanImage(ctx context.Context, img *models.PlanImage) error {
	return gdb.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &models.Plan{}, img.PlanID); err != nil {
			return err
		}
		return tx.Create(img).Error
	})
}

func (gdb *GormDB) DeletePlanImage(ctx context.Context, planID, imageID uint) error {
	return deleteChild(gdb.db.WithContext(ctx), &models.PlanImage{}, "plan_id", planID, imageID)
}

func (gdb *GormDB) AddPlanDocument(ctx context.Context, doc *models.PlanDocument) error {
	return gdb.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &models.Plan{}, doc.PlanID); err != nil {
			return err
		}
		return tx.Create(doc).Error
	})
}

func (gdb *GormDB) DeletePlanDocument(ctx context.Context, planID, docID uint) error {
	return deleteChild(gdb.db.WithContext(ctx), &models.PlanDocument{}, "plan_id", planID, docID)
}
