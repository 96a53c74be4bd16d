package database

import (
	"context"
	"drake-homes/internal/models"
	"strings"
)

// SelectionBookFilter narrows ListSelectionBooks
type SelectionBookFilter struct {
	Status string
	Search string // customer name or email, case-insensitive
}

func (gdb *GormDB) ListSelectionBooks(ctx context.Context, f SelectionBookFilter) ([]models.SelectionBook, error) {
	q := gdb.db.WithContext(ctx)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(customer_name) LIKE ? OR LOWER(customer_email) LIKE ?", like, like)
	}
	var books []models.SelectionBook
	err := q.Order("updated_at DESC").Find(&books).Error
	return books, err
}

func (gdb *GormDB) GetSelectionBook(ctx context.Context, id uint) (*models.SelectionBook, error) {
	var book models.SelectionBook
	if err := gdb.db.WithContext(ctx).First(&book, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &book, nil
}

func (gdb *GormDB) CreateSelectionBook(ctx context.Context, book *models.SelectionBook) error {
	if book.Status == "" {
		book.Status = models.SelectionBookStatusDraft
	}
	return gdb.db.WithContext(ctx).Create(book).Error
}

func (gdb *GormDB) UpdateSelectionBook(ctx context.Context, book *models.SelectionBook) error {
	if err := exists(gdb.db.WithContext(ctx), &models.SelectionBook{}, book.ID); err != nil {
		return err
	}
	return gdb.db.WithContext(ctx).Save(book).Error
}

func (gdb *GormDB) DeleteSelectionBook(ctx context.Context, id uint) error {
	return deleteByID(gdb.db.WithContext(ctx), &models.SelectionBook{}, id)
}
