package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"punch/internal/model"
)

type WaitlistRepository struct {
	db *gorm.DB
}

func NewWaitlistRepository(db *gorm.DB) *WaitlistRepository {
	return &WaitlistRepository{db: db}
}

func (r *WaitlistRepository) GetByEmail(ctx context.Context, email string) (*model.WaitlistEntry, error) {
	var entry model.WaitlistEntry
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query waitlist entry failed: %w", err)
	}
	return &entry, nil
}

func (r *WaitlistRepository) Create(ctx context.Context, entry *model.WaitlistEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return fmt.Errorf("create waitlist entry failed: %w", err)
	}
	return nil
}
