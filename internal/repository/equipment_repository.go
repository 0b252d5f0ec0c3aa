package repository

import (
	"context"
	"errors"
	"time"

	"github.com/navisol/werf/internal/model/entity"
	"gorm.io/gorm"
)

// EquipmentRepository persists equipment aggregates and their items. Every
// item mutation writes the item and the recomputed aggregate totals in one
// transaction, so totals can never go stale relative to the item list.
type EquipmentRepository struct {
	db *gorm.DB
}

// NewEquipmentRepository creates the equipment repository.
func NewEquipmentRepository(db *gorm.DB) *EquipmentRepository {
	return &EquipmentRepository{db: db}
}

// FindByProjectID loads a project's equipment aggregate with items.
func (r *EquipmentRepository) FindByProjectID(ctx context.Context, projectID string) (*entity.Equipment, error) {
	var eq entity.Equipment
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("project_id = ?", projectID).
		First(&eq).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &eq, nil
}

// FindByID loads an equipment aggregate with items.
func (r *EquipmentRepository) FindByID(ctx context.Context, id string) (*entity.Equipment, error) {
	var eq entity.Equipment
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("id = ?", id).
		First(&eq).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &eq, nil
}

// FindItemByID loads one equipment item.
func (r *EquipmentRepository) FindItemByID(ctx context.Context, id string) (*entity.EquipmentItem, error) {
	var item entity.EquipmentItem
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Create inserts an aggregate.
func (r *EquipmentRepository) Create(ctx context.Context, eq *entity.Equipment) error {
	return r.db.WithContext(ctx).Create(eq).Error
}

// Update saves the aggregate row (status, vat rate, totals, version).
func (r *EquipmentRepository) Update(ctx context.Context, eq *entity.Equipment) error {
	return r.db.WithContext(ctx).
		Model(&entity.Equipment{}).
		Where("id = ?", eq.ID).
		Updates(map[string]interface{}{
			"status":            eq.Status,
			"vat_rate":          eq.VatRate,
			"subtotal_excl_vat": eq.SubtotalExclVat,
			"vat_amount":        eq.VatAmount,
			"total_incl_vat":    eq.TotalInclVat,
			"version":           eq.Version,
			"frozen_by":         eq.FrozenBy,
			"frozen_at":         eq.FrozenAt,
			"updated_at":        time.Now(),
		}).Error
}

// CreateItemWithTotals inserts an item and writes the new aggregate totals.
func (r *EquipmentRepository) CreateItemWithTotals(ctx context.Context, item *entity.EquipmentItem, eq *entity.Equipment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(item).Error; err != nil {
			return err
		}
		return r.writeTotals(tx, eq)
	})
}

// UpdateItemWithTotals saves an item and writes the new aggregate totals.
func (r *EquipmentRepository) UpdateItemWithTotals(ctx context.Context, item *entity.EquipmentItem, eq *entity.Equipment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(item).Error; err != nil {
			return err
		}
		return r.writeTotals(tx, eq)
	})
}

// DeleteItemWithTotals removes an item and writes the new aggregate totals.
func (r *EquipmentRepository) DeleteItemWithTotals(ctx context.Context, itemID string, eq *entity.Equipment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&entity.EquipmentItem{}, "id = ?", itemID).Error; err != nil {
			return err
		}
		return r.writeTotals(tx, eq)
	})
}

// ReplaceItemsWithTotals swaps the whole item list (CSV import) atomically.
func (r *EquipmentRepository) ReplaceItemsWithTotals(ctx context.Context, eq *entity.Equipment, items []entity.EquipmentItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&entity.EquipmentItem{}, "equipment_id = ?", eq.ID).Error; err != nil {
			return err
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return r.writeTotals(tx, eq)
	})
}

func (r *EquipmentRepository) writeTotals(tx *gorm.DB, eq *entity.Equipment) error {
	return tx.Model(&entity.Equipment{}).
		Where("id = ?", eq.ID).
		Updates(map[string]interface{}{
			"subtotal_excl_vat": eq.SubtotalExclVat,
			"vat_amount":        eq.VatAmount,
			"total_incl_vat":    eq.TotalInclVat,
			"version":           eq.Version,
			"updated_at":        time.Now(),
		}).Error
}
