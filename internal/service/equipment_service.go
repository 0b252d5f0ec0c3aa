package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/navisol/werf/internal/model/entity"
	"github.com/navisol/werf/internal/repository"
)

// EquipmentService manages a project's configured equipment. Totals are
// recomputed inside every mutation and persisted with the item change, so the
// stored amounts are always consistent with the item list.
type EquipmentService struct {
	eqRepo      *repository.EquipmentRepository
	projectRepo *repository.ProjectRepository
}

// NewEquipmentService creates the equipment service.
func NewEquipmentService(eqRepo *repository.EquipmentRepository, projectRepo *repository.ProjectRepository) *EquipmentService {
	return &EquipmentService{eqRepo: eqRepo, projectRepo: projectRepo}
}

// AddItemRequest carries one new equipment line.
type AddItemRequest struct {
	Category         string  `json:"category" binding:"required"`
	Name             string  `json:"name" binding:"required"`
	Quantity         float64 `json:"quantity"`
	Unit             string  `json:"unit"`
	UnitPriceExclVat float64 `json:"unit_price_excl_vat"`
	IsStandard       bool    `json:"is_standard"`
	IsOptional       bool    `json:"is_optional"`
	IsIncluded       *bool   `json:"is_included"`
	CERelevant       bool    `json:"ce_relevant"`
	SafetyCritical   bool    `json:"safety_critical"`
	SortOrder        int     `json:"sort_order"`
	Notes            string  `json:"notes"`
}

// UpdateItemRequest carries a partial item update; nil fields are kept.
type UpdateItemRequest struct {
	Category         *string  `json:"category"`
	Name             *string  `json:"name"`
	Quantity         *float64 `json:"quantity"`
	Unit             *string  `json:"unit"`
	UnitPriceExclVat *float64 `json:"unit_price_excl_vat"`
	IsStandard       *bool    `json:"is_standard"`
	IsOptional       *bool    `json:"is_optional"`
	IsIncluded       *bool    `json:"is_included"`
	CERelevant       *bool    `json:"ce_relevant"`
	SafetyCritical   *bool    `json:"safety_critical"`
	SortOrder        *int     `json:"sort_order"`
	Notes            *string  `json:"notes"`
}

// round2 rounds a money amount to whole cents.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// recomputeTotals derives the aggregate amounts from the item list. Line
// totals are quantity times unit price; only included items feed the subtotal.
func recomputeTotals(eq *entity.Equipment) {
	var subtotal float64
	for i := range eq.Items {
		item := &eq.Items[i]
		item.LineTotal = round2(item.Quantity * item.UnitPriceExclVat)
		if item.IsIncluded {
			subtotal += item.LineTotal
		}
	}
	eq.SubtotalExclVat = round2(subtotal)
	eq.VatAmount = round2(eq.SubtotalExclVat * eq.VatRate)
	eq.TotalInclVat = round2(eq.SubtotalExclVat + eq.VatAmount)
}

// Get returns a project's equipment aggregate with items.
func (s *EquipmentService) Get(ctx context.Context, projectID string) (*entity.Equipment, error) {
	return s.eqRepo.FindByProjectID(ctx, projectID)
}

// AddItem appends a line to the project's equipment and writes new totals.
func (s *EquipmentService) AddItem(ctx context.Context, projectID string, req *AddItemRequest) (*entity.EquipmentItem, error) {
	eq, err := s.eqRepo.FindByProjectID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if eq.Status == entity.EquipmentStatusFrozen {
		return nil, fmt.Errorf("equipment is frozen")
	}

	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	unit := req.Unit
	if unit == "" {
		unit = "pcs"
	}
	included := true
	if req.IsIncluded != nil {
		included = *req.IsIncluded
	}

	now := time.Now()
	item := entity.EquipmentItem{
		ID:               uuid.New().String()[:32],
		EquipmentID:      eq.ID,
		Category:         req.Category,
		Name:             req.Name,
		Quantity:         quantity,
		Unit:             unit,
		UnitPriceExclVat: req.UnitPriceExclVat,
		IsStandard:       req.IsStandard,
		IsOptional:       req.IsOptional,
		IsIncluded:       included,
		CERelevant:       req.CERelevant,
		SafetyCritical:   req.SafetyCritical,
		SortOrder:        req.SortOrder,
		Notes:            req.Notes,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	eq.Items = append(eq.Items, item)
	eq.Version++
	recomputeTotals(eq)

	stored := &eq.Items[len(eq.Items)-1]
	if err := s.eqRepo.CreateItemWithTotals(ctx, stored, eq); err != nil {
		return nil, fmt.Errorf("add equipment item: %w", err)
	}
	return stored, nil
}

// UpdateItem merges the request into the item and writes new totals.
func (s *EquipmentService) UpdateItem(ctx context.Context, itemID string, req *UpdateItemRequest) (*entity.EquipmentItem, error) {
	item, err := s.eqRepo.FindItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	eq, err := s.eqRepo.FindByID(ctx, item.EquipmentID)
	if err != nil {
		return nil, err
	}
	if eq.Status == entity.EquipmentStatusFrozen {
		return nil, fmt.Errorf("equipment is frozen")
	}

	if req.Category != nil {
		item.Category = *req.Category
	}
	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Quantity != nil {
		item.Quantity = *req.Quantity
	}
	if req.Unit != nil {
		item.Unit = *req.Unit
	}
	if req.UnitPriceExclVat != nil {
		item.UnitPriceExclVat = *req.UnitPriceExclVat
	}
	if req.IsStandard != nil {
		item.IsStandard = *req.IsStandard
	}
	if req.IsOptional != nil {
		item.IsOptional = *req.IsOptional
	}
	if req.IsIncluded != nil {
		item.IsIncluded = *req.IsIncluded
	}
	if req.CERelevant != nil {
		item.CERelevant = *req.CERelevant
	}
	if req.SafetyCritical != nil {
		item.SafetyCritical = *req.SafetyCritical
	}
	if req.SortOrder != nil {
		item.SortOrder = *req.SortOrder
	}
	if req.Notes != nil {
		item.Notes = *req.Notes
	}
	item.UpdatedAt = time.Now()

	// Re-derive totals from the updated list.
	for i := range eq.Items {
		if eq.Items[i].ID == item.ID {
			eq.Items[i] = *item
			item = &eq.Items[i]
			break
		}
	}
	eq.Version++
	recomputeTotals(eq)

	if err := s.eqRepo.UpdateItemWithTotals(ctx, item, eq); err != nil {
		return nil, fmt.Errorf("update equipment item: %w", err)
	}
	return item, nil
}

// RemoveItem deletes a line and writes new totals.
func (s *EquipmentService) RemoveItem(ctx context.Context, itemID string) error {
	item, err := s.eqRepo.FindItemByID(ctx, itemID)
	if err != nil {
		return err
	}

	eq, err := s.eqRepo.FindByID(ctx, item.EquipmentID)
	if err != nil {
		return err
	}
	if eq.Status == entity.EquipmentStatusFrozen {
		return fmt.Errorf("equipment is frozen")
	}

	kept := eq.Items[:0]
	for _, it := range eq.Items {
		if it.ID != itemID {
			kept = append(kept, it)
		}
	}
	eq.Items = kept
	eq.Version++
	recomputeTotals(eq)

	if err := s.eqRepo.DeleteItemWithTotals(ctx, itemID, eq); err != nil {
		return fmt.Errorf("remove equipment item: %w", err)
	}
	return nil
}

// SetVatRate changes the VAT rate and writes new totals.
func (s *EquipmentService) SetVatRate(ctx context.Context, projectID string, rate float64) (*entity.Equipment, error) {
	if rate < 0 || rate > 1 {
		return nil, fmt.Errorf("vat rate must be between 0 and 1")
	}

	eq, err := s.eqRepo.FindByProjectID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if eq.Status == entity.EquipmentStatusFrozen {
		return nil, fmt.Errorf("equipment is frozen")
	}

	eq.VatRate = rate
	eq.Version++
	recomputeTotals(eq)

	if err := s.eqRepo.Update(ctx, eq); err != nil {
		return nil, fmt.Errorf("set vat rate: %w", err)
	}
	return eq, nil
}

// Freeze locks the configuration; frozen aggregates reject item mutations.
func (s *EquipmentService) Freeze(ctx context.Context, projectID, actor string) (*entity.Equipment, error) {
	eq, err := s.eqRepo.FindByProjectID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if eq.Status == entity.EquipmentStatusFrozen {
		return nil, fmt.Errorf("equipment is already frozen")
	}

	now := time.Now()
	eq.Status = entity.EquipmentStatusFrozen
	eq.FrozenBy = actor
	eq.FrozenAt = &now
	eq.Version++

	if err := s.eqRepo.Update(ctx, eq); err != nil {
		return nil, fmt.Errorf("freeze equipment: %w", err)
	}
	return eq, nil
}

// Unfreeze reopens a frozen configuration for changes.
func (s *EquipmentService) Unfreeze(ctx context.Context, projectID string) (*entity.Equipment, error) {
	eq, err := s.eqRepo.FindByProjectID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if eq.Status != entity.EquipmentStatusFrozen {
		return nil, fmt.Errorf("equipment is not frozen")
	}

	eq.Status = entity.EquipmentStatusDraft
	eq.FrozenBy = ""
	eq.FrozenAt = nil
	eq.Version++

	if err := s.eqRepo.Update(ctx, eq); err != nil {
		return nil, fmt.Errorf("unfreeze equipment: %w", err)
	}
	return eq, nil
}

// ReplaceItems swaps the whole item list (CSV import) and writes new totals.
func (s *EquipmentService) ReplaceItems(ctx context.Context, projectID string, inputs []AddItemRequest) (*entity.Equipment, error) {
	eq, err := s.eqRepo.FindByProjectID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if eq.Status == entity.EquipmentStatusFrozen {
		return nil, fmt.Errorf("equipment is frozen")
	}

	now := time.Now()
	items := make([]entity.EquipmentItem, 0, len(inputs))
	for i, in := range inputs {
		quantity := in.Quantity
		if quantity == 0 {
			quantity = 1
		}
		unit := in.Unit
		if unit == "" {
			unit = "pcs"
		}
		included := true
		if in.IsIncluded != nil {
			included = *in.IsIncluded
		}
		items = append(items, entity.EquipmentItem{
			ID:               uuid.New().String()[:32],
			EquipmentID:      eq.ID,
			Category:         in.Category,
			Name:             in.Name,
			Quantity:         quantity,
			Unit:             unit,
			UnitPriceExclVat: in.UnitPriceExclVat,
			IsStandard:       in.IsStandard,
			IsOptional:       in.IsOptional,
			IsIncluded:       included,
			CERelevant:       in.CERelevant,
			SafetyCritical:   in.SafetyCritical,
			SortOrder:        i,
			Notes:            in.Notes,
			CreatedAt:        now,
			UpdatedAt:        now,
		})
	}

	eq.Items = items
	eq.Version++
	recomputeTotals(eq)

	if err := s.eqRepo.ReplaceItemsWithTotals(ctx, eq, eq.Items); err != nil {
		return nil, fmt.Errorf("replace equipment items: %w", err)
	}
	return eq, nil
}
