package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/navisol/werf/internal/model/entity"
	"gorm.io/gorm"
)

// sequenceDefaults maps entity types to their display number shape.
var sequenceDefaults = map[string]struct {
	Prefix    string
	SeqLength int
}{
	entity.SequenceClient:    {Prefix: "CLI", SeqLength: 4},
	entity.SequenceProject:   {Prefix: "PRJ", SeqLength: 3},
	entity.SequenceQuotation: {Prefix: "Q", SeqLength: 3},
	entity.SequenceInvoice:   {Prefix: "INV", SeqLength: 3},
}

// SequenceRepository allocates sequential display numbers from a per-type
// counter row. The increment is a single UPDATE ... RETURNING, so two callers
// can never draw the same value, and the counter resets on a year rollover.
type SequenceRepository struct {
	db *gorm.DB
}

// NewSequenceRepository creates the sequence repository.
func NewSequenceRepository(db *gorm.DB) *SequenceRepository {
	return &SequenceRepository{db: db}
}

// Next allocates the next display number for the entity type, e.g. CLI-2026-0001.
func (r *SequenceRepository) Next(ctx context.Context, entityType string) (string, error) {
	def, ok := sequenceDefaults[entityType]
	if !ok {
		return "", fmt.Errorf("unknown sequence entity type %q", entityType)
	}

	year := time.Now().Year()
	seq, err := r.increment(ctx, entityType, year)
	if err == ErrNotFound {
		if err := r.ensureRow(ctx, entityType, def.Prefix, def.SeqLength, year); err != nil {
			return "", err
		}
		seq, err = r.increment(ctx, entityType, year)
	}
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s-%d-%0*d", def.Prefix, year, def.SeqLength, seq), nil
}

func (r *SequenceRepository) increment(ctx context.Context, entityType string, year int) (int, error) {
	var seq int
	res := r.db.WithContext(ctx).Raw(`
		UPDATE number_sequences
		SET current_seq = CASE WHEN year = ? THEN current_seq + 1 ELSE 1 END,
		    year = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE entity_type = ?
		RETURNING current_seq`,
		year, year, entityType).Scan(&seq)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrNotFound
	}
	return seq, nil
}

func (r *SequenceRepository) ensureRow(ctx context.Context, entityType, prefix string, seqLength, year int) error {
	row := entity.NumberSequence{
		ID:         uuid.New().String()[:32],
		EntityType: entityType,
		Prefix:     prefix,
		SeqLength:  seqLength,
		Year:       year,
	}
	return r.db.WithContext(ctx).
		Where("entity_type = ?", entityType).
		FirstOrCreate(&row).Error
}

// Peek reads the counter without advancing it.
func (r *SequenceRepository) Peek(ctx context.Context, entityType string) (*entity.NumberSequence, error) {
	var row entity.NumberSequence
	err := r.db.WithContext(ctx).Where("entity_type = ?", entityType).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}
