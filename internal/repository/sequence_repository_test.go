package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/navisol/werf/internal/model/entity"
	"github.com/navisol/werf/internal/testutil"
)

func TestSequenceNextFormatsAndCounts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewSequenceRepository(db)
	ctx := context.Background()
	year := time.Now().Year()

	for i := 1; i <= 3; i++ {
		got, err := repo.Next(ctx, entity.SequenceQuotation)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		want := fmt.Sprintf("Q-%d-%03d", year, i)
		if got != want {
			t.Errorf("allocation %d = %s, want %s", i, got, want)
		}
	}

	// Each entity type counts independently.
	got, err := repo.Next(ctx, entity.SequenceInvoice)
	if err != nil {
		t.Fatalf("Next invoice: %v", err)
	}
	if want := fmt.Sprintf("INV-%d-%03d", year, 1); got != want {
		t.Errorf("invoice = %s, want %s", got, want)
	}
}

func TestSequenceUnknownType(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewSequenceRepository(db)

	if _, err := repo.Next(context.Background(), "gizmo"); err == nil {
		t.Error("unknown entity type should fail")
	}
}

func TestSequenceYearRollover(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewSequenceRepository(db)
	ctx := context.Background()

	if _, err := repo.Next(ctx, entity.SequenceClient); err != nil {
		t.Fatalf("Next: %v", err)
	}

	// Age the counter row into last year; the next allocation must restart at 1.
	lastYear := time.Now().Year() - 1
	if err := db.Model(&entity.NumberSequence{}).
		Where("entity_type = ?", entity.SequenceClient).
		Update("year", lastYear).Error; err != nil {
		t.Fatalf("age counter: %v", err)
	}

	got, err := repo.Next(ctx, entity.SequenceClient)
	if err != nil {
		t.Fatalf("Next after rollover: %v", err)
	}
	want := fmt.Sprintf("CLI-%d-%04d", time.Now().Year(), 1)
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}

	row, err := repo.Peek(ctx, entity.SequenceClient)
	if err != nil {
		t.Fatalf("Peek: %v", err)
	}
	if row.CurrentSeq != 1 {
		t.Errorf("current_seq = %d, want 1", row.CurrentSeq)
	}
}
