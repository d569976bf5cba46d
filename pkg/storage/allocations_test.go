package storage_test

import (
	"strings"
	"testing"
	"time"

	"github.com/planport/planport/pkg/domain/allocation"
	"github.com/planport/planport/pkg/domain/wizard"
	"github.com/planport/planport/pkg/storage"
)

func validBatch() storage.AllocationBatch {
	return storage.AllocationBatch{
		BatchID:         "b-1",
		FinancialYearID: "2024-04-01",
		Quarter:         "Q1",
		CreatedAt:       time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		Records: []wizard.ExportRecord{{
			ID:          "r-1",
			BatchID:     "b-1",
			TeamID:      "t-1",
			TeamName:    "Platform",
			EpicName:    "Checkout Redesign",
			EpicType:    allocation.EpicTypeChangeWork,
			CycleID:     "it-1",
			CycleName:   "Iteration 1",
			Sprint:      "Sprint 1",
			Percentage:  40,
			StoryPoints: 8,
		}},
	}
}

func TestValidateBatch_Accepts(t *testing.T) {
	if err := storage.ValidateBatch(validBatch()); err != nil {
		t.Fatalf("valid batch rejected: %v", err)
	}
}

func TestValidateBatch_Rejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*storage.AllocationBatch)
	}{
		{"bad quarter label", func(b *storage.AllocationBatch) { b.Quarter = "Q5" }},
		{"empty batch id", func(b *storage.AllocationBatch) { b.BatchID = "" }},
		{"empty team id", func(b *storage.AllocationBatch) { b.Records[0].TeamID = "" }},
		{"unknown epic type", func(b *storage.AllocationBatch) { b.Records[0].EpicType = "Side Quest" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := validBatch()
			tc.mutate(&b)
			err := storage.ValidateBatch(b)
			if err == nil {
				t.Fatal("expected a schema violation")
			}
			if !strings.Contains(err.Error(), "schema") {
				t.Errorf("error should name the schema, got %v", err)
			}
		})
	}
}

func TestAppendAllocationBatch(t *testing.T) {
	repo := newTestRepo(t)

	first := validBatch()
	if err := repo.AppendAllocationBatch(first); err != nil {
		t.Fatalf("first append: %v", err)
	}

	second := validBatch()
	second.BatchID = "b-2"
	second.Records[0].BatchID = "b-2"
	second.Records[0].ID = "r-2"
	if err := repo.AppendAllocationBatch(second); err != nil {
		t.Fatalf("second append: %v", err)
	}

	batches, err := repo.LoadAllocationBatches()
	if err != nil {
		t.Fatalf("LoadAllocationBatches: %v", err)
	}
	if len(batches) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(batches))
	}
	if batches[0].BatchID != "b-1" || batches[1].BatchID != "b-2" {
		t.Errorf("append order lost: %s, %s", batches[0].BatchID, batches[1].BatchID)
	}
	if len(batches[1].Records) != 1 || batches[1].Records[0].ID != "r-2" {
		t.Errorf("records lost on append: %+v", batches[1].Records)
	}
}

func TestAppendAllocationBatch_RefusesInvalid(t *testing.T) {
	repo := newTestRepo(t)

	bad := validBatch()
	bad.Quarter = "winter"
	if err := repo.AppendAllocationBatch(bad); err == nil {
		t.Fatal("invalid batch written to disk")
	}

	batches, err := repo.LoadAllocationBatches()
	if err != nil {
		t.Fatalf("LoadAllocationBatches: %v", err)
	}
	if len(batches) != 0 {
		t.Errorf("rejected batch still persisted: %+v", batches)
	}
}
