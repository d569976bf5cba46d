package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/planport/planport/pkg/domain/wizard"
)

// AllocationBatch is one confirmed import run, appended to
// .planport/allocations.json for the downstream persistence collaborator.
type AllocationBatch struct {
	BatchID         string                `json:"batchId"`
	FinancialYearID string                `json:"financialYearId"`
	Quarter         string                `json:"quarter"`
	CreatedAt       time.Time             `json:"createdAt"`
	Records         []wizard.ExportRecord `json:"records"`
}

// allocationBatchSchema is the wire contract for emitted batches. Every
// batch is validated against it before being written, so a shape
// regression fails loudly here instead of in the consumer.
const allocationBatchSchema = `{
  "type": "object",
  "required": ["batchId", "financialYearId", "quarter", "createdAt", "records"],
  "properties": {
    "batchId": {"type": "string", "minLength": 1},
    "financialYearId": {"type": "string", "minLength": 1},
    "quarter": {"type": "string", "pattern": "^Q[1-4]$"},
    "createdAt": {"type": "string"},
    "records": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "batchId", "teamId", "teamName", "epicName", "epicType", "cycleId", "percentage"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "batchId": {"type": "string", "minLength": 1},
          "teamId": {"type": "string", "minLength": 1},
          "teamName": {"type": "string", "minLength": 1},
          "epicName": {"type": "string", "minLength": 1},
          "epicType": {"enum": ["Run Work", "Change Work"]},
          "cycleId": {"type": "string", "minLength": 1},
          "cycleName": {"type": "string"},
          "sprint": {"type": "string"},
          "percentage": {"type": "integer"},
          "storyPoints": {"type": "number"}
        }
      }
    }
  }
}`

var allocationSchemaLoader = gojsonschema.NewStringLoader(allocationBatchSchema)

// ValidateBatch checks a batch against the emitted-allocation schema.
func ValidateBatch(batch AllocationBatch) error {
	data, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("failed to marshal batch: %w", err)
	}

	result, err := gojsonschema.Validate(allocationSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("batch schema validation failed: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return fmt.Errorf("batch does not match allocation schema: %v", msgs)
	}
	return nil
}

// AppendAllocationBatch validates and appends a batch to the allocations
// output file.
func (r *FilesystemRepository) AppendAllocationBatch(batch AllocationBatch) error {
	if err := ValidateBatch(batch); err != nil {
		return err
	}

	existing, err := r.LoadAllocationBatches()
	if err != nil {
		return err
	}

	return saveJSON(r, AllocationsFile, append(existing, batch))
}

// LoadAllocationBatches reads every previously confirmed batch. A missing
// file yields an empty list.
func (r *FilesystemRepository) LoadAllocationBatches() ([]AllocationBatch, error) {
	path, err := r.ResolvePath(AllocationsFile)
	if err != nil {
		return nil, err
	}

	// #nosec G304 -- Path is resolved and validated via ResolvePath
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read allocations file: %w", err)
	}

	var batches []AllocationBatch
	if err := json.Unmarshal(data, &batches); err != nil {
		return nil, fmt.Errorf("failed to unmarshal allocations file: %w", err)
	}
	return batches, nil
}
