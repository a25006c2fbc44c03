// Package seed bundles a small example dataset used when the record store is
// empty and the remote catalog is unreachable, so views are never blank.
package seed

import (
	_ "embed"
	"encoding/json"

	log "github.com/sirupsen/logrus"

	"philately/catalog/internal/client"
	"philately/catalog/internal/domain"
)

//go:embed seed.json
var seedJSON []byte

// Records returns the bundled example stamps, run through the same
// normalization path as remote data so downstream components only ever see
// canonical records.
func Records() []domain.StampRecord {
	var raw []client.RawStamp
	if err := json.Unmarshal(seedJSON, &raw); err != nil {
		// The seed file ships with the binary; a decode failure is a build
		// defect, but the catalog must still come up.
		log.Errorf("❌ Failed to decode bundled seed data: %v", err)
		return nil
	}

	records := make([]domain.StampRecord, 0, len(raw))
	for _, r := range raw {
		records = append(records, client.Normalize(r))
	}
	return records
}
