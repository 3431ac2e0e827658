// Package data bundles the default catalog dataset the service boots
// from when no persisted snapshot exists.
package data

import (
	_ "embed"
	"encoding/json"

	"github.com/tdvu/galleria/models"
)

//go:embed db.json
var rawDefault []byte

// DefaultSnapshot decodes the bundled dataset. The bundle is validated
// at build time by tests, so a decode failure here is a packaging bug
// and panics rather than limping along with an empty catalog.
func DefaultSnapshot() models.Snapshot {
	var snapshot models.Snapshot
	if err := json.Unmarshal(rawDefault, &snapshot); err != nil {
		panic("data: bundled db.json is malformed: " + err.Error())
	}
	return snapshot
}
