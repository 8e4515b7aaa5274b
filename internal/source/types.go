package source

import (
	"encoding/json"
	"time"

	"github.com/theirongolddev/archifinance/internal/model"
)

// RawEntry is one line of an import file.
type RawEntry struct {
	Type        string          `json:"type"`
	Ref         string          `json:"ref,omitempty"`
	Project     string          `json:"project,omitempty"`
	Amount      json.RawMessage `json:"amount"`
	Description string          `json:"description"`
	Date        string          `json:"date,omitempty"`
}

// Entry is a parsed import line. It is not validated against the ledger.
type Entry struct {
	Ref         string
	Project     string // id or name, resolved by the caller
	Kind        model.TxKind
	Amount      int64
	Description string
	Date        time.Time // zero means today
	Line        int
}

// DiscoveredFile is an import file found by ScanPath.
type DiscoveredFile struct {
	Path    string
	Project string // default project, decoded from the file name
}
