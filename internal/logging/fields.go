package logging

// Field names shared across components.
const (
	FieldComponent  = "component"
	FieldProject    = "project"
	FieldAlert      = "alert"
	FieldKind       = "kind"
	FieldAmount     = "amount"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldClientIP   = "client_ip"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldCount      = "count"
)

// Component names.
const (
	ComponentApp    = "app"
	ComponentLedger = "ledger"
	ComponentStore  = "store"
	ComponentHTTP   = "http"
	ComponentPoller = "poller"
	ComponentAuth   = "auth"
	ComponentExport = "export"
	ComponentTUI    = "tui"
	ComponentConfig = "config"
	ComponentImport = "import"
)

// Operation names.
const (
	OpCreate   = "create"
	OpAppend   = "append"
	OpComplete = "complete"
	OpDismiss  = "dismiss"
	OpRestore  = "restore"
	OpLoad     = "load"
	OpMigrate  = "migrate"
	OpSeed     = "seed"
	OpImport   = "import"
)
