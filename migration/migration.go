package migration

import "context"

// Migrators maps a version name to the migrator bringing the database
// to that version. The "auto" version lets gorm reconcile the schema
// with the current entities.
var Migrators = map[string]func(context.Context) error{
	"auto": AutoMigrate,
	"0000": migrate0000,
	"0001": migrate0001,
}
