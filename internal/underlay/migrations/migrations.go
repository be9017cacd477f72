// Package migrations holds the schema migrations for the underlay cache
// database.
package migrations

import "github.com/pressly/goose/v3"

// All returns every migration in version order.
func All() []*goose.Migration {
	return []*goose.Migration{
		goose.NewGoMigration(1,
			&goose.GoFunc{RunTx: Up00001},
			&goose.GoFunc{RunTx: Down00001}),
	}
}
