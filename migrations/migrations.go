// Package migrations embeds the goose SQL migrations of the translation
// service schema. Files are named YYYYMMDDHHMMSS_description.sql and applied
// in order by db.Migrate.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
