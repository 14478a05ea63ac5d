// Package migrations embeds the goose SQL migrations that define the
// dataset schema and the demo seed.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
