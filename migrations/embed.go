// Package migrations embeds the SQL schema files applied by the sqlite stores at open.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
