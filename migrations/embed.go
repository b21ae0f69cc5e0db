// Package migrations embeds the goose SQL migrations so binaries and
// integration tests apply the same schema without a filesystem path.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
