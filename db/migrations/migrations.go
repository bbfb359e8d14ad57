package migrations

import "embed"

// FS embeds the SQL migration files stored in this directory; the
// golang-migrate iofs driver reads them when applying the schema.
//
//go:embed *.sql
var FS embed.FS

const Version = 1
