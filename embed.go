package lifelens

import "embed"

// MigrationsFS embeds the SQL migrations so the binary can apply them
// on startup without shipping the files separately.
//
//go:embed migrations
var MigrationsFS embed.FS
