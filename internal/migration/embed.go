package migration

import "embed"

//go:embed migrations/platform/*.sql migrations/tenant/*.sql
var embeddedMigrations embed.FS
