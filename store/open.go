// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"

	"github.com/danielhkuo/pulsepoll/cliparse"
)

// Open connects the backend selected by cfg.DatabaseType
func Open(ctx context.Context, cfg cliparse.Config) (Store, error) {
	switch cfg.DatabaseType {
	case cliparse.DatabaseSQLite:
		return OpenSQL(ctx, DialectSQLite, cfg.DatabaseURL)
	case cliparse.DatabasePostgres:
		return OpenSQL(ctx, DialectPostgres, cfg.DatabaseURL)
	case cliparse.DatabaseMongo:
		return OpenMongo(ctx, cfg.DatabaseURL, cfg.DatabaseName)
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}
}
