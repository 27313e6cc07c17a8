package writer

import (
	"context"

	"go.uber.org/zap"

	"github.com/keibalab/racefeed/pkg/driver"
	"github.com/keibalab/racefeed/pkg/errors"
	"github.com/keibalab/racefeed/pkg/feed"
	"github.com/keibalab/racefeed/pkg/logger"
	"github.com/keibalab/racefeed/pkg/schema"
)

// EnsureTables creates every destination table of the feed that does not
// exist yet. Statements are idempotent (CREATE TABLE IF NOT EXISTS).
func EnsureTables(ctx context.Context, drv driver.Driver, f feed.Feed) error {
	for _, def := range schema.TablesFor(f) {
		ddl := def.CreateSQL(drv)
		if _, err := drv.Exec(ctx, ddl); err != nil {
			return errors.Wrap(err, errors.ErrorTypeQuery, "failed to create table "+def.Name)
		}
	}
	logger.Debug("destination tables ensured", zap.String("feed", f.String()))
	return nil
}
