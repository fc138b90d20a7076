package entrypoint

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mrlokans/catalog/internal/catalog"
	"github.com/mrlokans/catalog/internal/config"
	"github.com/mrlokans/catalog/internal/database"
	"github.com/mrlokans/catalog/internal/docstore"
)

const mongoConnectTimeout = 10 * time.Second

// OpenStores selects the catalog backend. The returned close function
// disconnects the document store; the SQLite database is closed by Run.
func OpenStores(cfg config.Database, db *database.Database) (catalog.Stores, func(context.Context), error) {
	switch cfg.Driver {
	case "", config.DriverSQLite:
		return db.Stores(), func(context.Context) {}, nil

	case config.DriverMongo:
		ctx, cancel := context.WithTimeout(context.Background(), mongoConnectTimeout)
		defer cancel()

		mdb, err := docstore.NewMongoDB(ctx, cfg.URL, cfg.Name)
		if err != nil {
			return catalog.Stores{}, nil, err
		}
		closeFn := func(ctx context.Context) {
			if err := mdb.Disconnect(ctx); err != nil {
				slog.Error("Error disconnecting from MongoDB", "error", err)
			}
		}
		return mdb.Stores(), closeFn, nil

	default:
		return catalog.Stores{}, nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
