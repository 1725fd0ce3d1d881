package attach

import (
	"context"
	"fmt"

	"github.com/hugr-lab/attach-go/catalog"
	"github.com/hugr-lab/attach-go/driver"
	"github.com/hugr-lab/attach-go/internal/sqlutil"
)

// Attach connects to a remote endpoint and returns its catalog. The
// connection is established eagerly: a dial failure is an attach failure,
// not a deferred error on first lookup. Credentials in opts are passed to
// the connector untouched and never logged.
//
// With a nil cfg.Connector the attach succeeds in degraded mode: no
// connection is made and the returned catalog is metadata-empty.
//
// The caller owns the returned catalog and must Close it to release the
// remote session.
func Attach(ctx context.Context, opts driver.Options, cfg Config) (*catalog.Catalog, error) {
	if err := sqlutil.ValidateURI(opts.URI); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	logger := cfg.logger()

	if cfg.Connector == nil {
		logger.Warn("attaching without a connector: catalog will be metadata-empty",
			"uri", opts.URI,
		)
		return catalog.New(catalog.Config{
			Options: opts,
			Logger:  logger,
		}), nil
	}

	conn, err := cfg.Connector.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("attach %s: %w", opts.URI, err)
	}

	logger.Debug("endpoint attached", "uri", opts.URI)
	return catalog.New(catalog.Config{
		Options:   opts,
		Connector: cfg.Connector,
		Conn:      conn,
		Logger:    logger,
	}), nil
}
