// Package attach provides a high-level API for attaching remote Arrow
// Flight endpoints as browsable, scannable catalogs.
//
// An attached endpoint behaves like a read-only database: its schemas and
// tables are discovered lazily through a metadata cache, remote type names
// are mapped to a fixed native type vocabulary, and table reads run as
// streaming scan sessions that pull fixed-size row batches.
//
// The package wires three layers together:
//   - catalog: the lazily-populated, goroutine-safe metadata cache
//   - scan: the per-table-read state machine (bind, init, pull, release)
//   - driver: the connector boundary both sit on
//
// Two connectors ship with the module: flightsql (Arrow Flight SQL via
// ADBC) and airport (the Airport Flight dialect). Connectors are passed
// explicitly through Config; there is no global registration.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "context"
//	    "log"
//
//	    attach "github.com/hugr-lab/attach-go"
//	    "github.com/hugr-lab/attach-go/driver"
//	    "github.com/hugr-lab/attach-go/flightsql"
//	)
//
//	func main() {
//	    ctx := context.Background()
//
//	    cat, err := attach.Attach(ctx, driver.Options{
//	        URI: "grpc+tls://flight.example.com:31337",
//	    }, attach.Config{
//	        Connector: flightsql.NewConnector(flightsql.ConnectorConfig{}),
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer cat.Close()
//
//	    schema, err := cat.RequireSchema(ctx, "sales")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    table, err := schema.RequireTable(ctx, "orders")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    session, err := table.NewScan(ctx)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer session.Release()
//
//	    if err := session.Init(ctx, nil); err != nil {
//	        log.Fatal(err)
//	    }
//	    batch := driver.NewRowBatch(table.NumColumns())
//	    for {
//	        n, err := session.Next(ctx, batch)
//	        if err != nil {
//	            log.Fatal(err)
//	        }
//	        if n == 0 {
//	            break
//	        }
//	        // consume batch rows [0, n)
//	    }
//	}
//
// # Degraded Attach
//
// Attaching with a nil Connector succeeds and yields a metadata-empty
// catalog: every lookup reports not-found and scans cannot be bound. This
// keeps attach usable in tooling that inspects configuration without
// reaching the network.
package attach
