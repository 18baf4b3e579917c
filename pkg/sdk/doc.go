// Package datasets provides an embedded Go client for the StatWatch
// dataset service backed by Redis with the JSON and search modules.
//
// The client wires the full ingestion pipeline in-process, so items pass
// through the same schema validation, provenance stamping and marker
// resolution as the HTTP API.
//
//	client, _ := datasets.New(ctx, datasets.WithRedis("localhost:6379", ""))
//	defer client.Close()
//
//	ds, _ := client.Register(ctx, datasets.Registration{
//	    ID:         "smlouvy",
//	    Name:       "Smlouvy úřadu",
//	    CreatedBy:  "opendata@example.cz",
//	    JSONSchema: schema,
//	})
//
//	id, _ := ds.Upsert(ctx, payload, datasets.UpsertOptions{
//	    ID:        "2025-001",
//	    CreatedBy: "import",
//	})
//	raw, _ := ds.Item(ctx, id)
package datasets
