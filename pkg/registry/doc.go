// Package registry holds the persisted plugin catalog and the operations the
// release pipeline needs on it.
//
// The catalog is a JSON document consumed by static site renderers:
//
//	{
//	  "plugins": [
//	    {
//	      "id": "graph-streaming",
//	      "name": "Graph Streaming",
//	      ...
//	      "versions": {
//	        "0.9.3": {"last_update": "May 4, 2024", "url": "0.9/graph-streaming-1.0.2.nbm", "plugin_version": "1.0.2"}
//	      }
//	    }
//	  ]
//	}
//
// Every field of a plugin record is always present; absent optional values
// are written as null so downstream templates can rely on the shape.
//
// Use [Load] to decode a previous snapshot (empty input bootstraps an empty
// registry), [Registry.Find] to look a plugin up, [Registry.Upsert] to
// create or update a record, and [Registry.Marshal] to serialize it again.
// Version entries are keyed by release line; updating one release line
// never touches the others.
//
// A Registry is not safe for concurrent use. The release pipeline owns one
// registry for the duration of a run.
package registry
