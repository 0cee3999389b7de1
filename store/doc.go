// Package store defines the backend contract for the enrichment job store
// and the Recorder interface through which the store reports lifecycle and
// health events.
//
// The composite interface:
//
//	type Store interface {
//	    job.Store
//
//	    Ping(ctx context.Context) error
//	    Close() error
//	}
//
// # Available Backends
//
//   - store/memory — the bounded, volatile in-memory store. The store's
//     lifetime is the host process's lifetime; restart loses all jobs.
//     This is the only backend by design: durability is out of scope.
//
// # Usage
//
//	collector := metrics.NewCollector()
//	s := memory.New(
//	    memory.WithTTL(5*time.Minute),
//	    memory.WithMaxSize(1000),
//	    memory.WithRecorder(collector),
//	)
//	defer s.Close()
package store
