// Package enrichment provides the job lifecycle backend for asynchronous
// supplement analysis. A client submits a supplement name, a job is created
// in a bounded in-memory store, the analysis runs in the background, and
// the client polls for completion. Failed or timed-out jobs can be retried
// as a chain with a bounded retry budget.
//
// Enrichment is a library, not a service. Construct a store, wire it into
// a Service, and build an Engine around your analysis function.
//
// # Quick Start
//
//	collector := metrics.NewCollector()
//	st := memory.New(memory.WithRecorder(collector))
//
//	svc, err := enrichment.New(
//	    enrichment.WithStore(st),
//	    enrichment.WithLogger(logger),
//	)
//
//	eng, err := engine.Build(svc, analyzeSupplement,
//	    engine.WithCollector(collector),
//	)
//
// # Architecture
//
// The store is the single owner of all job records: creation, status
// transitions, capacity eviction, and expiration cleanup all go through it.
// The retry coordinator, background runner, sweeper, and HTTP API are thin
// collaborators around the store. Job IDs are time-prefixed strings in the
// format "job_<millis>_<suffix>".
package enrichment
