// Package job defines the Job record tracked by the enrichment backend
// and the Store contract that owns it.
package job
