// Package id defines the job identifier used across the enrichment backend.
//
// IDs are time-prefixed strings in the format "job_<millis>_<suffix>":
// the embedded millisecond timestamp makes IDs roughly sortable by creation
// time, and the random suffix makes collisions overwhelmingly unlikely
// within a process lifetime. Uniqueness is probabilistic, not cryptographic.
package id

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// prefix is the entity tag every job ID carries.
const prefix = "job"

// suffixLen is the number of random hex characters after the timestamp.
const suffixLen = 12

// JobID identifies a single enrichment job.
//
//nolint:recvcheck // Value receivers for read-only methods, pointer receiver for UnmarshalText.
type JobID struct {
	millis int64
	suffix string
	valid  bool
}

// Nil is the zero-value JobID.
var Nil JobID

// New generates a job ID stamped with the given creation time.
func New(t time.Time) JobID {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return JobID{
		millis: t.UnixMilli(),
		suffix: raw[:suffixLen],
		valid:  true,
	}
}

// Parse parses a job ID string (e.g., "job_1700000000000_9f86d081884c")
// into a JobID. Returns an error if the string is not valid.
func Parse(s string) (JobID, error) {
	if s == "" {
		return Nil, fmt.Errorf("id: parse %q: empty string", s)
	}

	parts := strings.SplitN(s, "_", 3)
	if len(parts) != 3 || parts[0] != prefix {
		return Nil, fmt.Errorf("id: parse %q: want format %q", s, prefix+"_<millis>_<suffix>")
	}

	millis, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || millis < 0 {
		return Nil, fmt.Errorf("id: parse %q: invalid timestamp %q", s, parts[1])
	}

	if parts[2] == "" {
		return Nil, fmt.Errorf("id: parse %q: empty suffix", s)
	}

	return JobID{millis: millis, suffix: parts[2], valid: true}, nil
}

// MustParse is like Parse but panics on error. Use for hardcoded ID values.
func MustParse(s string) JobID {
	parsed, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("id: must parse %q: %v", s, err))
	}

	return parsed
}

// String returns the full string representation (job_<millis>_<suffix>).
// Returns an empty string for the Nil ID.
func (i JobID) String() string {
	if !i.valid {
		return ""
	}

	return prefix + "_" + strconv.FormatInt(i.millis, 10) + "_" + i.suffix
}

// CreatedAt returns the creation timestamp embedded in the ID.
func (i JobID) CreatedAt() time.Time {
	return time.UnixMilli(i.millis).UTC()
}

// IsNil reports whether this ID is the zero value.
func (i JobID) IsNil() bool {
	return !i.valid
}

// MarshalText implements encoding.TextMarshaler.
func (i JobID) MarshalText() ([]byte, error) {
	if !i.valid {
		return []byte{}, nil
	}

	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *JobID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*i = Nil

		return nil
	}

	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}

	*i = parsed

	return nil
}
