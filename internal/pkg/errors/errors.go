package errors

import "errors"

// ErrNoContent marks an ingestion run that produced zero chunks. The ingest
// endpoint reports it as a failure; the scheduled job treats it as normal.
var ErrNoContent = errors.New("no documents found to ingest")

func IsNoContent(err error) bool {
	return errors.Is(err, ErrNoContent)
}
