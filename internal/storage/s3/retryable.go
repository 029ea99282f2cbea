package s3store

import (
	"errors"

	"github.com/aws/smithy-go"
	"github.com/cenkalti/backoff/v4"
)

func permanent(err error) error { return backoff.Permanent(err) }

// classify decides whether an attempt error is worth retrying. Client-fault
// API errors (bad credentials, missing bucket) will not improve on retry;
// everything else is treated as transient.
func classify(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorFault() == smithy.FaultClient {
		return permanent(err)
	}
	return err
}
