// Package uploader defines the upload collaborator contract plus the
// ready-made adapters the CLI wires in. The pipeline core only ever sees
// Func; everything about transport, credentials, and retries lives behind
// it.
package uploader

import (
	"context"

	"git.home.luguber.info/inful/assetpipe/internal/retry"
)

// Func uploads one asset's content and returns its remote location.
//
// An empty location with a nil error means "leave the asset local" and is
// not a failure. A non-nil error fails that asset's publish phase step. The
// orchestrator invokes Func at most once per unique content fingerprint per
// cache lifetime; retry policy, if any, belongs inside the Func.
type Func func(ctx context.Context, name string, content []byte, ext string) (string, error)

// Retrying wraps fn so transient failures are retried per the policy. The
// "leave local" signal (empty location, nil error) passes through untouched.
func Retrying(fn Func, policy retry.Policy) Func {
	return func(ctx context.Context, name string, content []byte, ext string) (string, error) {
		var location string
		err := policy.Do(ctx, func() error {
			var uerr error
			location, uerr = fn(ctx, name, content, ext)
			return uerr
		})
		if err != nil {
			return "", err
		}
		return location, nil
	}
}
