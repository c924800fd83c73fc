// Package httputil fetches documents over HTTP.
//
// [Fetch] downloads one document with a bounded body and retries transient
// failures (network errors, 429 and 5xx responses) through [Retry]:
//
//	doc, err := httputil.Fetch(ctx, nil, "https://example.com/graphs/adder.json")
//
// [Retry] is usable on its own; it only retries errors wrapped in
// [RetryableError]:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    if err := call(); err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    return nil
//	})
package httputil
