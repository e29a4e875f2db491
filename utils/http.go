// utils/http.go
package utils

import (
	"net/http"
	"time"
)

// HTTPClient is shared by outbound collaborator calls (notification service,
// auth service). Keep the timeout short: every caller retries with backoff.
var HTTPClient = &http.Client{
	Timeout: 30 * time.Second,
}
