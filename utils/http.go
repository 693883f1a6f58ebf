// utils/http.go
package utils

import (
	"net/http"
	"time"
)

// HTTPClient is shared by workers talking to upstream services.
var HTTPClient = &http.Client{
	Timeout: 30 * time.Second,
}
