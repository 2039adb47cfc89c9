// Package instance names the running process for lock ownership and logs.
package instance

import (
	"os"

	"github.com/angelmondragon/catalog-discounts/pkg/env"
)

// EnvWorkerID overrides the derived instance name.
const EnvWorkerID = "CATALOG_WORKER_ID"

// GetID returns the configured worker id, then the hostname, then "worker-0".
func GetID() string {
	if id := env.Get(EnvWorkerID, ""); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "worker-0"
}
