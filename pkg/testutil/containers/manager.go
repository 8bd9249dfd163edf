//go:build integration

// Package containers manages shared test containers for integration tests.
//
// Containers are expensive to start, so one instance of each kind is shared
// by every suite in a test binary and torn down when the process exits.
package containers

import "sync"

// Manager lazily starts containers and hands the same instance to every
// caller in the test binary.
type Manager struct {
	mu       sync.Mutex
	postgres *PostgresContainer
	redis    *RedisContainer
	redpanda *RedpandaContainer
}

var (
	managerOnce sync.Once
	manager     *Manager
)

// GetManager returns the process-wide container manager.
func GetManager() *Manager {
	managerOnce.Do(func() {
		manager = &Manager{}
	})
	return manager
}
