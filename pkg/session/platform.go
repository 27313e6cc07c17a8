package session

import "sync"

var (
	platformMu      sync.Mutex
	platformFactory Factory
)

// RegisterPlatformFactory installs the factory for the platform-native
// vendor component. A platform-specific build calls it from an init
// function; hosts without the component fall back to replay sessions.
func RegisterPlatformFactory(f Factory) {
	platformMu.Lock()
	platformFactory = f
	platformMu.Unlock()
}

// PlatformFactory returns the registered platform factory, or nil.
func PlatformFactory() Factory {
	platformMu.Lock()
	defer platformMu.Unlock()
	return platformFactory
}
