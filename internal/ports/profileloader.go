package ports

import (
	"dispatch-project/internal/config"
)

// ProfileLoader loads dispatch profiles.
type ProfileLoader interface {
	// LoadProfile loads the named dispatch profile.
	LoadProfile(name string) (*config.DispatchProfile, error)
}
