package location

// Reading is a fix as delivered by a platform location subsystem. Any
// field may be missing.
type Reading struct {
	Latitude  *float64
	Longitude *float64
	Accuracy  *float64
}

// LocationSource is the platform location subsystem. Start begins pushing
// readings to deliver until Stop is called.
type LocationSource interface {
	Start(deliver func(Reading)) error
	Stop() error
}

// PermissionGate answers whether the app may read the device location.
type PermissionGate interface {
	CheckLocationPermission() bool
	RequestLocationPermission(callback func(granted bool))
}
