package platform

// AllowAllPermissions grants every request. Desktop hosts have no
// runtime permission model.
type AllowAllPermissions struct{}

func (AllowAllPermissions) CheckLocationPermission() bool { return true }

func (AllowAllPermissions) RequestLocationPermission(callback func(bool)) {
	if callback != nil {
		callback(true)
	}
}

// StaticPermissions answers with a fixed grant state.
type StaticPermissions struct {
	Granted bool
}

func (s StaticPermissions) CheckLocationPermission() bool { return s.Granted }

func (s StaticPermissions) RequestLocationPermission(callback func(bool)) {
	if callback != nil {
		callback(s.Granted)
	}
}
