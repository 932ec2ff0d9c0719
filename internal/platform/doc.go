// Package platform holds capability implementations that stand in for
// device features on hosts without them: location sources, permission
// gates, haptics and notification sinks. Platform-backed implementations
// satisfy the same interfaces and are selected once at startup.
package platform
