// Package locations enumerates, per target, every place a mirror setting
// can live and adapts each one to a common Source/Clearer/Writer surface.
//
// A Layout fixes the probe precedence, the set of locations a clear must
// reach, the writers used for a new selection, and the read-only
// machine-scope locations that can override the user's choice.
package locations
