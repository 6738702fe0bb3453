// Package config holds the client-side display constants. Gameplay tuning
// lives in internal/config and can be reloaded; these cannot.
package config

import "time"

// View resolution - the visible viewport in logical units.
// Actual rendering scales to fit terminal size.
const (
	ViewWidth  = 120 // Logical viewport width
	ViewHeight = 80  // Logical viewport height (in sub-pixels, so 40 terminal rows)
)

// Radar - a top-down projection of the field in the ship's frame.
const (
	RadarRange     = 250.0 // World units from the ship to the radar edge
	RadarMinRadius = 1.0   // Smallest blip, in viewport units
	FuelBarWidth   = 20    // Cells
)

// Player
const (
	MaxUsernameLength = 16 // Maximum display length for player usernames
)

// Shutdown
const (
	ShutdownDisplaySeconds = 10.0 // Seconds to show shutdown message before auto-disconnect
)

// Inactivity
const (
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
)

// Client rendering
const (
	ClientTargetFPS       = 60
	ClientTargetFrameTime = time.Second / ClientTargetFPS
)

// Render area limits. Larger terminals get a centered area with a border.
const (
	MaxTermWidth  = 160
	MaxTermHeight = 50
)
