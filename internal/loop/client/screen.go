package client

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomz197/driftfield/internal/draw"
	"github.com/tomz197/driftfield/internal/loop/config"
	"github.com/tomz197/driftfield/internal/loop/server"
)

// drawFrame draws the current frame.
func (c *Client) drawFrame() error {
	// On game state or inactivity transitions, do a full terminal clear
	// so UI elements from the previous state don't persist on screen.
	stateChanged := c.state.GameState != c.state.prevGameState
	inactiveChanged := c.state.isInactive != c.state.wasInactive
	if stateChanged || inactiveChanged {
		c.chunkWriter.WriteString("\033[H\033[2J")
		c.canvas.ForceRedraw()
		c.state.prevGameState = c.state.GameState
		c.state.wasInactive = c.state.isInactive
	}

	c.canvas.Clear()

	snapshot := c.server.Snapshot()
	if c.state.GameState == GameStatePlaying && !c.state.isInactive && snapshot != nil {
		drawRadar(c.canvas, snapshot)
	}

	c.canvas.Render(c.chunkWriter)
	c.canvas.RenderBorder(c.chunkWriter)

	c.drawUI(snapshot)

	return c.chunkWriter.Flush()
}

// drawUI draws the text overlay for the current state.
func (c *Client) drawUI(snapshot *server.WorldSnapshot) {
	termWidth := c.canvas.TerminalWidth()
	termHeight := c.canvas.TerminalHeight()
	centerX := termWidth / 2
	centerY := termHeight / 2

	if c.state.GameState == GameStateShutdown {
		c.drawShutdownScreen(centerX, centerY)
		return
	}

	if c.state.isInactive {
		c.drawInactivityScreen(centerX, centerY)
		return
	}

	switch c.state.GameState {
	case GameStatePlaying:
		if snapshot != nil {
			c.drawPlayingHUD(termWidth, termHeight, snapshot)
		}
	case GameStateStart:
		c.drawStartScreen(centerX, centerY)
	case GameStateGameOver:
		c.drawGameOverScreen(centerX, centerY, snapshot)
	}
}

func (c *Client) text(t draw.Text) {
	t.Draw(c.chunkWriter, c.canvas)
}

func (c *Client) centered(col, row int, s string) {
	c.text(draw.Centered(col, row, s))
}

// drawInactivityScreen draws the inactivity warning screen.
func (c *Client) drawInactivityScreen(centerX, centerY int) {
	c.centered(centerX, centerY-2, "INACTIVITY WARNING")
	c.centered(centerX, centerY, fmt.Sprintf(
		"You have been inactive for too long. You will be disconnected in %d seconds.",
		int(config.InactivityDisconnectUser-c.idle().Seconds()),
	))
	c.centered(centerX, centerY+2, "Press any key to continue")
}

var titleArt = []string{
	` ___  ___ ___ ___ _____ ___ ___ ___ _    ___  `,
	`|   \| _ \_ _| __|_   _| __|_ _| __| |  |   \ `,
	`| |) |   /| || _|  | | | _| | || _|| |__| |) |`,
	`|___/|_|_\___|_|   |_| |_| |___|___|____|___/ `,
}

var controlLines = []string{
	"W S / Up Down  . . . Pitch",
	"A D / Left Right . . . Yaw",
	"Q E  . . . . . . . . . Roll",
	"Shift / B  . . . . . Boost",
	"SPACE  . . . . . . . . Fire",
	"X  . . . . . . . . . . Quit",
}

// drawStartScreen draws the title screen.
func (c *Client) drawStartScreen(centerX, centerY int) {
	titleStartY := centerY - 8
	for i, line := range titleArt {
		c.centered(centerX, titleStartY+i, line)
	}

	subtitle := "~ Keep the drift alive ~"
	if c.username != "" {
		subtitle = fmt.Sprintf("~ Welcome, %s ~", truncate(c.username, config.MaxUsernameLength))
	}
	c.centered(centerX, titleStartY+len(titleArt)+1, subtitle)

	controlsY := titleStartY + len(titleArt) + 3
	c.centered(centerX, controlsY, "Controls")
	for i, line := range controlLines {
		c.centered(centerX, controlsY+1+i, line)
	}

	if blink() {
		c.centered(centerX, controlsY+len(controlLines)+2, ">>  Press ENTER to launch  <<")
	}
}

// drawPlayingHUD draws the in-game HUD.
// Text fields use fixed-width formatting so shrinking values don't leave
// residual characters on screen.
func (c *Client) drawPlayingHUD(termWidth, termHeight int, snap *server.WorldSnapshot) {
	ship := snap.Ship

	frac := 0.0
	if ship.MaxFuel > 0 {
		frac = ship.Fuel / ship.MaxFuel
	}
	fuelColor := draw.ColorGreen
	if frac < 0.25 {
		fuelColor = draw.ColorRed
	}
	c.text(draw.Text{Col: 2, Row: 1, Value: "FUEL "})
	c.text(draw.Text{Col: 7, Row: 1, Value: "[" + draw.Bar(frac, config.FuelBarWidth) + "]", Color: fuelColor})
	c.text(draw.Text{Col: 9 + config.FuelBarWidth, Row: 1, Value: fmt.Sprintf("%5.1f", ship.Fuel)})

	ammo := fmt.Sprintf("AMMO %-3d", snap.Ammo)
	c.text(draw.Text{Col: termWidth - len(ammo) - 1, Row: 1, Value: ammo})

	dst := "DST  ---  "
	if ship.RangeHit {
		dst = fmt.Sprintf("DST %6.1f", ship.Range)
	}
	status := fmt.Sprintf("SPD %5.1f  %s  T+%s", ship.Speed, dst, clock(snap.Elapsed))
	c.text(draw.Text{Col: 2, Row: termHeight, Value: status})

	stats := poolSummary(snap)
	c.text(draw.Text{Col: termWidth - len(stats) - 1, Row: termHeight, Value: stats})
}

// poolSummary lists active/total instances for every pool, e.g. "Asteroid 48/50".
func poolSummary(snap *server.WorldSnapshot) string {
	parts := make([]string, 0, len(snap.Stats))
	for _, st := range snap.Stats {
		parts = append(parts, fmt.Sprintf("%s %3d/%-3d", st.Tag, st.Active, st.Total))
	}
	return strings.Join(parts, "  ")
}

var gameOverArt = []string{
	`  ___   _   __  __ ___    _____   _____ ___  `,
	` / __| /_\ |  \/  | __|  / _ \ \ / / __| _ \ `,
	`| (_ |/ _ \| |\/| | _|  | (_) \ V /| _||   / `,
	` \___/_/ \_\_|  |_|___|  \___/ \_/ |___|_|_\ `,
}

// drawGameOverScreen shows why the flight ended.
func (c *Client) drawGameOverScreen(centerX, centerY int, snap *server.WorldSnapshot) {
	titleStartY := centerY - 6
	for i, line := range gameOverArt {
		c.centered(centerX, titleStartY+i, line)
	}

	row := titleStartY + len(gameOverArt) + 1
	if c.state.Reason != "" {
		c.text(draw.Text{Col: centerX - len(c.state.Reason)/2, Row: row, Value: c.state.Reason, Color: draw.ColorRed})
	}
	if snap != nil {
		c.centered(centerX, row+2, "Flight time "+clock(snap.Elapsed))
	}

	if blink() {
		c.centered(centerX, row+4, ">>  Press ENTER to fly again, X to quit  <<")
	}
}

// drawShutdownScreen draws the server shutdown notification screen.
func (c *Client) drawShutdownScreen(centerX, centerY int) {
	c.centered(centerX, centerY-3, "SERVER SHUTTING DOWN")
	c.centered(centerX, centerY-1, "The server is restarting for maintenance.")
	c.centered(centerX, centerY, "Please reconnect in a moment.")

	remaining := int(c.state.shutdownTimer) + 1
	c.centered(centerX, centerY+2, fmt.Sprintf("Disconnecting in %d seconds...", remaining))
	c.centered(centerX, centerY+4, "Press X to disconnect now")
}

func blink() bool {
	return time.Now().UnixMilli()/600%2 == 0
}

// clock formats a duration as mm:ss.
func clock(d time.Duration) string {
	s := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", s/60, s%60)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
