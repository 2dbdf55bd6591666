package actions

import (
	"fmt"
	"image"
	"sort"

	"jordanella.com/tile-clicker-go/internal/cv"
)

// ClickCommand is an absolute screen coordinate to click
type ClickCommand struct {
	X, Y  int
	Label string
}

func (c ClickCommand) String() string {
	return fmt.Sprintf("%s@(%d,%d)", c.Label, c.X, c.Y)
}

// Schedule orders detections rightmost first and converts each one to the
// screen position of its center plus offset. Ties on x keep detection order.
func Schedule(detections []cv.Detection, origin, offset image.Point) []ClickCommand {
	ordered := make([]cv.Detection, len(detections))
	copy(ordered, detections)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].X > ordered[j].X
	})

	commands := make([]ClickCommand, len(ordered))
	for i, d := range ordered {
		target := d.Center().Add(offset).Add(origin)
		commands[i] = ClickCommand{X: target.X, Y: target.Y, Label: d.Label}
	}
	return commands
}
