package tiling

import (
	"fmt"
	"math"
	"strings"

	"github.com/1broseidon/framewm/internal/platform"
)

// Mode selects how Tile arranges windows.
type Mode string

const (
	ModeAuto        Mode = "auto"
	ModeFixed       Mode = "fixed"
	ModeVertical    Mode = "vertical"
	ModeHorizontal  Mode = "horizontal"
	ModeMasterStack Mode = "master-stack"
)

// Layout configures a tiling pass.
type Layout struct {
	Mode            Mode
	Rows            int
	Cols            int
	MasterPercent   int
	MaxStackRows    int
	MaxStackCols    int
	FlexibleLastRow bool
	MaxWidth        int
	MaxHeight       int
	Gap             int
}

// DefaultLayout is an auto grid with a flexible last row.
func DefaultLayout() Layout {
	return Layout{
		Mode:            ModeAuto,
		MasterPercent:   60,
		MaxStackRows:    3,
		MaxStackCols:    2,
		FlexibleLastRow: true,
	}
}

// CalculateGrid determines the optimal grid dimensions for the given number of windows
func CalculateGrid(numWindows int) (rows, cols int) {
	if numWindows == 0 {
		return 0, 0
	}

	// Calculate columns first (ceiling of square root)
	cols = int(math.Ceil(math.Sqrt(float64(numWindows))))

	// Calculate rows needed
	rows = int(math.Ceil(float64(numWindows) / float64(cols)))

	return rows, cols
}

// CalculatePositions computes window positions for a plain grid with gaps.
func CalculatePositions(numWindows int, area platform.Rect, gapSize int) []platform.Rect {
	if numWindows == 0 {
		return nil
	}

	rows, cols := CalculateGrid(numWindows)

	// Gaps: one before each column plus one after the last.
	cellWidth := (area.Width - (cols+1)*gapSize) / cols
	cellHeight := (area.Height - (rows+1)*gapSize) / rows

	positions := make([]platform.Rect, numWindows)
	for i := 0; i < numWindows; i++ {
		row := i / cols
		col := i % cols
		positions[i] = platform.Rect{
			X:      area.X + gapSize + col*(cellWidth+gapSize),
			Y:      area.Y + gapSize + row*(cellHeight+gapSize),
			Width:  cellWidth,
			Height: cellHeight,
		}
	}
	return positions
}

// Arrange computes positions for numWindows windows inside area. Fixed grids
// and master-stack layouts may return fewer positions than windows; the rest
// are left where they are.
func Arrange(numWindows int, area platform.Rect, layout Layout) ([]platform.Rect, error) {
	if numWindows == 0 {
		return nil, nil
	}
	gapSize := layout.Gap

	var rows, cols int
	flexibleLastRow := layout.FlexibleLastRow

	switch layout.Mode {
	case ModeAuto, "":
		rows, cols = CalculateGrid(numWindows)

	case ModeFixed:
		rows = layout.Rows
		cols = layout.Cols
		if numWindows > rows*cols {
			numWindows = rows * cols
		}
		flexibleLastRow = false

	case ModeVertical:
		rows = numWindows
		cols = 1
		flexibleLastRow = false

	case ModeHorizontal:
		rows = 1
		cols = numWindows
		flexibleLastRow = false

	case ModeMasterStack:
		return arrangeMasterStack(numWindows, area, layout)

	default:
		return nil, fmt.Errorf("unsupported layout mode: %q", layout.Mode)
	}

	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("invalid grid dimensions: rows=%d cols=%d", rows, cols)
	}

	slotWidth := (area.Width - (cols+1)*gapSize) / cols
	slotHeight := (area.Height - (rows+1)*gapSize) / rows

	if slotWidth <= 0 || slotHeight <= 0 {
		return nil, fmt.Errorf(
			"insufficient space for layout: area=%dx%d rows=%d cols=%d gap=%d (slot=%dx%d)",
			area.Width, area.Height, rows, cols, gapSize, slotWidth, slotHeight,
		)
	}

	windowWidth := slotWidth
	windowHeight := slotHeight
	if layout.MaxWidth > 0 && windowWidth > layout.MaxWidth {
		windowWidth = layout.MaxWidth
	}
	if layout.MaxHeight > 0 && windowHeight > layout.MaxHeight {
		windowHeight = layout.MaxHeight
	}

	lastRowIndex := rows - 1
	windowsInLastRow := numWindows - (lastRowIndex * cols)
	if windowsInLastRow <= 0 {
		windowsInLastRow = cols
	}

	// A short last row stretches to fill the width.
	var lastRowSlotWidth, lastRowWindowWidth int
	if flexibleLastRow && windowsInLastRow < cols {
		lastRowSlotWidth = (area.Width - (windowsInLastRow+1)*gapSize) / windowsInLastRow
		lastRowWindowWidth = lastRowSlotWidth
		if layout.MaxWidth > 0 && lastRowWindowWidth > layout.MaxWidth {
			lastRowWindowWidth = layout.MaxWidth
		}
	}

	positions := make([]platform.Rect, numWindows)
	for i := 0; i < numWindows; i++ {
		row := i / cols
		col := i % cols

		thisSlotWidth, thisWindowWidth := slotWidth, windowWidth
		x := area.X + gapSize + col*(slotWidth+gapSize)
		if flexibleLastRow && row == lastRowIndex && windowsInLastRow < cols {
			lastRowCol := i - (lastRowIndex * cols)
			thisSlotWidth, thisWindowWidth = lastRowSlotWidth, lastRowWindowWidth
			x = area.X + gapSize + lastRowCol*(thisSlotWidth+gapSize)
		}
		y := area.Y + gapSize + row*(slotHeight+gapSize)

		// Center within the slot when capped.
		if thisWindowWidth < thisSlotWidth {
			x += (thisSlotWidth - thisWindowWidth) / 2
		}
		if windowHeight < slotHeight {
			y += (slotHeight - windowHeight) / 2
		}

		positions[i] = platform.Rect{X: x, Y: y, Width: thisWindowWidth, Height: windowHeight}
	}

	return positions, nil
}

func arrangeMasterStack(numWindows int, area platform.Rect, layout Layout) ([]platform.Rect, error) {
	gapSize := layout.Gap
	masterWidth := (area.Width * layout.MasterPercent / 100) - gapSize

	if numWindows == 1 {
		return []platform.Rect{{
			X:      area.X + gapSize,
			Y:      area.Y + gapSize,
			Width:  masterWidth,
			Height: area.Height - 2*gapSize,
		}}, nil
	}

	rightStartX := area.X + masterWidth + 2*gapSize
	rightRegionWidth := area.Width - masterWidth - 3*gapSize
	stackHeight := area.Height - 2*gapSize
	stackCount := numWindows - 1

	maxRows := max(layout.MaxStackRows, 1)
	stackCols := int(math.Ceil(float64(stackCount) / float64(maxRows)))
	if layout.MaxStackCols > 0 && stackCols > layout.MaxStackCols {
		stackCols = layout.MaxStackCols
	}
	stackCols = max(stackCols, 1)
	stackRows := min(int(math.Ceil(float64(stackCount)/float64(stackCols))), maxRows)

	if stackCount > stackRows*stackCols {
		stackCount = stackRows * stackCols
		numWindows = stackCount + 1
	}

	cellWidth := (rightRegionWidth - (stackCols-1)*gapSize) / stackCols
	cellHeight := (stackHeight - (stackRows-1)*gapSize) / stackRows

	if masterWidth <= 0 || cellWidth <= 0 || cellHeight <= 0 {
		return nil, fmt.Errorf(
			"insufficient space for master-stack layout: area=%dx%d masterWidth=%d cellWidth=%d cellHeight=%d gap=%d",
			area.Width, area.Height, masterWidth, cellWidth, cellHeight, gapSize,
		)
	}

	positions := make([]platform.Rect, numWindows)
	positions[0] = platform.Rect{X: area.X + gapSize, Y: area.Y + gapSize, Width: masterWidth, Height: stackHeight}
	for i := 0; i < stackCount; i++ {
		row := i / stackCols
		col := i % stackCols
		positions[i+1] = platform.Rect{
			X:      rightStartX + col*(cellWidth+gapSize),
			Y:      area.Y + gapSize + row*(cellHeight+gapSize),
			Width:  cellWidth,
			Height: cellHeight,
		}
	}
	return positions, nil
}

// Region is a named part of the screen a window can snap to.
type Region string

const (
	RegionFull        Region = "full"
	RegionLeftHalf    Region = "left-half"
	RegionRightHalf   Region = "right-half"
	RegionTopHalf     Region = "top-half"
	RegionBottomHalf  Region = "bottom-half"
	RegionTopLeft     Region = "top-left"
	RegionTopRight    Region = "top-right"
	RegionBottomLeft  Region = "bottom-left"
	RegionBottomRight Region = "bottom-right"
)

var regions = []Region{
	RegionFull, RegionLeftHalf, RegionRightHalf, RegionTopHalf, RegionBottomHalf,
	RegionTopLeft, RegionTopRight, RegionBottomLeft, RegionBottomRight,
}

// ParseRegion resolves a region name, case-insensitively.
func ParseRegion(s string) (Region, error) {
	r := Region(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range regions {
		if r == known {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown region %q", s)
}

// ApplyRegion returns the part of area covered by region, shrunk by gap on
// every side.
func ApplyRegion(area platform.Rect, region Region, gap int) platform.Rect {
	adjusted := area
	halfW, halfH := area.Width/2, area.Height/2

	switch region {
	case RegionFull:
		// No change

	case RegionLeftHalf:
		adjusted.Width = halfW

	case RegionRightHalf:
		adjusted.X = area.X + halfW
		adjusted.Width = area.Width - halfW

	case RegionTopHalf:
		adjusted.Height = halfH

	case RegionBottomHalf:
		adjusted.Y = area.Y + halfH
		adjusted.Height = area.Height - halfH

	case RegionTopLeft:
		adjusted.Width, adjusted.Height = halfW, halfH

	case RegionTopRight:
		adjusted.X = area.X + halfW
		adjusted.Width, adjusted.Height = area.Width-halfW, halfH

	case RegionBottomLeft:
		adjusted.Y = area.Y + halfH
		adjusted.Width, adjusted.Height = halfW, area.Height-halfH

	case RegionBottomRight:
		adjusted.X, adjusted.Y = area.X+halfW, area.Y+halfH
		adjusted.Width, adjusted.Height = area.Width-halfW, area.Height-halfH
	}

	if gap > 0 {
		adjusted = adjusted.Inset(gap)
	}
	if adjusted.Width < 1 {
		adjusted.Width = 1
	}
	if adjusted.Height < 1 {
		adjusted.Height = 1
	}

	return adjusted
}
