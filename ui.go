package main

import (
	"fmt"
	"strings"

	"balloon-td/engine"

	"github.com/charmbracelet/lipgloss"
)

// The 800x600 board is drawn as an 80x30 grid of terminal cells.
const (
	boardCols  = 80
	boardRows  = 30
	cellWidth  = 800 / boardCols
	cellHeight = 600 / boardRows
)

// ---- lipgloss styles ----
var (
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240")) // grey
	rangeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("237"))
	cursorStyle  = lipgloss.NewStyle().Reverse(true)
	uiBorder     = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1)
	sidebarStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Width(30).Padding(0, 1)
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("34")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	towerGlyph = map[engine.TowerKind]rune{
		engine.Basic:     '^',
		engine.Sniper:    '⌖',
		engine.RapidFire: '≡',
		engine.Heavy:     '⊕',
	}
	towerColor = map[engine.TowerKind]lipgloss.Style{
		engine.Basic:     lipgloss.NewStyle().Foreground(lipgloss.Color("219")),
		engine.Sniper:    lipgloss.NewStyle().Foreground(lipgloss.Color("45")),
		engine.RapidFire: lipgloss.NewStyle().Foreground(lipgloss.Color("51")),
		engine.Heavy:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	}

	tierGlyph = map[engine.Tier]rune{
		engine.Red:    'o',
		engine.Blue:   'o',
		engine.Green:  'o',
		engine.Yellow: 'O',
		engine.Pink:   'O',
		engine.Moab:   '@',
	}
	tierColor = map[engine.Tier]lipgloss.Style{
		engine.Red:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		engine.Blue:   lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		engine.Green:  lipgloss.NewStyle().Foreground(lipgloss.Color("40")),
		engine.Yellow: lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		engine.Pink:   lipgloss.NewStyle().Foreground(lipgloss.Color("213")),
		engine.Moab:   lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true),
	}
)

// cellOf maps a board position to its grid cell.
func cellOf(p engine.Point) (col, row int) {
	return int(p.X) / cellWidth, int(p.Y) / cellHeight
}

// cellCenter is the board position a cursor at (col, row) points at.
func cellCenter(col, row int) engine.Point {
	return engine.Point{
		X: float64(col*cellWidth + cellWidth/2),
		Y: float64(row*cellHeight + cellHeight/2),
	}
}

func inGrid(col, row int) bool {
	return col >= 0 && col < boardCols && row >= 0 && row < boardRows
}

// cell is one rasterized grid cell: a glyph plus the style it renders with.
type cell struct {
	glyph rune
	style *lipgloss.Style
}

// rasterize draws the track, tower ranges, towers and balloons, in that
// order, so later layers win a shared cell.
func rasterize(s engine.Snapshot, path *engine.Path, showRange bool) [][]cell {
	grid := make([][]cell, boardRows)
	for y := range grid {
		grid[y] = make([]cell, boardCols)
		for x := range grid[y] {
			grid[y][x] = cell{glyph: ' '}
		}
	}
	put := func(p engine.Point, r rune, st *lipgloss.Style) {
		col, row := cellOf(p)
		if inGrid(col, row) {
			grid[row][col] = cell{glyph: r, style: st}
		}
	}

	for _, p := range path.Points() {
		put(p, '.', &pathStyle)
	}

	if showRange {
		for _, t := range s.Towers {
			for row := 0; row < boardRows; row++ {
				for col := 0; col < boardCols; col++ {
					if grid[row][col].glyph == ' ' && t.Pos.Dist(cellCenter(col, row)) <= t.Range {
						grid[row][col] = cell{glyph: '•', style: &rangeStyle}
					}
				}
			}
		}
	}

	for _, t := range s.Towers {
		st := towerColor[t.Kind]
		put(t.Pos, towerGlyph[t.Kind], &st)
	}

	for _, b := range s.Balloons {
		st := tierColor[b.Tier]
		glyph := tierGlyph[b.Tier]
		if b.Frozen {
			glyph = '*'
		}
		put(engine.Point{X: b.Pos.X + float64(b.Offset.DX), Y: b.Pos.Y + float64(b.Offset.DY)}, glyph, &st)
	}
	return grid
}

// renderBoard turns the grid into styled rows with the cursor highlighted.
func renderBoard(grid [][]cell, cursorCol, cursorRow int) string {
	rows := make([]string, len(grid))
	for y, line := range grid {
		var b strings.Builder
		for x, c := range line {
			s := string(c.glyph)
			switch {
			case x == cursorCol && y == cursorRow:
				b.WriteString(cursorStyle.Render(s))
			case c.style != nil:
				b.WriteString(c.style.Render(s))
			default:
				b.WriteString(s)
			}
		}
		rows[y] = b.String()
	}
	return uiBorder.Render(strings.Join(rows, "\n"))
}

// sidebarLines is the HUD, the tower shop and the tail of the log.
func sidebarLines(s engine.Snapshot, shownMoney int, selected engine.TowerKind, cost func(engine.TowerKind) int, logs []string, maxLogs, scroll int) []string {
	hud := s.HUD
	lines := []string{
		titleStyle.Render("Balloon TD"),
		fmt.Sprintf("Round: %d/%d", hud.Round, hud.LastRound),
		fmt.Sprintf("Lives: %d", hud.Lives),
		fmt.Sprintf("Money: %d", shownMoney),
		fmt.Sprintf("Speed: %dx", hud.Speed),
		fmt.Sprintf("Balloons: %d (+%d queued)", len(s.Balloons), hud.Pending),
	}
	if !hud.RoundActive && hud.Outcome == engine.Playing {
		lines = append(lines, warnStyle.Render("space: start round"))
	}
	lines = append(lines, "", "Towers:")
	for _, k := range []engine.TowerKind{engine.Basic, engine.Sniper, engine.RapidFire, engine.Heavy} {
		marker := " "
		if k == selected {
			marker = ">"
		}
		lines = append(lines, fmt.Sprintf("%s%d %c %-6s %5d", marker, int(k)+1, towerGlyph[k], k, cost(k)))
	}
	lines = append(lines, "", "Logs (pgup/pgdn):")

	n := maxLogs
	if len(logs) < n {
		n = len(logs)
	}
	start := len(logs) - n - scroll
	if start < 0 {
		start = 0
	}
	end := start + n
	if end > len(logs) {
		end = len(logs)
	}
	return append(lines, logs[start:end]...)
}
