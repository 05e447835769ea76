// cmd/balloon-td-gui/main.go
package main

import (
	"fmt"
	"image/color"
	"log"
	"math"
	"time"

	"balloon-td/engine"
	"balloon-td/sound"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/font/basicfont"
)

const (
	boardWidth   = 800
	boardHeight  = 600
	panelWidth   = 200
	maxDelta     = 100 * time.Millisecond
	balloonSize  = 8
	towerSize    = 12
	logLinesShow = 14
	logLineWidth = 26
	trackStride  = 8
)

var (
	bgColor    = color.RGBA{0x2b, 0x6e, 0x2b, 0xff}
	trackColor = color.RGBA{0xc2, 0xa0, 0x6b, 0xff}
	panelColor = color.RGBA{0x20, 0x20, 0x28, 0xff}
	rangeColor = color.RGBA{0xff, 0xff, 0xff, 0x40}

	tierColors = map[engine.Tier]color.RGBA{
		engine.Red:    {0xe0, 0x20, 0x20, 0xff},
		engine.Blue:   {0x20, 0x70, 0xe0, 0xff},
		engine.Green:  {0x20, 0xc0, 0x40, 0xff},
		engine.Yellow: {0xf0, 0xe0, 0x20, 0xff},
		engine.Pink:   {0xf0, 0x70, 0xc0, 0xff},
		engine.Moab:   {0x50, 0x70, 0xb0, 0xff},
	}
	towerColors = map[engine.TowerKind]color.RGBA{
		engine.Basic:     {0x8b, 0x5a, 0x2b, 0xff},
		engine.Sniper:    {0x40, 0x50, 0x30, 0xff},
		engine.RapidFire: {0x90, 0x90, 0x90, 0xff},
		engine.Heavy:     {0x60, 0x20, 0x90, 0xff},
	}
)

type game struct {
	match    *engine.Match
	kind     engine.TowerKind
	selected int
	last     time.Time
	status   string
}

func (g *game) Update() error {
	now := time.Now()
	delta := now.Sub(g.last)
	if delta > maxDelta {
		delta = maxDelta
	}
	g.last = now
	g.handleInput()
	g.match.Tick(delta)
	return nil
}

func (g *game) handleInput() {
	for i, key := range []ebiten.Key{ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4} {
		if inpututil.IsKeyJustPressed(key) {
			g.kind = engine.TowerKind(i)
		}
	}
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.match.StartRound()
	case inpututil.IsKeyJustPressed(ebiten.KeyF):
		g.match.ToggleSpeed()
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.match.Restart()
		g.selected = 0
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		if err := clipboard.WriteAll(g.match.Report()); err != nil {
			g.status = "clipboard unavailable"
		} else {
			g.status = "report copied"
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyU) && g.selected != 0:
		g.match.UpgradeTower(g.selected)
	case inpututil.IsKeyJustPressed(ebiten.KeyS) && g.selected != 0:
		g.match.SellTower(g.selected)
		g.selected = 0
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		if x >= boardWidth {
			return
		}
		p := engine.Point{X: float64(x), Y: float64(y)}
		if t, ok := g.match.TowerAt(p); ok {
			g.selected = t.ID
			return
		}
		g.selected = 0
		if _, ok := g.match.PlaceTower(g.kind, p); !ok {
			g.status = fmt.Sprintf("cannot place %s there", g.kind)
		} else {
			g.status = ""
		}
	}
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(bgColor)
	s := g.match.Snapshot()

	// the track is dense; every trackStride-th waypoint is enough to draw it
	pts := g.match.Path().Points()
	for i := 0; i+1 < len(pts); i += trackStride {
		j := min(i+trackStride, len(pts)-1)
		vector.StrokeLine(screen, float32(pts[i].X), float32(pts[i].Y), float32(pts[j].X), float32(pts[j].Y), 20, trackColor, false)
	}

	for _, t := range s.Towers {
		x, y := float32(t.Pos.X), float32(t.Pos.Y)
		if t.ID == g.selected {
			vector.StrokeCircle(screen, x, y, float32(t.Range), 1, rangeColor, true)
		}
		vector.DrawFilledCircle(screen, x, y, towerSize, towerColors[t.Kind], true)
		// Angle is offset by 90 degrees from the screen-space heading
		rad := (t.Angle - 90) * math.Pi / 180
		bx := x + float32(math.Cos(rad))*towerSize*1.5
		by := y - float32(math.Sin(rad))*towerSize*1.5
		vector.StrokeLine(screen, x, y, bx, by, 3, color.Black, true)
	}

	for _, b := range s.Balloons {
		x := float32(b.Pos.X) + float32(b.Offset.DX)
		y := float32(b.Pos.Y) + float32(b.Offset.DY)
		size := float32(balloonSize)
		if b.Tier.IsBoss() {
			size *= 3
		}
		vector.DrawFilledCircle(screen, x, y, size, tierColors[b.Tier], true)
	}

	g.drawPanel(screen, s)
}

func (g *game) drawPanel(screen *ebiten.Image, s engine.Snapshot) {
	vector.DrawFilledRect(screen, boardWidth, 0, panelWidth, boardHeight, panelColor, false)
	face := basicfont.Face7x13
	x := boardWidth + 10
	y := 20
	line := func(str string, clr color.Color) {
		text.Draw(screen, str, face, x, y, clr)
		y += 16
	}
	hud := s.HUD
	line(fmt.Sprintf("Round %d/%d", hud.Round, hud.LastRound), color.White)
	line(fmt.Sprintf("Lives %d", hud.Lives), color.White)
	line(fmt.Sprintf("Money %d", hud.Money), color.White)
	line(fmt.Sprintf("Speed %dx", hud.Speed), color.White)
	switch hud.Outcome {
	case engine.Won:
		line("YOU WON - R restarts", color.RGBA{0x40, 0xff, 0x40, 0xff})
	case engine.Lost:
		line("GAME OVER - R restarts", color.RGBA{0xff, 0x40, 0x40, 0xff})
	default:
		if !hud.RoundActive {
			line("SPACE starts round", color.RGBA{0xff, 0xd0, 0x40, 0xff})
		}
	}
	y += 8
	for _, k := range []engine.TowerKind{engine.Basic, engine.Sniper, engine.RapidFire, engine.Heavy} {
		spec, _ := g.match.TowerSpec(k)
		clr := color.Color(color.Gray{0xa0})
		if k == g.kind {
			clr = color.White
		}
		line(fmt.Sprintf("%d %-6s %5d", int(k)+1, k, spec.Cost), clr)
	}
	if t, ok := g.match.Tower(g.selected); ok {
		y += 8
		line(fmt.Sprintf("#%d %s L%d", t.ID, t.Kind, t.Level), color.White)
		line(fmt.Sprintf("U upgrade %d", t.UpgradeCost), color.White)
		line(fmt.Sprintf("S sell %d", t.SellValue()), color.White)
	}
	if g.status != "" {
		y += 8
		line(g.status, color.RGBA{0xff, 0xd0, 0x40, 0xff})
	}
	y += 8
	logs := g.match.Logs()
	if len(logs) > logLinesShow {
		logs = logs[len(logs)-logLinesShow:]
	}
	for _, l := range logs {
		line(clip(l, logLineWidth), color.Gray{0x90})
	}
}

// clip shortens s to at most n runes.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return boardWidth + panelWidth, boardHeight
}

func main() {
	_ = godotenv.Load()
	cfg, err := engine.ConfigFromEnv()
	if err != nil {
		log.Fatal(err)
	}
	logger := logrus.New()
	logger.SetLevel(cfg.LogLevel)

	path, waves, err := engine.LoadInputs(cfg)
	if err != nil {
		log.Fatal(err)
	}
	match, err := engine.NewMatch(path, waves,
		engine.WithConfig(cfg),
		engine.WithLogger(logger),
		engine.WithLogRing(engine.NewLogRing(logLinesShow)),
	)
	if err != nil {
		log.Fatal(err)
	}

	if cfg.Sound {
		player := sound.NewPlayer(logger)
		if err := player.Init(); err != nil {
			logger.WithError(err).Warn("sound disabled")
		} else {
			player.Attach(match)
			defer player.Close()
		}
	}

	ebiten.SetWindowSize(boardWidth+panelWidth, boardHeight)
	ebiten.SetWindowTitle("Balloon TD")
	if err := ebiten.RunGame(&game{match: match, last: time.Now()}); err != nil {
		log.Fatal(err)
	}
}
