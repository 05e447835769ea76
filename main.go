package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"balloon-td/engine"
	"balloon-td/sound"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const (
	frame   = time.Second / 30
	maxLogs = 12
)

type tickMsg time.Time

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type model struct {
	match     *engine.Match
	width     int
	height    int
	col, row  int
	kind      engine.TowerKind
	showRange bool
	logScroll int // how many lines from the bottom we offset when viewing logs
	last      time.Time
	status    string

	// the money counter eases towards the real balance
	moneyTween  *gween.Tween
	moneyTarget int
	shownMoney  float32
}

func newModel(m *engine.Match) model {
	return model{
		match:       m,
		col:         boardCols / 2,
		row:         boardRows / 2,
		moneyTarget: m.Money(),
		shownMoney:  float32(m.Money()),
	}
}

func (m model) Init() tea.Cmd {
	return tickCmd(frame)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		now := time.Time(msg)
		var delta time.Duration
		if !m.last.IsZero() {
			delta = now.Sub(m.last)
		}
		m.last = now
		m.match.Tick(delta)
		m.easeMoney(delta)
		return m, tickCmd(frame)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		return m.handleKey(msg.String())
	}
	return m, nil
}

func (m *model) easeMoney(delta time.Duration) {
	if money := m.match.Money(); money != m.moneyTarget {
		m.moneyTarget = money
		m.moneyTween = gween.New(m.shownMoney, float32(money), 0.4, ease.OutQuad)
	}
	if m.moneyTween == nil {
		return
	}
	cur, done := m.moneyTween.Update(float32(delta.Seconds()))
	m.shownMoney = cur
	if done {
		m.shownMoney = float32(m.moneyTarget)
		m.moneyTween = nil
	}
}

func (m model) handleKey(key string) (tea.Model, tea.Cmd) {
	m.status = ""
	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		m.moveCursor(0, -1)
	case "down", "j":
		m.moveCursor(0, 1)
	case "left", "h":
		m.moveCursor(-1, 0)
	case "right", "l":
		m.moveCursor(1, 0)
	case "1", "2", "3", "4":
		m.kind = engine.TowerKind(key[0] - '1')
	case "enter", "p":
		if _, ok := m.match.PlaceTower(m.kind, cellCenter(m.col, m.row)); !ok {
			m.status = fmt.Sprintf("cannot place %s here", m.kind)
		}
	case "u":
		if t, ok := m.match.TowerAt(cellCenter(m.col, m.row)); !ok {
			m.status = "no tower under cursor"
		} else if !m.match.UpgradeTower(t.ID) {
			m.status = fmt.Sprintf("upgrade costs %d", t.UpgradeCost)
		}
	case "s":
		if t, ok := m.match.TowerAt(cellCenter(m.col, m.row)); ok {
			refund, _ := m.match.SellTower(t.ID)
			m.status = fmt.Sprintf("sold for %d", refund)
		}
	case " ":
		if !m.match.StartRound() {
			m.status = "round already running"
		}
	case "f":
		m.match.ToggleSpeed()
	case "v":
		m.showRange = !m.showRange
	case "y":
		if err := clipboard.WriteAll(m.match.Report()); err != nil {
			m.status = "clipboard unavailable"
		} else {
			m.status = "report copied"
		}
	case "r":
		m.match.Restart()
		m.moneyTween = nil
		m.moneyTarget = m.match.Money()
		m.shownMoney = float32(m.moneyTarget)
	case "pgup":
		if m.logScroll < len(m.match.Logs())-1 {
			m.logScroll++
		}
	case "pgdown":
		if m.logScroll > 0 {
			m.logScroll--
		}
	}
	return m, nil
}

func (m *model) moveCursor(dx, dy int) {
	if inGrid(m.col+dx, m.row+dy) {
		m.col += dx
		m.row += dy
	}
}

func (m model) View() string {
	s := m.match.Snapshot()
	board := renderBoard(rasterize(s, m.match.Path(), m.showRange), m.col, m.row)

	cost := func(k engine.TowerKind) int {
		spec, _ := m.match.TowerSpec(k)
		return spec.Cost
	}
	lines := sidebarLines(s, int(m.shownMoney+0.5), m.kind, cost, m.match.Logs(), maxLogs, m.logScroll)
	if t, ok := m.match.TowerAt(cellCenter(m.col, m.row)); ok {
		lines = append(lines, "", fmt.Sprintf("#%d %s L%d dmg %d", t.ID, t.Kind, t.Level, t.Damage),
			fmt.Sprintf("upgrade %d / sell %d", t.UpgradeCost, t.SellValue()))
	}
	sidebar := sidebarStyle.Render(strings.Join(lines, "\n"))
	ui := lipgloss.JoinHorizontal(lipgloss.Top, board, sidebar)

	footer := "arrows move | 1-4 kind | enter place | u upgrade | s sell | space round | f speed | v ranges | y copy | r restart | q quit"
	switch s.HUD.Outcome {
	case engine.Won:
		footer = titleStyle.Render("You won! r to play again, q to quit.")
	case engine.Lost:
		footer = warnStyle.Render("Out of lives. r to play again, q to quit.")
	}
	if m.status != "" {
		footer = m.status + " | " + footer
	}
	return lipgloss.JoinVertical(lipgloss.Left, ui, footer)
}

func newLogger(cfg engine.Config) (*logrus.Logger, *os.File, error) {
	f, err := os.OpenFile("balloon-td.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	l := logrus.New()
	l.SetOutput(f)
	l.SetLevel(cfg.LogLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	return l, f, nil
}

func main() {
	rounds := flag.String("rounds", "", "wave table JSON (overrides BTD_ROUNDS)")
	waypoints := flag.String("waypoints", "", "waypoint CSV (overrides BTD_WAYPOINTS)")
	mute := flag.Bool("mute", false, "disable sound")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := engine.ConfigFromEnv()
	if err != nil {
		log.Fatal(err)
	}
	if *rounds != "" {
		cfg.RoundsFile = *rounds
	}
	if *waypoints != "" {
		cfg.WaypointsFile = *waypoints
	}
	if *mute {
		cfg.Sound = false
	}

	logger, logFile, err := newLogger(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer logFile.Close()

	path, waves, err := engine.LoadInputs(cfg)
	if err != nil {
		logger.WithError(err).Error("failed to load match data")
		log.Fatal(err)
	}
	match, err := engine.NewMatch(path, waves,
		engine.WithConfig(cfg),
		engine.WithLogger(logger),
		engine.WithLogRing(engine.NewLogRing(100)),
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

	p := tea.NewProgram(newModel(match), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
}
