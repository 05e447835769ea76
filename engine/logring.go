package engine

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// LogRing is a logrus hook that keeps the last lines for an in-game log panel.
type LogRing struct {
	mu    sync.Mutex
	lines []string
	max   int
}

func NewLogRing(max int) *LogRing {
	return &LogRing{max: max}
}

func (r *LogRing) Levels() []logrus.Level {
	return []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel, logrus.WarnLevel, logrus.InfoLevel}
}

func (r *LogRing) Fire(e *logrus.Entry) error {
	line := e.Message
	if round, ok := e.Data["round"]; ok {
		line = fmt.Sprintf("[r%v] %s", round, line)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, line)
	if len(r.lines) > r.max {
		r.lines = r.lines[len(r.lines)-r.max:]
	}
	return nil
}

// Lines returns a copy, oldest first.
func (r *LogRing) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}
