package engine

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// linePath is a horizontal track of n waypoints, one pixel apart, at y=300.
func linePath(t *testing.T, n int) *Path {
	t.Helper()
	pts := make([]Point, n)
	for i := range pts {
		pts[i] = Point{X: float64(i), Y: 300}
	}
	p, err := NewPath(pts)
	require.NoError(t, err)
	return p
}

func testFactory(t *testing.T, n int) *BalloonFactory {
	t.Helper()
	return NewBalloonFactory(linePath(t, n), DefaultTierTable(), 42)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// allowAll accepts every placement.
type allowAll struct{}

func (allowAll) ValidPlacement(Point, []*Tower) bool { return true }
