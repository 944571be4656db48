package market

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testSeries(n int) Series {
	start := time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC)
	s := make(Series, 0, n)
	for i := 0; i < n; i++ {
		px := 100.0 + float64(i)
		s = append(s, Bar{
			Time:   start.Add(time.Duration(i) * time.Minute),
			Open:   px,
			High:   px + 0.5,
			Low:    px - 0.5,
			Close:  px + 0.25,
			Volume: 1000,
		})
	}
	return s
}

func TestWindowNoLookAhead(t *testing.T) {
	t.Parallel()

	s := testSeries(10)
	w := s.Window(4)
	assert.Len(t, w, 5)
	assert.Equal(t, s[4], w[len(w)-1])

	// Window past the end clamps to the full series.
	assert.Len(t, s.Window(99), 10)
	assert.Nil(t, s.Window(-1))
}

func TestLastClose(t *testing.T) {
	t.Parallel()

	var empty Series
	assert.Zero(t, empty.LastClose())

	s := testSeries(3)
	assert.InDelta(t, 102.25, s.LastClose(), 1e-9)

	last, ok := s.Last()
	assert.True(t, ok)
	assert.Equal(t, s[2], last)
}

func TestLoadCSV(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "bars.csv")
	data := "time,open,high,low,close,volume\n" +
		"2024-01-02T14:30:00Z,100,101,99,100.5,1200\n" +
		"1704206460,100.5,102,100,101.5,900\n" +
		"\n"
	assert.NoError(t, os.WriteFile(path, []byte(data), 0644))

	s, err := LoadCSV(path)
	assert.NoError(t, err)
	assert.Len(t, s, 2)
	assert.InDelta(t, 100.5, s[0].Close, 1e-9)
	assert.InDelta(t, 101.5, s[1].Close, 1e-9)
	assert.True(t, s[1].Time.After(s[0].Time))
}

func TestLoadCSVRejectsOutOfOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "bad.csv")
	data := "2024-01-02T14:31:00Z,100,101,99,100.5,1200\n" +
		"2024-01-02T14:30:00Z,100.5,102,100,101.5,900\n"
	assert.NoError(t, os.WriteFile(path, []byte(data), 0644))

	_, err := LoadCSV(path)
	assert.Error(t, err)
}
