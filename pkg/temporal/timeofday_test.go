package temporal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeOfDay(t *testing.T) {
	open := MustTimeOfDay("06:00")
	closing := MustTimeOfDay("22:00")
	day := func(h, m, sec int) time.Time { return time.Date(2024, 1, 1, h, m, sec, 0, time.UTC) }

	assert.True(t, Within(day(6, 0, 0), open, closing), "open boundary is inclusive")
	assert.True(t, Within(day(22, 0, 0), open, closing), "close boundary is inclusive")
	assert.False(t, Within(day(5, 59, 0), open, closing))
	assert.False(t, Within(day(22, 0, 1), open, closing))
	assert.Equal(t, "06:00", open.String())

	_, err := ParseTimeOfDay("25:00")
	require.Error(t, err)
	assert.Panics(t, func() { MustTimeOfDay("noon") })
}
