package effects

import (
	"time"

	"github.com/rickb777/date/v2/timespan"
)

type TimeSpan = timespan.TimeSpan

const epsilon = time.Millisecond

// Since returns the span from start until now, widened by epsilon on both ends
// so that spans of back-to-back work still overlap their neighbours' instants.
func Since(start time.Time) TimeSpan {
	return timespan.BetweenTimes(start.Add(-1*epsilon), time.Now().Add(epsilon))
}
