package interval

import (
	"time"
)

// Interval is a fixed candle width used to bucket tick timestamps.
type Interval struct {
	Name     string
	Duration time.Duration
}

// Minute is the 1-minute interval the live aggregation pipeline runs on.
var Minute = Interval{Name: "1m", Duration: time.Minute}

// BucketStart calculates the start time of the interval bucket containing
// timestamp. Truncation floors: seconds and sub-seconds are zeroed for the
// minute interval, never rounded up.
func (i Interval) BucketStart(timestamp time.Time) time.Time {
	return timestamp.Truncate(i.Duration)
}

// BucketEnd returns the exclusive end of the bucket containing timestamp,
// i.e. the start of the next bucket.
func (i Interval) BucketEnd(timestamp time.Time) time.Time {
	return i.BucketStart(timestamp).Add(i.Duration)
}

// BucketRange returns the start and end time of the interval bucket.
func (i Interval) BucketRange(timestamp time.Time) (start, end time.Time) {
	start = i.BucketStart(timestamp)
	return start, start.Add(i.Duration)
}

// InSameBucket checks if two timestamps fall within the same bucket.
func (i Interval) InSameBucket(a, b time.Time) bool {
	return i.BucketStart(a).Equal(i.BucketStart(b))
}
