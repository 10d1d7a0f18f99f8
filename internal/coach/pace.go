package coach

import (
	"math"
	"strings"
)

// PaceUnavailable is the pace feedback recorded when a zero duration
// makes words-per-minute meaningless.
const PaceUnavailable = "Speaking pace could not be calculated."

// WordCount counts whitespace-separated words in a transcript.
func WordCount(transcript string) int {
	return len(strings.Fields(transcript))
}

// WordsPerMinute computes round(words / seconds * 60), or 0 when the
// duration is zero. The external model also reports a WPM figure, but its
// arithmetic is not trusted; this local value always wins.
func WordsPerMinute(words, seconds int) int {
	if seconds <= 0 || words <= 0 {
		return 0
	}
	return int(math.Round(float64(words) / float64(seconds) * 60))
}
