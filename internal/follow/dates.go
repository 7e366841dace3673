package follow

import (
	"regexp"
	"time"

	"github.com/dropbinge/dropbinge/internal/domain"
)

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func isISODate(value *string) bool {
	return value != nil && isoDatePattern.MatchString(*value)
}

func todayISO(now time.Time) string {
	return now.UTC().Format("2006-01-02")
}

// onOrBeforeToday reports whether value is a valid date that has already
// passed (or is today). ISO dates compare correctly as strings.
func onOrBeforeToday(value *string, today string) bool {
	return isISODate(value) && *value <= today
}

// seasonCompleted reports whether every known episode of a season has
// aired. A season with no dated episodes is not binge-ready.
func seasonCompleted(episodes []domain.Episode, today string) bool {
	dated := 0
	for _, ep := range episodes {
		if !isISODate(ep.AirDate) {
			continue
		}
		dated++
		if *ep.AirDate > today {
			return false
		}
	}
	return dated > 0
}

// runConcluded reports whether a TV run's status marks it finished.
func runConcluded(status string) bool {
	return status == "Ended" || status == "Canceled"
}

// movieReleased reports whether a movie is out, by status or by date.
func movieReleased(status string, releaseDate *string, today string) bool {
	return status == "Released" || onOrBeforeToday(releaseDate, today)
}
