package sendtime

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/cold-outreach/internal/core"
)

// CityResolver maps a city name to an IANA timezone name. An empty
// result means the city is unknown and the default applies.
type CityResolver interface {
	Resolve(city string) string
}

// StaticCityResolver resolves against a fixed city table. It covers the
// markets this tool is pointed at without an external geocoding call.
type StaticCityResolver struct {
	zones map[string]string
}

// NewStaticCityResolver creates a resolver over the built-in city table
func NewStaticCityResolver() *StaticCityResolver {
	return &StaticCityResolver{
		zones: map[string]string{
			"new york":      "America/New_York",
			"boston":        "America/New_York",
			"philadelphia":  "America/New_York",
			"miami":         "America/New_York",
			"atlanta":       "America/New_York",
			"chicago":       "America/Chicago",
			"houston":       "America/Chicago",
			"dallas":        "America/Chicago",
			"austin":        "America/Chicago",
			"denver":        "America/Denver",
			"phoenix":       "America/Phoenix",
			"los angeles":   "America/Los_Angeles",
			"san francisco": "America/Los_Angeles",
			"seattle":       "America/Los_Angeles",
			"portland":      "America/Los_Angeles",
			"london":        "Europe/London",
			"toronto":       "America/Toronto",
			"vancouver":     "America/Vancouver",
		},
	}
}

// Resolve returns the timezone for a city, or "" when unknown
func (r *StaticCityResolver) Resolve(city string) string {
	return r.zones[strings.ToLower(strings.TrimSpace(city))]
}

// Planner computes the next good moment to land in a prospect's inbox:
// configured weekdays at configured hours, local to the lead's city.
type Planner struct {
	resolver  CityResolver
	defaultTZ string
	hours     []int
	weekdays  map[time.Weekday]bool
	clock     core.Clock
	logger    *zap.Logger
}

// NewPlanner creates a send time planner. hours are local clock hours,
// weekdays use the Go convention (Sunday = 0).
func NewPlanner(resolver CityResolver, defaultTZ string, hours, weekdays []int, clock core.Clock, logger *zap.Logger) *Planner {
	days := make(map[time.Weekday]bool, len(weekdays))
	for _, d := range weekdays {
		days[time.Weekday(d)] = true
	}
	sorted := make([]int, len(hours))
	copy(sorted, hours)
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			if sorted[j] < sorted[i] {
				sorted[i], sorted[j] = sorted[j], sorted[i]
			}
		}
	}
	return &Planner{
		resolver:  resolver,
		defaultTZ: defaultTZ,
		hours:     sorted,
		weekdays:  days,
		clock:     clock,
		logger:    logger,
	}
}

// Timezone returns the timezone name for a city, falling back to the
// configured default
func (p *Planner) Timezone(city string) string {
	if city != "" {
		if tz := p.resolver.Resolve(city); tz != "" {
			return tz
		}
	}
	return p.defaultTZ
}

// NextSendTime returns the next valid send slot in the lead's local
// timezone: today's next valid hour if today qualifies, otherwise the
// first valid hour on the next valid day within two weeks.
func (p *Planner) NextSendTime(city string) time.Time {
	loc, err := time.LoadLocation(p.Timezone(city))
	if err != nil {
		p.logger.Warn("Unknown timezone, using UTC",
			zap.String("city", city),
			zap.Error(err))
		loc = time.UTC
	}

	now := p.clock.Now().In(loc)
	if len(p.hours) == 0 {
		return now.Add(24 * time.Hour)
	}

	if p.weekdays[now.Weekday()] {
		for _, h := range p.hours {
			candidate := time.Date(now.Year(), now.Month(), now.Day(), h, 0, 0, 0, loc)
			if candidate.After(now) {
				return candidate
			}
		}
	}

	for i := 1; i <= 14; i++ {
		next := now.AddDate(0, 0, i)
		if p.weekdays[next.Weekday()] {
			return time.Date(next.Year(), next.Month(), next.Day(), p.hours[0], 0, 0, 0, loc)
		}
	}

	// No valid weekday configured at all
	return now.Add(24 * time.Hour)
}
