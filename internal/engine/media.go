// Media and propaganda shocks. Periodic broadcasts flip a random sample
// of susceptible agents to one ideology.
package engine

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/talgya/ideology-sim/internal/agents"
)

// Broadcast schedule and reach.
const (
	MediaInterval      = 30  // Broadcasts can only fire on steps divisible by this
	MediaChance        = 0.6 // Chance a broadcast fires on an eligible step
	PropagandaChance   = 0.2 // Share of broadcasts that are propaganda
	MinInfluenceReach  = 30
	MaxInfluenceReach  = 100
	MinPropagandaReach = 100
	MaxPropagandaReach = 300

	// Susceptibility gates.
	MediaStubbornLimit  = 6  // Agents must be below this stubbornness
	MediaEducationLimit = 18 // Agents must be below this education
)

// MediaKind distinguishes ordinary media influence from propaganda.
type MediaKind uint8

const (
	MediaInfluence MediaKind = iota
	MediaPropaganda
)

func (k MediaKind) String() string {
	if k == MediaPropaganda {
		return "propaganda"
	}
	return "influence"
}

// MediaEvent is one broadcast that moved at least one agent.
type MediaEvent struct {
	Kind     MediaKind       `json:"kind"`
	Step     int             `json:"step"`
	Message  agents.Ideology `json:"message"`
	Targeted int             `json:"targeted"`
	Affected int             `json:"affected"`
}

// MediaLedger is the append-only record of effective broadcasts with running
// totals per kind.
type MediaLedger struct {
	Events []MediaEvent

	InfluenceEvents     int
	InfluencedAgents    int
	PropagandaEvents    int
	PropagandizedAgents int
}

// Record appends an event and updates the totals. Events that moved nobody
// are not recorded.
func (l *MediaLedger) Record(e MediaEvent) {
	if e.Affected == 0 {
		return
	}
	l.Events = append(l.Events, e)
	switch e.Kind {
	case MediaPropaganda:
		l.PropagandaEvents++
		l.PropagandizedAgents += e.Affected
	default:
		l.InfluenceEvents++
		l.InfluencedAgents += e.Affected
	}
}

// Summary renders the ledger as newline-terminated lines, one per event,
// each carrying the running totals for its kind at that point.
func (l *MediaLedger) Summary() string {
	var b strings.Builder
	var infEvents, infAgents, propEvents, propAgents int
	for _, e := range l.Events {
		switch e.Kind {
		case MediaPropaganda:
			propEvents++
			propAgents += e.Affected
			fmt.Fprintf(&b, "Propaganda influenced agents %d times. Affected %d agents in total.\n", propEvents, propAgents)
		default:
			infEvents++
			infAgents += e.Affected
			fmt.Fprintf(&b, "Media influenced agents %d times. Affected %d agents in total.\n", infEvents, infAgents)
		}
	}
	return b.String()
}

// maybeBroadcast rolls for a media event on eligible steps and applies it.
func (s *Simulation) maybeBroadcast(step int) {
	if step%MediaInterval != 0 || !s.rng.Chance(MediaChance) {
		return
	}

	kind := MediaInfluence
	if s.rng.Chance(PropagandaChance) {
		kind = MediaPropaganda
	}
	reach := s.rng.IntRange(MinInfluenceReach, MaxInfluenceReach)
	if kind == MediaPropaganda {
		reach = s.rng.IntRange(MinPropagandaReach, MaxPropagandaReach)
	}
	message := agents.Conservative
	if s.rng.Intn(2) == 1 {
		message = agents.Liberal
	}

	s.Broadcast(kind, message, reach)
}

// Broadcast samples up to reach agents uniformly and moves every susceptible
// one to message. Returns the event, recorded in the ledger when it moved
// anyone.
func (s *Simulation) Broadcast(kind MediaKind, message agents.Ideology, reach int) MediaEvent {
	pop := s.Scheduler.Agents()
	picked := s.rng.Sample(len(pop), reach)

	ev := MediaEvent{
		Kind:     kind,
		Step:     s.Scheduler.StepCount(),
		Message:  message,
		Targeted: len(picked),
	}
	for _, i := range picked {
		if Susceptible(pop[i], message) {
			pop[i].Ideology = message
			ev.Affected++
		}
	}

	s.Media.Record(ev)
	if ev.Affected > 0 {
		slog.Debug("media event",
			"kind", kind,
			"step", ev.Step,
			"message", message,
			"targeted", ev.Targeted,
			"affected", ev.Affected,
		)
	}
	return ev
}

// Susceptible reports whether a broadcast of message can move a.
func Susceptible(a *agents.Agent, message agents.Ideology) bool {
	return a.Stubborn < MediaStubbornLimit &&
		!a.BiasedAgainst(message) &&
		a.Education < MediaEducationLimit
}
