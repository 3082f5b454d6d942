// Package workflow holds the status transition tables of projects, tasks,
// requests and submissions together with the actor parties allowed to take
// each edge.
package workflow

import (
	"errors"
	"fmt"
)

// Party is a bit set of actor relations to an entity.
type Party uint8

const (
	PartyBuyer Party = 1 << iota
	PartyAssignedSolver
	PartyApplicant
	PartyAdmin
)

// Relation is how an actor relates to the entity being changed.
type Relation struct {
	IsBuyer          bool
	IsAssignedSolver bool
	IsApplicant      bool
	IsAdmin          bool
}

func (r Relation) parties() Party {
	var p Party
	if r.IsBuyer {
		p |= PartyBuyer
	}
	if r.IsAssignedSolver {
		p |= PartyAssignedSolver
	}
	if r.IsApplicant {
		p |= PartyApplicant
	}
	if r.IsAdmin {
		p |= PartyAdmin
	}
	return p
}

var (
	ErrUnknownState         = errors.New("unknown status")
	ErrTerminalState        = errors.New("status is terminal")
	ErrTransitionNotAllowed = errors.New("status transition not allowed")
	ErrPartyNotAllowed      = errors.New("actor may not perform this transition")
)

// Table maps a current status to its allowed next statuses and, per edge,
// the parties allowed to take it. A status with no edges is terminal.
type Table[S ~string] map[S]map[S]Party

// Check validates moving from -> to for an actor with the given relation.
func (t Table[S]) Check(from, to S, rel Relation) error {
	edges, ok := t[from]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownState, from)
	}
	if _, ok := t[to]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownState, to)
	}
	if len(edges) == 0 {
		return fmt.Errorf("%w: %s", ErrTerminalState, from)
	}

	allowed, ok := edges[to]
	if !ok {
		return fmt.Errorf("%w: %s -> %s", ErrTransitionNotAllowed, from, to)
	}
	if allowed&rel.parties() == 0 {
		return fmt.Errorf("%w: %s -> %s", ErrPartyNotAllowed, from, to)
	}
	return nil
}

// Targets lists the statuses reachable from a status.
func (t Table[S]) Targets(from S) []S {
	targets := make([]S, 0, len(t[from]))
	for to := range t[from] {
		targets = append(targets, to)
	}
	return targets
}

// IsTerminal reports whether a known status has no outgoing edges.
func (t Table[S]) IsTerminal(s S) bool {
	edges, ok := t[s]
	return ok && len(edges) == 0
}

// Valid reports whether s is a status of the table.
func (t Table[S]) Valid(s S) bool {
	_, ok := t[s]
	return ok
}
