package statemachine

import (
	"fmt"
	"strings"

	"food-ordering-api/models"
)

// Actor names who drives a payment transition
type Actor string

const (
	ActorSystem  Actor = "system"  // order creation flow
	ActorGateway Actor = "gateway" // payment processor callbacks
)

// Transition defines a valid payment state change and who can perform it
type Transition struct {
	From  models.PaymentStatus `json:"from"`
	To    models.PaymentStatus `json:"to"`
	Actor Actor                `json:"actor"`
}

// validTransitions is the authoritative payment state machine definition
var validTransitions = []Transition{
	// Intent created for a freshly persisted order
	{From: models.PaymentPending, To: models.PaymentInitiated, Actor: ActorSystem},
	{From: models.PaymentPending, To: models.PaymentFailed, Actor: ActorSystem},
	// Processor reports the outcome
	{From: models.PaymentInitiated, To: models.PaymentConfirmed, Actor: ActorGateway},
	{From: models.PaymentInitiated, To: models.PaymentFailed, Actor: ActorGateway},
	// A failed order may get a new intent
	{From: models.PaymentFailed, To: models.PaymentInitiated, Actor: ActorSystem},
	// The customer retried a declined card on the same intent
	{From: models.PaymentFailed, To: models.PaymentConfirmed, Actor: ActorGateway},
}

type transitionKey struct {
	From  models.PaymentStatus
	To    models.PaymentStatus
	Actor Actor
}

var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.PaymentStatus) []models.PaymentStatus {
	var nexts []models.PaymentStatus
	seen := map[models.PaymentStatus]bool{}
	for _, t := range validTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// CanTransition checks if a given actor can move from one state to another
func CanTransition(from, to models.PaymentStatus, actor Actor) error {
	if transitionMap[transitionKey{From: from, To: to, Actor: actor}] {
		return nil
	}
	return fmt.Errorf("invalid payment transition: %s → %s is not allowed for actor '%s'. Valid transitions from %s are: %s",
		from, to, actor, from, describeValidFrom(from))
}

// IsTerminal reports whether no transition leaves status
func IsTerminal(status models.PaymentStatus) bool {
	return len(ValidTransitionsFrom(status)) == 0
}

func describeValidFrom(status models.PaymentStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	names := make([]string, len(nexts))
	for i, s := range nexts {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// AllTransitions returns the full state machine for documentation
func AllTransitions() []Transition {
	out := make([]Transition, len(validTransitions))
	copy(out, validTransitions)
	return out
}
