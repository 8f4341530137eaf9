package statemachine

import (
	"strings"
	"testing"

	"food-ordering-api/models"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    models.PaymentStatus
		to      models.PaymentStatus
		actor   Actor
		wantErr bool
	}{
		{"intent created", models.PaymentPending, models.PaymentInitiated, ActorSystem, false},
		{"intent creation failed", models.PaymentPending, models.PaymentFailed, ActorSystem, false},
		{"gateway confirms", models.PaymentInitiated, models.PaymentConfirmed, ActorGateway, false},
		{"gateway declines", models.PaymentInitiated, models.PaymentFailed, ActorGateway, false},
		{"retry after failure", models.PaymentFailed, models.PaymentInitiated, ActorSystem, false},
		{"gateway confirms after decline", models.PaymentFailed, models.PaymentConfirmed, ActorGateway, false},
		{"system cannot confirm after decline", models.PaymentFailed, models.PaymentConfirmed, ActorSystem, true},
		{"system cannot confirm", models.PaymentInitiated, models.PaymentConfirmed, ActorSystem, true},
		{"cannot confirm before intent", models.PaymentPending, models.PaymentConfirmed, ActorGateway, true},
		{"confirmed is terminal", models.PaymentConfirmed, models.PaymentFailed, ActorGateway, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanTransition(tt.from, tt.to, tt.actor)
			if (err != nil) != tt.wantErr {
				t.Errorf("CanTransition() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCanTransitionDescribesTerminalState(t *testing.T) {
	err := CanTransition(models.PaymentConfirmed, models.PaymentInitiated, ActorSystem)
	if err == nil || !strings.Contains(err.Error(), "terminal") {
		t.Fatalf("expected terminal-state message, got %v", err)
	}
	if !IsTerminal(models.PaymentConfirmed) {
		t.Fatal("CONFIRMED should be terminal")
	}
	if IsTerminal(models.PaymentPending) {
		t.Fatal("PENDING_PAYMENT should not be terminal")
	}
}

func TestValidTransitionsFromDeduplicates(t *testing.T) {
	got := ValidTransitionsFrom(models.PaymentInitiated)
	if len(got) != 2 {
		t.Fatalf("ValidTransitionsFrom(PAYMENT_INITIATED) = %v, want 2 states", got)
	}

	got = ValidTransitionsFrom(models.PaymentFailed)
	if len(got) != 2 || got[0] != models.PaymentInitiated || got[1] != models.PaymentConfirmed {
		t.Fatalf("ValidTransitionsFrom(PAYMENT_FAILED) = %v", got)
	}
}

func TestAllTransitionsReturnsCopy(t *testing.T) {
	all := AllTransitions()
	all[0].To = models.PaymentConfirmed
	if validTransitions[0].To == models.PaymentConfirmed {
		t.Fatal("AllTransitions exposed the internal table")
	}
}
