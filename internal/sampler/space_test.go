package sampler

import (
	"errors"
	"math"
	"testing"
)

func piSpace() SearchSpace {
	return NewSearchSpace(
		Param{Name: "KC", Min: 0.05, Max: 0.5},
		Param{Name: "KI", Min: 0.005, Max: 0.05},
	)
}

func TestValidateAcceptsWellFormedSpace(t *testing.T) {
	if err := piSpace().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name  string
		space SearchSpace
	}{
		{"empty space", NewSearchSpace()},
		{"empty name", NewSearchSpace(Param{Name: "", Min: 0, Max: 1})},
		{"duplicate name", NewSearchSpace(
			Param{Name: "KC", Min: 0, Max: 1},
			Param{Name: "KC", Min: 0, Max: 2},
		)},
		{"inverted bounds", NewSearchSpace(Param{Name: "KC", Min: 1, Max: 0})},
		{"degenerate interval", NewSearchSpace(Param{Name: "KC", Min: 0.3, Max: 0.3})},
		{"nan bound", NewSearchSpace(Param{Name: "KC", Min: math.NaN(), Max: 1})},
		{"infinite bound", NewSearchSpace(Param{Name: "KC", Min: 0, Max: math.Inf(1)})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.space.Validate()
			var spaceErr *InvalidSpaceError
			if !errors.As(err, &spaceErr) {
				t.Fatalf("expected *InvalidSpaceError, got %v", err)
			}
		})
	}
}

func TestNames(t *testing.T) {
	names := piSpace().Names()
	if len(names) != 2 || names[0] != "KC" || names[1] != "KI" {
		t.Fatalf("Names() = %v, want [KC KI]", names)
	}
}

func TestContains(t *testing.T) {
	space := piSpace()

	if !space.Contains(map[string]float64{"KC": 0.3, "KI": 0.01}) {
		t.Errorf("expected in-bounds params to be contained")
	}
	if space.Contains(map[string]float64{"KC": 0.6, "KI": 0.01}) {
		t.Errorf("expected out-of-bounds KC to be rejected")
	}
	if space.Contains(map[string]float64{"KC": 0.3}) {
		t.Errorf("expected missing KI to be rejected")
	}
	// Closed interval: endpoints are in bounds.
	if !space.Contains(map[string]float64{"KC": 0.05, "KI": 0.05}) {
		t.Errorf("expected interval endpoints to be contained")
	}
}
