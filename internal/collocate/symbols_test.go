package collocate

import (
	"errors"
	"testing"

	"github.com/njchilds90/gosymbol"
)

func TestDiscreteSymbolNames(t *testing.T) {
	states := []*gosymbol.Sym{gosymbol.S("v"), gosymbol.S("x")}
	specified := []*gosymbol.Sym{gosymbol.S("f")}

	current, previous, currentSpecified, interval, err := DiscreteSymbols(states, specified)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if current[0].Name() != "vi" || current[1].Name() != "xi" {
		t.Errorf("current states: expected [vi xi], got [%s %s]", current[0].Name(), current[1].Name())
	}
	if previous[0].Name() != "vp" || previous[1].Name() != "xp" {
		t.Errorf("previous states: expected [vp xp], got [%s %s]", previous[0].Name(), previous[1].Name())
	}
	if currentSpecified[0].Name() != "fi" {
		t.Errorf("current specified: expected fi, got %s", currentSpecified[0].Name())
	}
	if interval.Name() != "h" {
		t.Errorf("interval: expected h, got %s", interval.Name())
	}
}

func TestDiscreteSymbolsNoSpecified(t *testing.T) {
	states := []*gosymbol.Sym{gosymbol.S("theta")}

	current, previous, currentSpecified, _, err := DiscreteSymbols(states, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(current) != 1 || len(previous) != 1 || len(currentSpecified) != 0 {
		t.Errorf("expected 1 current, 1 previous, 0 specified, got %d/%d/%d",
			len(current), len(previous), len(currentSpecified))
	}
	if current[0].Name() != "thetai" || previous[0].Name() != "thetap" {
		t.Errorf("expected thetai/thetap, got %s/%s", current[0].Name(), previous[0].Name())
	}
}

func TestDiscreteSymbolCollisions(t *testing.T) {
	cases := []struct {
		name      string
		states    []string
		specified []string
	}{
		{"generated name equals another base", []string{"x", "xi"}, nil},
		{"two bases generating the same name", []string{"x"}, []string{"x"}},
		{"base equals interval", []string{"h"}, nil},
		{"specified collides with state suffix", []string{"a"}, []string{"ai"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			states := make([]*gosymbol.Sym, len(tc.states))
			for i, n := range tc.states {
				states[i] = gosymbol.S(n)
			}
			specified := make([]*gosymbol.Sym, len(tc.specified))
			for i, n := range tc.specified {
				specified[i] = gosymbol.S(n)
			}

			_, _, _, _, err := DiscreteSymbols(states, specified)
			if err == nil {
				t.Fatal("expected collision error")
			}
			if !errors.Is(err, ErrSymbolCollision) {
				t.Errorf("expected ErrSymbolCollision, got %v", err)
			}
		})
	}
}

func TestDotNaming(t *testing.T) {
	if got := Dot(gosymbol.S("omega")).Name(); got != "omega'" {
		t.Errorf("expected omega', got %s", got)
	}
}
