package syncerr

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{fmt.Errorf("login: %w", ErrAuthentication), "authentication"},
		{fmt.Errorf("sku 06-1: %w", ErrNotFound), "not_found"},
		{fmt.Errorf("GET /items: %w", ErrTransientIO), "transient"},
		{Validation("PriceTiers is required"), "validation"},
		{Cycle([]string{"A", "B"}, "A"), "cycle"},
		{MissingField("item", "number"), "missing_field"},
		{errors.New("boom"), "error"},
	}
	for _, tc := range cases {
		if got := Classify(tc.err); got != tc.want {
			t.Errorf("Classify(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestCycle_Path(t *testing.T) {
	err := Cycle([]string{"A", "B", "C"}, "A")
	if !errors.Is(err, ErrCycle) {
		t.Fatal("Cycle should wrap ErrCycle")
	}
	if !strings.Contains(err.Error(), "A -> B -> C -> A") {
		t.Errorf("Cycle message = %q", err.Error())
	}
}

func TestValidation_KeepsMessage(t *testing.T) {
	err := Validation("UOM 'Each' is not valid")
	if !strings.HasSuffix(err.Error(), "UOM 'Each' is not valid") {
		t.Errorf("Validation message = %q", err.Error())
	}
}
