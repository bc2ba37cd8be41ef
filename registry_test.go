package drawtest

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/drawtest/reference"
)

func TestRegistryAdd(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Add("a", pointsSpec()); err != nil {
		t.Fatal(err)
	}
	if err := reg.Add("a", pointsSpec()); !errors.Is(err, ErrDuplicateCase) {
		t.Errorf("duplicate name: err = %v, want ErrDuplicateCase", err)
	}
	bad := pointsSpec()
	bad.Primitive = PrimitiveNone
	if err := reg.Add("bad", bad); !errors.Is(err, ErrInvalidSpec) {
		t.Errorf("invalid spec: err = %v, want ErrInvalidSpec", err)
	}

	if err := reg.Add("b", pointsSpec()); err != nil {
		t.Fatalf("same spec under a new name: %v", err)
	}
	if got := reg.DuplicateHashes(); got != 1 {
		t.Errorf("DuplicateHashes = %d, want 1", got)
	}
	if reg.Len() != 2 {
		t.Errorf("Len = %d, want 2", reg.Len())
	}
	c, ok := reg.Lookup("b")
	if !ok || c.Name != "b" || c.Desc == "" {
		t.Errorf("Lookup(b) = %+v, %v", c, ok)
	}
	if _, ok := reg.Lookup("bad"); ok {
		t.Error("rejected case was registered")
	}
}

func TestSummary(t *testing.T) {
	reg := NewRegistry()
	for _, v := range []Verdict{VerdictPass, VerdictPass, VerdictFail, VerdictNotSupported, VerdictError} {
		reg.Report("c", "", v, "")
	}
	want := Summary{Total: 5, Passed: 2, Failed: 1, NotSupported: 1, Errors: 1}
	got := reg.Summary()
	if got != want {
		t.Errorf("Summary = %+v, want %+v", got, want)
	}
	if got.OK() {
		t.Error("summary with failures is OK")
	}
	if !(Summary{Total: 3, Passed: 2, NotSupported: 1}).OK() {
		t.Error("not supported cases fail the run")
	}
}

func TestGenerateCases(t *testing.T) {
	reg := NewRegistry()
	if err := GenerateCases(reg); err != nil {
		t.Fatal(err)
	}
	if reg.Len() == 0 {
		t.Fatal("no cases generated")
	}
	groups := make(map[string]int)
	for _, c := range reg.Cases() {
		if !c.Spec.Valid() {
			t.Errorf("%s: invalid spec registered", c.Name)
		}
		group, _, _ := strings.Cut(c.Name, "/")
		groups[group]++
	}
	for _, g := range Groups {
		if groups[g] == 0 {
			t.Errorf("group %q is empty", g)
		}
	}
}

func TestRunReportsEveryMatch(t *testing.T) {
	reg := NewRegistry()
	if err := GenerateCases(reg); err != nil {
		t.Fatal(err)
	}
	match := func(name string) bool { return strings.HasPrefix(name, "usage/") }
	s := reg.Run(NewVerifier(), reference.New(24, 24), reference.New(24, 24), match)
	if s.Total == 0 || s.Total != s.Passed {
		t.Errorf("usage group: %v", s)
	}
	for _, r := range reg.Results() {
		if !match(r.Name) {
			t.Errorf("unmatched case %s ran", r.Name)
		}
	}
}

func TestRunReferenceAgainstItself(t *testing.T) {
	if testing.Short() {
		t.Skip("renders every generated case")
	}
	reg := NewRegistry()
	if err := GenerateCases(reg); err != nil {
		t.Fatal(err)
	}
	s := reg.Run(NewVerifier(), reference.New(32, 32), reference.New(32, 32), nil)
	if s.Total != reg.Len() {
		t.Errorf("ran %d of %d cases", s.Total, reg.Len())
	}
	if s.Passed != s.Total {
		for _, r := range reg.Results() {
			if r.Verdict != VerdictPass {
				t.Errorf("%s: %v: %s", r.Name, r.Verdict, r.Message)
			}
		}
	}
}
