package drawtest

import (
	"fmt"

	"github.com/gogpu/drawtest/gl"
)

// Case is a named draw spec.
type Case struct {
	Name string
	Desc string
	Spec DrawTestSpec
}

// Result records the verdict of one case.
type Result struct {
	Name    string
	Desc    string
	Verdict Verdict
	Message string
}

// Summary counts verdicts.
type Summary struct {
	Total        int
	Passed       int
	Failed       int
	NotSupported int
	Errors       int
}

// OK reports whether no case failed or errored.
func (s Summary) OK() bool { return s.Failed == 0 && s.Errors == 0 }

// Registry collects the cases of one run and their results. Create one
// per run with NewRegistry.
type Registry struct {
	cases   []Case
	names   map[string]int
	hashes  map[uint64]string
	dupHash int
	results []Result
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		names:  make(map[string]int),
		hashes: make(map[uint64]string),
	}
}

// Add registers spec under name. Names must be unique and specs valid.
// A spec whose hash matches an earlier case is still added; the
// collision is logged and counted by DuplicateHashes.
func (r *Registry) Add(name string, spec DrawTestSpec) error {
	if _, ok := r.names[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateCase, name)
	}
	if !spec.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidSpec, name)
	}
	h := spec.Hash()
	if prev, ok := r.hashes[h]; ok {
		r.dupHash++
		Logger().Debug("drawtest: duplicate spec hash", "case", name, "previous", prev)
	} else {
		r.hashes[h] = name
	}
	r.names[name] = len(r.cases)
	r.cases = append(r.cases, Case{Name: name, Desc: spec.Desc(), Spec: spec})
	return nil
}

// Len returns the number of registered cases.
func (r *Registry) Len() int { return len(r.cases) }

// Cases returns the registered cases in registration order. The slice
// must not be modified.
func (r *Registry) Cases() []Case { return r.cases }

// Lookup returns the case registered under name.
func (r *Registry) Lookup(name string) (Case, bool) {
	i, ok := r.names[name]
	if !ok {
		return Case{}, false
	}
	return r.cases[i], true
}

// DuplicateHashes returns how many added specs hashed like an earlier one.
func (r *Registry) DuplicateHashes() int { return r.dupHash }

// Report records a verdict.
func (r *Registry) Report(name, desc string, v Verdict, msg string) {
	r.results = append(r.results, Result{Name: name, Desc: desc, Verdict: v, Message: msg})
}

// Results returns the recorded results in report order.
func (r *Registry) Results() []Result { return r.results }

// Summary counts the recorded verdicts.
func (r *Registry) Summary() Summary {
	var s Summary
	for _, res := range r.results {
		s.Total++
		switch res.Verdict {
		case VerdictPass:
			s.Passed++
		case VerdictFail:
			s.Failed++
		case VerdictNotSupported:
			s.NotSupported++
		default:
			s.Errors++
		}
	}
	return s
}

// Run verifies every case accepted by match, or every case when match
// is nil, and reports each verdict. A failing case never stops the run.
func (r *Registry) Run(v *Verifier, ref, res gl.Context, match func(name string) bool) Summary {
	propagateLogger(ref)
	propagateLogger(res)
	log := Logger()
	for i := range r.cases {
		c := &r.cases[i]
		if match != nil && !match(c.Name) {
			continue
		}
		out := v.Verify(c.Name, &c.Spec, ref, res)
		r.Report(c.Name, c.Desc, out.Verdict, out.Message)

		switch out.Verdict {
		case VerdictPass:
			log.Info("drawtest: case", "name", c.Name, "verdict", out.Verdict)
		case VerdictNotSupported:
			log.Info("drawtest: case", "name", c.Name, "verdict", out.Verdict, "reason", out.Message)
		default:
			log.Warn("drawtest: case", "name", c.Name, "verdict", out.Verdict, "msg", out.Message,
				"seed", v.Seed(&c.Spec), "diff", out.DiffPath)
		}
	}
	return r.Summary()
}
