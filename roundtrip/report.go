package roundtrip

import (
	"sort"
	"time"
)

// Failure is one signature occurrence that did not round-trip.
type Failure struct {
	Source    string `json:"source" yaml:"source"`
	Class     string `json:"class,omitempty" yaml:"class,omitempty"`
	Member    string `json:"member,omitempty" yaml:"member,omitempty"`
	Kind      string `json:"kind" yaml:"kind"`
	Signature string `json:"signature" yaml:"signature"`
	// Got is the written form when parsing succeeded.
	Got   string `json:"got,omitempty" yaml:"got,omitempty"`
	Error string `json:"error" yaml:"error"`
}

// ClassError is a class file that could not be decoded at all.
type ClassError struct {
	Source string `json:"source" yaml:"source"`
	Error  string `json:"error" yaml:"error"`
}

type Report struct {
	Classes    int `json:"classes" yaml:"classes"`
	Signatures int `json:"signatures" yaml:"signatures"`
	// Distinct counts signatures this run added to the memo. Repeats
	// served from the memo are counted in CacheHits. A signature evicted
	// from a small memo is counted again when it next appears.
	Distinct    int            `json:"distinct" yaml:"distinct"`
	CacheHits   int            `json:"cacheHits" yaml:"cacheHits"`
	ByKind      map[string]int `json:"byKind" yaml:"byKind"`
	Failures    []Failure      `json:"failures,omitempty" yaml:"failures,omitempty"`
	ClassErrors []ClassError   `json:"classErrors,omitempty" yaml:"classErrors,omitempty"`
	// Elapsed is left to the encoders, which render it as text.
	Elapsed time.Duration `json:"-" yaml:"-"`
}

func newReport() *Report {
	return &Report{ByKind: map[string]int{}}
}

func (r *Report) OK() bool {
	return len(r.Failures) == 0 && len(r.ClassErrors) == 0
}

// AtLeast reports whether at least n signatures were checked.
func (r *Report) AtLeast(n int) bool {
	return r.Signatures >= n
}

// Merge adds the counts and findings of o to r.
func (r *Report) Merge(o *Report) {
	r.Classes += o.Classes
	r.Signatures += o.Signatures
	r.Distinct += o.Distinct
	r.CacheHits += o.CacheHits
	for k, v := range o.ByKind {
		r.ByKind[k] += v
	}
	r.Failures = append(r.Failures, o.Failures...)
	r.ClassErrors = append(r.ClassErrors, o.ClassErrors...)
	r.Elapsed += o.Elapsed
}

func (r *Report) sort() {
	sort.SliceStable(r.Failures, func(i, j int) bool {
		a, b := r.Failures[i], r.Failures[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Class != b.Class {
			return a.Class < b.Class
		}
		return a.Member < b.Member
	})
	sort.SliceStable(r.ClassErrors, func(i, j int) bool {
		return r.ClassErrors[i].Source < r.ClassErrors[j].Source
	})
}
