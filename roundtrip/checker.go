package roundtrip

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/sigkit/classfile"
	"github.com/dhamidi/sigkit/corpus"
	"github.com/dhamidi/sigkit/sig"
)

const DefaultCacheSize = 1 << 16

type Options struct {
	// Workers defaults to runtime.NumCPU().
	Workers int
	// CacheSize bounds the number of memoised verdicts.
	CacheSize int
	// MaxDepth overrides sig.DefaultMaxDepth when positive.
	MaxDepth int
	Logger   commonlog.Logger
}

// Item is a signature checked outside of any class file, such as a line of
// a vector file.
type Item struct {
	Source string
	Class  string
	Member string
	Kind   sig.Kind
	Text   string
}

type memoKey struct {
	kind sig.Kind
	text string
}

type verdict struct {
	got string
	err error
}

// Checker verifies signatures on a bounded pool of workers. A Checker is
// safe for concurrent use and its memo is shared between runs.
type Checker struct {
	workers int
	opts    []sig.Option
	memo    *expirable.LRU[memoKey, verdict]
	log     commonlog.Logger

	// memoMu makes the lookup after a miss and the insert one step, so a
	// key verified by two workers at once is counted distinct only once.
	memoMu sync.Mutex
}

func New(o Options) *Checker {
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.CacheSize <= 0 {
		o.CacheSize = DefaultCacheSize
	}
	if o.Logger == nil {
		o.Logger = commonlog.GetLogger("sigkit.roundtrip")
	}
	c := &Checker{
		workers: o.Workers,
		memo:    expirable.NewLRU[memoKey, verdict](o.CacheSize, nil, 0),
		log:     o.Logger,
	}
	if o.MaxDepth > 0 {
		c.opts = append(c.opts, sig.WithMaxDepth(o.MaxDepth))
	}
	return c
}

// job runs on a worker and records its findings in the worker's report.
type job func(*Report)

// CheckPaths verifies every signature of every class file reachable from
// paths. On a walk error the report covers what was checked so far.
func (c *Checker) CheckPaths(ctx context.Context, paths ...string) (*Report, error) {
	return c.run(ctx, func(ctx context.Context, send func(job) error) error {
		for _, p := range paths {
			c.log.Infof("checking %s", p)
			err := corpus.Walk(ctx, p, func(e corpus.Entry) error {
				return send(func(r *Report) { c.checkEntry(e, r) })
			})
			if err != nil {
				return fmt.Errorf("walk %s: %w", p, err)
			}
		}
		return nil
	})
}

func (c *Checker) CheckSignatures(ctx context.Context, items []Item) (*Report, error) {
	return c.run(ctx, func(ctx context.Context, send func(job) error) error {
		for _, it := range items {
			if err := send(func(r *Report) { c.check(it, r) }); err != nil {
				return err
			}
		}
		return nil
	})
}

func (c *Checker) run(ctx context.Context, produce func(context.Context, func(job) error) error) (*Report, error) {
	start := time.Now()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan job, c.workers*4)
	results := make(chan *Report, c.workers)
	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := newReport()
			for j := range jobs {
				j(local)
			}
			results <- local
		}()
	}

	err := produce(ctx, func(j job) error {
		select {
		case jobs <- j:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	close(jobs)
	wg.Wait()
	close(results)

	report := newReport()
	for r := range results {
		report.Merge(r)
	}
	report.sort()
	report.Elapsed = time.Since(start)

	c.log.Infof("checked %d signatures (%d distinct) in %d classes in %s: %d failures, %d class errors",
		report.Signatures, report.Distinct, report.Classes, report.Elapsed, len(report.Failures), len(report.ClassErrors))
	return report, err
}

func (c *Checker) checkEntry(e corpus.Entry, r *Report) {
	cf, err := classfile.Parse(e.Data)
	if err != nil {
		c.log.Warningf("%s: %s", e, err)
		r.ClassErrors = append(r.ClassErrors, ClassError{Source: e.String(), Error: err.Error()})
		return
	}
	r.Classes++
	sigs := cf.Signatures()
	c.log.Debugf("%s: %d signatures", cf.Name, len(sigs))
	for _, s := range sigs {
		c.check(Item{
			Source: e.String(),
			Class:  s.Class,
			Member: s.Member,
			Kind:   s.Kind,
			Text:   s.Text,
		}, r)
	}
}

func (c *Checker) check(it Item, r *Report) {
	r.Signatures++
	r.ByKind[it.Kind.String()]++

	key := memoKey{kind: it.Kind, text: it.Text}
	v, ok := c.memo.Get(key)
	if !ok {
		v, ok = c.remember(key, c.verify(key))
	}
	if ok {
		r.CacheHits++
	} else {
		r.Distinct++
	}
	if v.err == nil {
		return
	}

	c.log.Warningf("%s %s.%s: %s", it.Source, it.Class, it.Member, v.err)
	r.Failures = append(r.Failures, Failure{
		Source:    it.Source,
		Class:     it.Class,
		Member:    it.Member,
		Kind:      it.Kind.String(),
		Signature: it.Text,
		Got:       v.got,
		Error:     v.err.Error(),
	})
}

// remember stores v unless another worker stored a verdict for key first,
// in which case that verdict is returned with ok set.
func (c *Checker) remember(key memoKey, v verdict) (verdict, bool) {
	c.memoMu.Lock()
	defer c.memoMu.Unlock()
	if prev, ok := c.memo.Peek(key); ok {
		return prev, true
	}
	c.memo.Add(key, v)
	return v, false
}

func (c *Checker) verify(key memoKey) verdict {
	err := Verify(key.kind, key.text, c.opts...)
	var mismatch *MismatchError
	if errors.As(err, &mismatch) {
		return verdict{got: mismatch.Got, err: err}
	}
	return verdict{err: err}
}
