// Package optimize runs IR-to-IR passes over a compiled Module before
// target-source emission (spec §4.7). Only one pass has an effect in this
// revision: unreferenced-block removal. The remaining visitors are present
// as a skeleton other passes can be added to later.
package optimize

import "github.com/kindahl/es2c/internal/ir"

// Pass names one optimizer visitor, individually toggleable via Options.
type Pass string

const (
	PassDeadBlocks    Pass = "dead-blocks"
	PassConstFold     Pass = "const-fold"
	PassPeephole      Pass = "peephole"
	PassCacheCoalesce Pass = "cache-coalesce"
)

// Options toggles which passes run. The zero value runs every pass.
type Options struct {
	disabled map[Pass]bool
}

// WithPass disables (enabled=false) or re-enables a pass.
func WithPass(p Pass, enabled bool) func(*Options) {
	return func(o *Options) {
		if o.disabled == nil {
			o.disabled = make(map[Pass]bool)
		}
		o.disabled[p] = !enabled
	}
}

func (o Options) isEnabled(p Pass) bool {
	return !o.disabled[p]
}

type passFunc func(*ir.Module, *ir.Function) bool

type pass struct {
	id  Pass
	run passFunc
}

var allPasses = []pass{
	{id: PassDeadBlocks, run: removeDeadBlocks},
	{id: PassConstFold, run: constFold},
	{id: PassPeephole, run: peephole},
	{id: PassCacheCoalesce, run: cacheCoalesce},
}

// Run applies every enabled pass to every function in m, in module order,
// repeating each function's pass list until a fixed point (no pass reports
// a change) or a small iteration cap is hit.
func Run(m *ir.Module, opts ...func(*Options)) {
	var cfg Options
	for _, opt := range opts {
		opt(&cfg)
	}

	for _, fn := range m.Functions {
		for iter := 0; iter < 8; iter++ {
			changed := false
			for _, p := range allPasses {
				if !cfg.isEnabled(p.id) {
					continue
				}
				if p.run(m, fn) {
					changed = true
				}
			}
			if !changed {
				break
			}
		}
	}
}

// removeDeadBlocks drops every block beyond a function's entry block that
// has no referrers. A block can lose its last referrer as a side effect of
// an earlier iteration (its sole predecessor was itself just removed), so
// this runs to a fixed point from Run's caller loop rather than doing a
// single linear sweep; a single call here still performs one full pass
// over the function's block list.
func removeDeadBlocks(_ *ir.Module, fn *ir.Function) bool {
	blocks := fn.Blocks()
	if len(blocks) <= 1 {
		return false
	}

	changed := false
	for _, b := range blocks[1:] {
		if len(b.Referrers) != 0 {
			continue
		}
		dropTerminatorReferrals(b)
		fn.RemoveBlock(b)
		changed = true
	}
	return changed
}

// dropTerminatorReferrals removes b's terminator's referrer entries from
// whatever blocks it targets, since that terminator is about to be deleted
// along with b.
func dropTerminatorReferrals(b *ir.Block) {
	term := b.Terminator()
	if term == nil {
		return
	}
	for _, target := range term.Targets {
		target.RemoveReferrer(term)
	}
}

// constFold is a no-op in this revision; an extension point for folding
// bin_raw instructions over two Const operands.
func constFold(_ *ir.Module, _ *ir.Function) bool { return false }

// peephole is a no-op in this revision; an extension point for
// pattern-matching short instruction runs within a block.
func peephole(_ *ir.Module, _ *ir.Function) bool { return false }

// cacheCoalesce is a no-op in this revision; an extension point for
// assigning the same context/property-cache id to access sites the builder
// proved share one underlying binding.
func cacheCoalesce(_ *ir.Module, _ *ir.Function) bool { return false }
