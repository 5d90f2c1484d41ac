package closure_test

import (
	"testing"

	"github.com/katalvlaran/ringloop/closure"
	"github.com/katalvlaran/ringloop/fragment"
	"github.com/katalvlaran/ringloop/looptable"
)

func BenchmarkSolve(b *testing.B) {
	opts := looptable.DefaultOptions()
	opts.Samples1, opts.Samples2 = 40, 40
	lib, err := looptable.NewLibrary(opts)
	if err != nil {
		b.Fatal(err)
	}
	if err = lib.Preload(9); err != nil {
		b.Fatal(err)
	}

	strand := fragment.NewSingleResidue(-120, 130)
	end := strand
	var i int
	for i = 1; i < 9; i++ {
		end = end.Concatenate(strand, i, i+1)
	}
	s := closure.NewSolver(lib)

	b.ResetTimer()
	for i = 0; i < b.N; i++ {
		if _, err = s.Solve(fragment.Canonical(), end.End, 8); err != nil {
			b.Fatal(err)
		}
	}
}
