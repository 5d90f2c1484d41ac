package looptable_test

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/katalvlaran/ringloop/fragment"
	"github.com/katalvlaran/ringloop/looptable"
	"github.com/katalvlaran/ringloop/rama"
)

func benchTable(b *testing.B) *looptable.Table {
	b.Helper()
	rng := rand.New(rand.NewSource(3))
	one := looptable.NewTable(1)
	if err := one.BuildBase(500, rng, rama.Default()); err != nil {
		b.Fatal(err)
	}
	four := looptable.NewTable(4)
	two := looptable.NewTable(2)
	if err := two.Concatenate(one, one, 60, 60, rng, rama.Default()); err != nil {
		b.Fatal(err)
	}
	if err := four.Concatenate(two, two, 100, 100, rng, nil); err != nil {
		b.Fatal(err)
	}

	return four
}

func BenchmarkConcatenate(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	one := looptable.NewTable(1)
	if err := one.BuildBase(500, rng, rama.Default()); err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		two := looptable.NewTable(2)
		if err := two.Concatenate(one, one, 50, 50, rng, rama.Default()); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGetClosest(b *testing.B) {
	tbl := benchTable(b)
	query := fragment.Fragment{}
	query.SetToSingleAminoAcid()
	query.End.Origin = query.End.Origin.Scale(3)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := tbl.GetClosest(query, 2); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkWrite(b *testing.B) {
	tbl := benchTable(b)
	var buf bytes.Buffer
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf.Reset()
		if err := tbl.Write(&buf); err != nil {
			b.Fatal(err)
		}
	}
}
