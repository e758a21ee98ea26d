// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package ga

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iyulab/U-RAS/ci"
	"github.com/iyulab/U-RAS/genome"
	"github.com/iyulab/U-RAS/structs"
)

func twoActivityTask(id string, candidates ...string) *structs.Task {
	return &structs.Task{
		ID: id, Name: id,
		Activities: []*structs.Activity{
			{ID: id + "-a1", TaskID: id, Sequence: 1, Duration: structs.Duration{ProcessMS: 100},
				ResourceRequirements: []*structs.ResourceRequirement{{Candidates: candidates}}},
			{ID: id + "-a2", TaskID: id, Sequence: 2, Duration: structs.Duration{ProcessMS: 200},
				ResourceRequirements: []*structs.ResourceRequirement{{Candidates: candidates}}},
		},
	}
}

func threeTaskIndex(t *testing.T) *genome.Index {
	t.Helper()
	tasks := []*structs.Task{
		twoActivityTask("T1", "M1", "M2"),
		twoActivityTask("T2", "M1", "M2"),
		twoActivityTask("T3", "M1", "M2"),
	}
	idx, err := genome.BuildIndex(tasks)
	require.NoError(t, err)
	return idx
}

func TestCrossover_POX_PreservesMultisetAndValidity(t *testing.T) {
	ci.Parallel(t)

	idx := threeTaskIndex(t)
	rng := rand.New(rand.NewSource(1))
	p1 := genome.NewRandom(idx, rng)
	p2 := genome.NewRandom(idx, rng)

	c1, c2 := Crossover(CrossoverPOX, p1, p2, rng)
	require.True(t, c1.Valid(idx))
	require.True(t, c2.Valid(idx))
	require.ElementsMatch(t, p1.OSV, c1.OSV)
	require.ElementsMatch(t, p1.OSV, c2.OSV)
}

func TestCrossover_LOX_PreservesMultisetAndValidity(t *testing.T) {
	ci.Parallel(t)

	idx := threeTaskIndex(t)
	rng := rand.New(rand.NewSource(2))
	p1 := genome.NewRandom(idx, rng)
	p2 := genome.NewRandom(idx, rng)

	c1, c2 := Crossover(CrossoverLOX, p1, p2, rng)
	require.True(t, c1.Valid(idx))
	require.True(t, c2.Valid(idx))
	require.ElementsMatch(t, p1.OSV, c1.OSV)
}

func TestCrossover_JOXAliasesPOX(t *testing.T) {
	ci.Parallel(t)

	idx := threeTaskIndex(t)
	rngA := rand.New(rand.NewSource(7))
	rngB := rand.New(rand.NewSource(7))
	p1 := genome.NewRandom(idx, rand.New(rand.NewSource(3)))
	p2 := genome.NewRandom(idx, rand.New(rand.NewSource(4)))

	a1, a2 := Crossover(CrossoverJOX, p1, p2, rngA)
	b1, b2 := Crossover(CrossoverPOX, p1, p2, rngB)
	require.Equal(t, a1.OSV, b1.OSV)
	require.Equal(t, a2.OSV, b2.OSV)
}

func TestCrossover_ShortGenomePassesThrough(t *testing.T) {
	ci.Parallel(t)

	p1 := genome.NewUnevaluated([]string{"T1"}, []string{"M1"})
	p2 := genome.NewUnevaluated([]string{"T1"}, []string{"M1"})
	rng := rand.New(rand.NewSource(5))

	c1, c2 := Crossover(CrossoverPOX, p1, p2, rng)
	require.Equal(t, p1.OSV, c1.OSV)
	require.Equal(t, p2.OSV, c2.OSV)
}

func TestMutate_SwapPreservesValidityAndResetsFitness(t *testing.T) {
	ci.Parallel(t)

	idx := threeTaskIndex(t)
	rng := rand.New(rand.NewSource(6))
	g := genome.NewRandom(idx, rng)
	g.Fitness = 42

	mutated := Mutate(MutationSwap, g, rng)
	require.True(t, mutated.Valid(idx))
	require.True(t, mutated.Fitness > 1e300)
	require.Equal(t, float64(42), g.Fitness, "mutation must not alter the parent")
}

func TestMutate_InsertPreservesValidity(t *testing.T) {
	ci.Parallel(t)

	idx := threeTaskIndex(t)
	rng := rand.New(rand.NewSource(8))
	g := genome.NewRandom(idx, rng)

	mutated := Mutate(MutationInsert, g, rng)
	require.True(t, mutated.Valid(idx))
}

func TestMutate_InvertPreservesValidity(t *testing.T) {
	ci.Parallel(t)

	idx := threeTaskIndex(t)
	rng := rand.New(rand.NewSource(9))
	g := genome.NewRandom(idx, rng)

	mutated := Mutate(MutationInvert, g, rng)
	require.True(t, mutated.Valid(idx))
}

func TestMutate_ShortGenomeUnchanged(t *testing.T) {
	ci.Parallel(t)

	g := genome.NewUnevaluated([]string{"T1"}, []string{"M1"})
	mutated := Mutate(MutationSwap, g, rand.New(rand.NewSource(1)))
	require.Equal(t, g.OSV, mutated.OSV)
}

func TestMutateMAV_PreservesValidityAndPicksCandidate(t *testing.T) {
	ci.Parallel(t)

	idx := threeTaskIndex(t)
	rng := rand.New(rand.NewSource(10))
	g := genome.NewRandom(idx, rng)

	mutated := MutateMAV(g, idx, rng)
	require.True(t, mutated.Valid(idx))
}

func TestTournament_ReturnsLowestFitness(t *testing.T) {
	ci.Parallel(t)

	pop := []*genome.Genome{
		{OSV: []string{"a"}, MAV: []string{"x"}, Fitness: 100},
		{OSV: []string{"b"}, MAV: []string{"y"}, Fitness: 10},
		{OSV: []string{"c"}, MAV: []string{"z"}, Fitness: 50},
	}
	// Seed 1 draws indices 2, 0, 2 (with replacement), so the lowest
	// fitness among the sampled individuals is 50.
	rng := rand.New(rand.NewSource(1))
	winner := Tournament(pop, 3, rng)
	require.Equal(t, float64(50), winner.Fitness)
}

func TestTournament_EmptyPopulationReturnsNil(t *testing.T) {
	ci.Parallel(t)

	require.Nil(t, Tournament(nil, 3, rand.New(rand.NewSource(1))))
}

func evaluatorFromMAVSum() Evaluator {
	return func(g *genome.Genome) float64 {
		var sum float64
		for i, r := range g.MAV {
			sum += float64(i) * float64(len(r))
		}
		return sum
	}
}

func TestPopulation_SeedProducesExactlyN(t *testing.T) {
	ci.Parallel(t)

	idx := threeTaskIndex(t)
	resources := []*structs.Resource{
		{ID: "M1", ResourceType: structs.ResourceType{Kind: structs.ResourceKindPrimary}},
		{ID: "M2", ResourceType: structs.ResourceType{Kind: structs.ResourceKindPrimary}},
	}
	params := Params{N: 10, Seed: 1}
	pop := New(idx, resources, params, evaluatorFromMAVSum(), Options{})
	pop.Seed()
	require.Len(t, pop.Individuals(), 10)
	for _, g := range pop.Individuals() {
		require.True(t, g.Valid(idx))
	}
}

func TestPopulation_SeedEmptyIndexYieldsEmptyPopulation(t *testing.T) {
	ci.Parallel(t)

	idx, err := genome.BuildIndex(nil)
	require.NoError(t, err)
	pop := New(idx, nil, Params{N: 10}, evaluatorFromMAVSum(), Options{})
	pop.Seed()
	require.Empty(t, pop.Individuals())
}

func TestPopulation_EvolveImprovesOrHoldsBest(t *testing.T) {
	ci.Parallel(t)

	idx := threeTaskIndex(t)
	resources := []*structs.Resource{{ID: "M1"}, {ID: "M2"}}
	params := Params{
		N: 12, GMax: 15, EliteRatio: 0.25, TournamentK: 3,
		Window: 100, Theta: 0.0001,
		CrossoverKind: CrossoverPOX, MutationKind: MutationSwap,
		Seed: 42,
	}
	pop := New(idx, resources, params, evaluatorFromMAVSum(), Options{})
	pop.Seed()
	firstBest := pop.Statistics().Best

	pop.Evolve()

	require.NotNil(t, pop.Best())
	require.True(t, pop.Best().Fitness <= firstBest)
	require.True(t, pop.Best().Valid(idx))
	for _, g := range pop.Individuals() {
		require.True(t, g.Valid(idx))
	}
}

func TestPopulation_FewerThanTwoIndividualsSkipsCrossover(t *testing.T) {
	ci.Parallel(t)

	idx := threeTaskIndex(t)
	params := Params{N: 1, GMax: 3, EliteRatio: 1, Window: 100, Seed: 1}
	pop := New(idx, nil, params, evaluatorFromMAVSum(), Options{})
	pop.Seed()
	require.Len(t, pop.Individuals(), 1)

	pop.Evolve()
	require.Len(t, pop.Individuals(), 1)
}

// Converged mirrors spec.md §8's worked examples: a flat history of 5
// converges under window=5, theta=0.01; a steadily improving one does not.
func TestConverged_FlatHistory(t *testing.T) {
	ci.Parallel(t)

	pop := &Population{params: Params{Window: 5, Theta: 0.01}, history: []float64{100, 100, 100, 100, 100}}
	require.True(t, pop.Converged())
}

func TestConverged_ImprovingHistory(t *testing.T) {
	ci.Parallel(t)

	pop := &Population{params: Params{Window: 5, Theta: 0.01}, history: []float64{100, 90, 80, 70, 60}}
	require.False(t, pop.Converged())
}

func TestConverged_ZeroFirstValueConverges(t *testing.T) {
	ci.Parallel(t)

	pop := &Population{params: Params{Window: 3, Theta: 0.01}, history: []float64{0, 0, 0}}
	require.True(t, pop.Converged())
}

func TestConverged_InsufficientHistory(t *testing.T) {
	ci.Parallel(t)

	pop := &Population{params: Params{Window: 5, Theta: 0.01}, history: []float64{100, 100}}
	require.False(t, pop.Converged())
}

func TestChildRNG_DeterministicPerSlot(t *testing.T) {
	ci.Parallel(t)

	a := ChildRNG(7, 3, 2)
	b := ChildRNG(7, 3, 2)
	require.Equal(t, a.Int63(), b.Int63())

	c := ChildRNG(7, 3, 5)
	require.NotEqual(t, ChildRNG(7, 3, 2).Int63(), c.Int63())
}
