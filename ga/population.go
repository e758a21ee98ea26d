// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package ga

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/iyulab/U-RAS/genome"
	"github.com/iyulab/U-RAS/structs"
	"github.com/iyulab/U-RAS/urasmetrics"
)

// convergenceEpsilon guards the convergence ratio's denominator against a
// zero first-in-window fitness (spec.md §4.7: "A zero first value yields
// convergence", handled as a special case before this is ever consulted).
const convergenceEpsilon = 1e-9

// Evaluator scores a Genome; lower is better. The typical implementation
// decodes the genome with the priority scheduler and returns its makespan
// (see scheduler.MakespanEvaluator).
type Evaluator func(*genome.Genome) float64

// Params bounds one evolutionary run, per spec.md §4.7.
type Params struct {
	N           int
	GMax        int
	EliteRatio  float64
	TournamentK int
	Window      int
	Theta       float64

	CrossoverKind CrossoverKind
	MutationKind  MutationKind

	// MutationRate is the probability a bred child receives an OSV
	// mutation; zero is treated as "always mutate", matching spec.md
	// §4.7 step 4's unconditional "apply mutation independently to each
	// child".
	MutationRate float64
	// MAVMutationRate is the probability a bred child additionally
	// receives a MAV mutation. Zero disables it, since spec.md documents
	// MAV mutation as an addition on top of the mandatory OSV mutation,
	// not a replacement for it.
	MAVMutationRate float64

	Seed int64
}

// Options configures optional, non-load-bearing instrumentation, mirroring
// scheduler.Options.
type Options struct {
	Logger  hclog.Logger
	Metrics urasmetrics.Sink
}

func (o Options) logger() hclog.Logger {
	if o.Logger == nil {
		return hclog.NewNullLogger()
	}
	return o.Logger
}

func (o Options) metrics() urasmetrics.Sink {
	return urasmetrics.Or(o.Metrics)
}

// Statistics is the per-generation fitness summary spec.md §4.7 requires.
type Statistics struct {
	Generation int
	Best       float64
	Worst      float64
	Mean       float64
	StdDev     float64
}

// Population owns the canonical activity Index shared read-only across
// every genome it holds (SPEC_FULL.md §4.5's design note), the current
// generation's individuals, and the evolutionary bookkeeping — best-seen,
// fitness history, generation counter — that survives across Evolve
// calls.
type Population struct {
	idx       *genome.Index
	resources []*structs.Resource
	params    Params
	evaluate  Evaluator
	opts      Options

	individuals []*genome.Genome
	generation  int
	best        *genome.Genome
	history     []float64
}

// New builds a Population. idx and resources ground the three seeding
// strategies; evaluate supplies fitness for every seeded and bred genome.
func New(idx *genome.Index, resources []*structs.Resource, params Params, evaluate Evaluator, opts Options) *Population {
	return &Population{idx: idx, resources: resources, params: params, evaluate: evaluate, opts: opts}
}

// Seed populates the Population with Params.N genomes: N/2 random, N/4
// load-balanced, N/4 shortest-time, the random share absorbing the
// rounding remainder so seeding always yields exactly N individuals, per
// spec.md §4.7. An empty index (no activities at all) yields an empty
// population, the documented empty-task-set edge case.
func (p *Population) Seed() {
	n := p.params.N
	if p.idx.Len() == 0 || n <= 0 {
		p.individuals = nil
		return
	}

	loadBalanced := n / 4
	shortestTime := n / 4
	random := n - loadBalanced - shortestTime

	rng := rand.New(rand.NewSource(p.params.Seed))
	individuals := make([]*genome.Genome, 0, n)
	for i := 0; i < random; i++ {
		individuals = append(individuals, genome.NewRandom(p.idx, rng))
	}
	for i := 0; i < loadBalanced; i++ {
		individuals = append(individuals, genome.NewLoadBalanced(p.idx, p.resources, rng))
	}
	for i := 0; i < shortestTime; i++ {
		individuals = append(individuals, genome.NewShortestTime(p.idx, p.resources, rng))
	}

	p.evaluateAll(individuals)
	p.individuals = individuals
}

func (p *Population) evaluateAll(individuals []*genome.Genome) {
	defer p.opts.metrics().MeasureSince([]string{"ga", "evaluate_batch"}, time.Now())
	for _, g := range individuals {
		g.Fitness = p.evaluate(g)
	}
	p.opts.metrics().IncrCounter([]string{"ga", "evaluations"}, float32(len(individuals)))
}

// Evolve runs generations until either Params.GMax is reached or Converged
// reports true, following spec.md §4.7's evolve() step sequence each
// generation.
func (p *Population) Evolve() {
	for gen := 0; gen < p.params.GMax; gen++ {
		if p.Converged() {
			p.opts.logger().Debug("ga: convergence reached", "generation", p.generation)
			return
		}
		p.step()
	}
}

// step performs one generation of spec.md §4.7's evolve(): sort ascending
// by fitness, track best-seen and history, copy the elite, then fill the
// rest via tournament selection, crossover, and mutation.
func (p *Population) step() {
	if len(p.individuals) == 0 {
		p.generation++
		return
	}

	sort.SliceStable(p.individuals, func(i, j int) bool {
		return p.individuals[i].Fitness < p.individuals[j].Fitness
	})

	if p.best == nil || p.individuals[0].Fitness < p.best.Fitness {
		p.best = p.individuals[0].Clone()
	}
	p.history = append(p.history, p.individuals[0].Fitness)

	target := len(p.individuals)
	eliteCount := int(math.Floor(float64(target) * p.params.EliteRatio))
	if eliteCount > target {
		eliteCount = target
	}

	next := make([]*genome.Genome, 0, target)
	for i := 0; i < eliteCount; i++ {
		next = append(next, p.individuals[i].Clone())
	}

	if len(p.individuals) < 2 {
		// Nothing to recombine: hold the population size steady by
		// cloning the sole individual, per spec.md §4.7's "population
		// with fewer than two individuals skips crossover".
		for len(next) < target {
			next = append(next, p.individuals[0].Clone())
		}
	} else {
		slot := 0
		for len(next) < target {
			rng := ChildRNG(p.params.Seed, p.generation, slot)
			slot++

			parent1 := Tournament(p.individuals, p.params.TournamentK, rng)
			parent2 := Tournament(p.individuals, p.params.TournamentK, rng)
			child1, child2 := Crossover(p.params.CrossoverKind, parent1, parent2, rng)
			child1 = p.mutate(child1, rng)
			child2 = p.mutate(child2, rng)

			next = append(next, child1)
			if len(next) < target {
				next = append(next, child2)
			}
		}
	}

	p.evaluateAll(next[eliteCount:])
	p.individuals = next
	p.generation++
}

func (p *Population) mutate(g *genome.Genome, rng *rand.Rand) *genome.Genome {
	child := g
	if p.params.MutationRate == 0 || rng.Float64() < p.params.MutationRate {
		child = Mutate(p.params.MutationKind, child, rng)
	}
	if p.params.MAVMutationRate > 0 && rng.Float64() < p.params.MAVMutationRate {
		child = MutateMAV(child, p.idx, rng)
	}
	return child
}

// Best returns the best-seen genome across the run so far (nil before the
// first generation completes).
func (p *Population) Best() *genome.Genome {
	return p.best
}

// Individuals returns the current generation, for inspection or a custom
// evolve loop built around a Population's bookkeeping.
func (p *Population) Individuals() []*genome.Genome {
	return p.individuals
}

// Generation returns the number of completed Evolve steps.
func (p *Population) Generation() int {
	return p.generation
}

// History returns the best-fitness-per-generation series Converged checks
// against.
func (p *Population) History() []float64 {
	return p.history
}

// Statistics returns the current generation's fitness summary: best,
// worst, mean, and population standard deviation, per spec.md §4.7.
func (p *Population) Statistics() Statistics {
	if len(p.individuals) == 0 {
		return Statistics{Generation: p.generation}
	}

	best, worst, sum := p.individuals[0].Fitness, p.individuals[0].Fitness, 0.0
	for _, g := range p.individuals {
		sum += g.Fitness
		if g.Fitness < best {
			best = g.Fitness
		}
		if g.Fitness > worst {
			worst = g.Fitness
		}
	}
	mean := sum / float64(len(p.individuals))

	var sumSq float64
	for _, g := range p.individuals {
		d := g.Fitness - mean
		sumSq += d * d
	}
	stddev := math.Sqrt(sumSq / float64(len(p.individuals)))

	return Statistics{Generation: p.generation, Best: best, Worst: worst, Mean: mean, StdDev: stddev}
}

// Converged reports whether the fitness history satisfies spec.md §4.7's
// test over its last Window entries: |first-last|/max(|first|, ε) below
// Theta. A zero first-in-window value is treated as converged outright.
func (p *Population) Converged() bool {
	w := p.params.Window
	if w <= 0 || len(p.history) < w {
		return false
	}
	window := p.history[len(p.history)-w:]
	first, last := window[0], window[len(window)-1]
	if first == 0 {
		return true
	}
	denom := math.Max(math.Abs(first), convergenceEpsilon)
	return math.Abs(first-last)/denom < p.params.Theta
}
