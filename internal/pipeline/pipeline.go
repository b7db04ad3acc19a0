// Package pipeline runs the full scenario compilation: expansion into
// instances, then per instance clustering, aggregation, model building,
// solving and validation, fanned out over a worker pool.
package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/vk/gridcap/internal/cluster"
	"github.com/vk/gridcap/internal/ctxlog"
	"github.com/vk/gridcap/internal/cutout"
	"github.com/vk/gridcap/internal/linerating"
	"github.com/vk/gridcap/internal/network"
	"github.com/vk/gridcap/internal/opt"
	"github.com/vk/gridcap/internal/profile"
	"github.com/vk/gridcap/internal/scenario"
	"github.com/vk/gridcap/internal/solver"
	"github.com/vk/gridcap/internal/temporal"
	"github.com/vk/gridcap/internal/validate"
)

// Options configure one pipeline run.
type Options struct {
	// Workers caps the number of instances solved concurrently. Zero means
	// one worker per CPU.
	Workers int
	// SolveTimeout bounds each instance's solver run. Zero means no limit.
	SolveTimeout time.Duration

	// DataDir holds cutout CSV data; instances fall back to synthetic
	// weather for cutouts not found there.
	DataDir string
	// BaseDir, PlantsCSV and CustomPlantsCSV point at on-disk network
	// inputs, see network.AssembleOptions.
	BaseDir         string
	PlantsCSV       string
	CustomPlantsCSV string

	// Solver overrides the scenario's solver when set. Tests inject a fake
	// through this.
	Solver solver.Solver
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU()
}

// Run executes the whole scenario. Shared inputs (cutouts, base network,
// renewable profiles) are prepared once; each instance then runs
// independently, so one failing instance never disturbs its siblings. The
// report covers every instance either way; the returned error aggregates
// the failed ones.
func Run(ctx context.Context, cfg *scenario.Config, opts Options) (*Report, error) {
	logger := ctxlog.FromContext(ctx)
	report := &Report{StartedAt: time.Now().UTC(), Workers: opts.workers()}

	instances, err := cfg.Expand()
	if err != nil {
		return nil, err
	}
	logger.Info("Scenario expanded.", "instances", len(instances))

	shared, err := prepare(ctx, cfg, opts)
	if err != nil {
		return nil, err
	}

	report.Instances = make([]InstanceResult, len(instances))
	jobs := make(chan int, len(instances))
	for i := range instances {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < opts.workers(); w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			workerLogger := logger.With("workerID", workerID)
			for i := range jobs {
				inst := instances[i]
				workerLogger.Debug("Worker picked up instance.", "instance", inst.Name)
				report.Instances[i] = runInstance(ctxlog.WithLogger(ctx, workerLogger), cfg, opts, shared, inst)
			}
		}(w)
	}
	wg.Wait()

	report.FinishedAt = time.Now().UTC()

	var failed []string
	var rootCause error
	for i := range report.Instances {
		res := &report.Instances[i]
		if res.Status != StatusOK {
			failed = append(failed, res.Name)
			if rootCause == nil {
				rootCause = res.err
			}
		}
	}
	if rootCause != nil {
		return report, fmt.Errorf("run failed for %s: %w", strings.Join(failed, ", "), rootCause)
	}
	logger.Info("All instances completed.", "instances", len(instances))
	return report, nil
}

// sharedInputs are prepared once and read concurrently by all instances.
type sharedInputs struct {
	store    *cutout.Store
	base     *network.Network
	profiles map[string]*profile.TechnologyProfile
}

func prepare(ctx context.Context, cfg *scenario.Config, opts Options) (*sharedInputs, error) {
	store, err := cutout.NewStore(ctx, cfg, opts.DataDir)
	if err != nil {
		return nil, err
	}

	base, err := network.Assemble(cfg, network.AssembleOptions{
		BaseDir:         opts.BaseDir,
		PlantsCSV:       opts.PlantsCSV,
		CustomPlantsCSV: opts.CustomPlantsCSV,
	})
	if err != nil {
		return nil, err
	}

	profiles := map[string]*profile.TechnologyProfile{}
	for _, tech := range cfg.Electricity.RenewableCarriers {
		prof, err := profile.Generate(ctx, tech, cfg.Renewables[tech], store, cfg.Snapshots)
		if err != nil {
			return nil, err
		}
		profiles[tech] = prof
	}

	return &sharedInputs{store: store, base: base, profiles: profiles}, nil
}

// runInstance drives one instance through the stage sequence. Failures are
// folded into the result instead of propagating, keeping them local to the
// instance.
func runInstance(ctx context.Context, cfg *scenario.Config, opts Options, shared *sharedInputs, inst *scenario.Instance) InstanceResult {
	logger := ctxlog.FromContext(ctx).With("instance", inst.Name)
	started := time.Now()

	result := InstanceResult{ID: inst.ID, Name: inst.Name, Clusters: inst.Clusters, Opts: inst.Opts}
	fail := func(err error) InstanceResult {
		logger.Error("Instance failed.", "error", err)
		result.Status = StatusFailed
		result.Error = err.Error()
		result.err = err
		result.RuntimeMS = time.Since(started).Milliseconds()
		return result
	}

	clustered, err := cluster.Cluster(ctx, shared.base, inst.Clusters, cfg.ExcludeCarrierSet())
	if err != nil {
		return fail(err)
	}

	agg, err := temporal.Build(cfg.Snapshots.Snapshots(), inst.Resolution)
	if err != nil {
		return fail(err)
	}
	result.Blocks = agg.Blocks()

	ratings, err := linerating.Compute(ctx, clustered.Network, cfg.Lines.DynamicLineRating, shared.store, cfg.Snapshots)
	if err != nil {
		return fail(err)
	}
	result.StaticRatingFallbacks = ratings.StaticFallbacks

	problem, err := opt.Build(ctx, opt.BuildInput{
		Name:           inst.Name,
		Net:            clustered.Network,
		Agg:            agg,
		Profiles:       shared.profiles,
		Ratings:        ratings,
		CO2LimitEnable: inst.CO2LimitEnable,
		CO2Limit:       inst.CO2Limit,
	})
	if err != nil {
		return fail(err)
	}

	slv := opts.Solver
	if slv == nil {
		slv, err = solver.New(cfg.Solving.Solver)
		if err != nil {
			return fail(err)
		}
	}

	solveCtx := ctx
	if opts.SolveTimeout > 0 {
		var cancel context.CancelFunc
		solveCtx, cancel = context.WithTimeout(ctx, opts.SolveTimeout)
		defer cancel()
	}
	solved, err := slv.Solve(solveCtx, problem)
	if err != nil {
		return fail(err)
	}
	result.Objective = solved.Objective
	result.SolverStatus = solved.Status
	result.OptimalCapacityMW = optimalCapacities(clustered.Network, solved.Values)

	if err := validate.CheckObjective(cfg.Solving.CheckObjective, solved.Objective); err != nil {
		return fail(err)
	}

	result.Status = StatusOK
	result.RuntimeMS = time.Since(started).Milliseconds()
	logger.Info("Instance solved.",
		"objective", solved.Objective,
		"blocks", result.Blocks,
		"runtime_ms", result.RuntimeMS)
	return result
}

// optimalCapacities sums solved extendable capacity per carrier.
func optimalCapacities(net *network.Network, values map[string]float64) map[string]float64 {
	out := map[string]float64{}
	for _, gen := range net.Generators {
		if !gen.Extendable {
			continue
		}
		if v, ok := values[opt.CapacityVariable(gen.ID)]; ok {
			out[gen.Carrier] += v
		}
	}
	for _, su := range net.StorageUnits {
		if !su.Extendable {
			continue
		}
		if v, ok := values[opt.CapacityVariable(su.ID)]; ok {
			out[su.Carrier] += v
		}
	}
	return out
}
