package services

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/soltixdb/kcluster/internal/analytics"
	"github.com/soltixdb/kcluster/internal/analytics/adjacency"
	"github.com/soltixdb/kcluster/internal/analytics/cluster"
	"github.com/soltixdb/kcluster/internal/config"
	"github.com/soltixdb/kcluster/internal/logging"
	"github.com/soltixdb/kcluster/internal/models"
)

// Operation names
const (
	OpKPlusPlus      = "kplusplus"
	OpKPlusPlusAll   = "kplusplus_all"
	OpKSimple        = "ksimple"
	OpKSimpleAll     = "ksimple_all"
	OpKNear          = "knear"
	OpKNearAvg       = "knear_avg"
	OpKDynamic       = "kdynamic"
	OpKBand          = "kband"
	OpKBig           = "kbig"
	OpAdjacencyCount = "adjacency_count"
	OpAdjacencyDiffs = "adjacency_diffs"
	OpRun            = "run"
)

// Operations lists every operation accepted by Execute
var Operations = []string{
	OpKPlusPlus, OpKPlusPlusAll,
	OpKSimple, OpKSimpleAll,
	OpKNear, OpKNearAvg,
	OpKDynamic, OpKBand, OpKBig,
	OpAdjacencyCount, OpAdjacencyDiffs,
	OpRun,
}

// ClusterService runs clustering, breakpoint and adjacency operations
type ClusterService struct {
	logger *logging.Logger
	cfg    config.ClusteringConfig

	mu   sync.Mutex
	root *rand.Rand
}

// NewClusterService creates a new ClusterService. A zero cfg.RandomSeed seeds
// the generator from entropy.
func NewClusterService(logger *logging.Logger, cfg config.ClusteringConfig) *ClusterService {
	seed := cfg.RandomSeed
	if seed == 0 {
		seed = rand.Uint64()
	}

	return &ClusterService{
		logger: logger,
		cfg:    cfg,
		root:   rand.New(rand.NewPCG(seed, seed^streamMix)),
	}
}

// streamMix separates the PCG stream from the seed word
const streamMix = 0x9e3779b97f4a7c15

// ClusterRequest carries a sequence and every parameter an operation may read
type ClusterRequest struct {
	// Values is any slice accepted by analytics.ToSequence
	Values interface{}

	// Points is used when Values is nil; it is ordered by time first
	Points analytics.TimeSeriesData

	K        int
	Seeds    int
	Updates  int
	Rank     *int
	MinCount int

	Target    float64
	Middle    *float64
	Perc      *float64
	SDevs     float64
	Num       int
	Threshold float64

	Seed *uint64

	// Seeder names a registered seeding strategy for OpRun; empty means kplusplus
	Seeder string
}

// BandResult is an outlier-band clustering
type BandResult struct {
	K        int
	Labels   []int
	Clusters []cluster.Stats
}

// Seeders lists the registered seeding strategies
func (s *ClusterService) Seeders() []string {
	return cluster.ListSeeders()
}

// Execute runs op and returns its response model
func (s *ClusterService) Execute(ctx context.Context, op string, req *ClusterRequest) (interface{}, error) {
	switch op {
	case OpKPlusPlus:
		st, err := s.KPlusPlus(ctx, req)
		if err != nil {
			return nil, err
		}
		return models.StatsResponse{Op: op, Cluster: st}, nil

	case OpKPlusPlusAll:
		all, err := s.KPlusPlusAll(ctx, req)
		if err != nil {
			return nil, err
		}
		return models.StatsListResponse{Op: op, Clusters: all}, nil

	case OpKSimple:
		st, err := s.KSimple(ctx, req)
		if err != nil {
			return nil, err
		}
		return models.StatsResponse{Op: op, Cluster: st}, nil

	case OpKSimpleAll:
		all, err := s.KSimpleAll(ctx, req)
		if err != nil {
			return nil, err
		}
		return models.StatsListResponse{Op: op, Clusters: all}, nil

	case OpKNear:
		st, err := s.KNear(ctx, req)
		if err != nil {
			return nil, err
		}
		return models.StatsResponse{Op: op, Cluster: st}, nil

	case OpKNearAvg:
		avg, err := s.KNearAvg(ctx, req)
		if err != nil {
			return nil, err
		}
		return models.ValueResponse{Op: op, Value: avg}, nil

	case OpKDynamic:
		res, err := s.KDynamic(ctx, req)
		if err != nil {
			return nil, err
		}
		return models.DynamicResponse{Op: op, K: res.K, Cluster: res.Stats}, nil

	case OpKBand:
		res, err := s.KBand(ctx, req)
		if err != nil {
			return nil, err
		}
		return models.BandResponse{Op: op, K: res.K, Labels: res.Labels, Clusters: res.Clusters}, nil

	case OpKBig:
		breaks, err := s.Breaks(ctx, req)
		if err != nil {
			return nil, err
		}
		return models.BreaksResponse{Op: op, Breaks: breaks}, nil

	case OpAdjacencyCount:
		count, err := s.AdjacencyCount(ctx, req)
		if err != nil {
			return nil, err
		}
		return models.AdjacencyCountResponse{Op: op, Count: count}, nil

	case OpAdjacencyDiffs:
		diffs, err := s.AdjacencyDiffs(ctx, req)
		if err != nil {
			return nil, err
		}
		return models.AdjacencyDiffsResponse{Op: op, Diffs: diffs}, nil

	case OpRun:
		a, seeder, err := s.Run(ctx, req)
		if err != nil {
			return nil, err
		}
		return models.RunResponse{
			Op:       op,
			Seeder:   seeder,
			K:        a.K,
			Score:    a.Score,
			Labels:   a.Labels,
			Clusters: a.AllStats(),
		}, nil
	}

	return nil, NewServiceErrorWithDetails(CodeUnknownOperation, "unknown operation: "+op,
		map[string]interface{}{"available_operations": Operations})
}

// KPlusPlus returns the cluster at the requested size rank (largest by default)
func (s *ClusterService) KPlusPlus(ctx context.Context, req *ClusterRequest) (cluster.Stats, error) {
	values, err := s.sequence(OpKPlusPlus, req)
	if err != nil {
		return cluster.Stats{}, err
	}

	rank := cluster.RankLargest
	if req.Rank != nil {
		rank = *req.Rank
	}
	seeds, updates := s.trials(req)

	start := time.Now()
	st, err := cluster.KPlusPlus(values, cluster.KPlusPlusParams{
		K:       req.K,
		Seeds:   seeds,
		Updates: updates,
		Rank:    rank,
		Rand:    s.rng(req.Seed),
	})
	if err != nil {
		return cluster.Stats{}, fromAnalytics(OpKPlusPlus, err)
	}

	s.logRun(ctx, OpKPlusPlus, start, "n", len(values), "k", req.K, "seeds", seeds, "updates", updates)
	return st, nil
}

// KPlusPlusAll returns every cluster of a k-means++ run
func (s *ClusterService) KPlusPlusAll(ctx context.Context, req *ClusterRequest) ([]cluster.Stats, error) {
	values, err := s.sequence(OpKPlusPlusAll, req)
	if err != nil {
		return nil, err
	}
	seeds, updates := s.trials(req)

	start := time.Now()
	all, err := cluster.KPlusPlusAll(values, cluster.KPlusPlusParams{
		K:       req.K,
		Seeds:   seeds,
		Updates: updates,
		Rand:    s.rng(req.Seed),
	})
	if err != nil {
		return nil, fromAnalytics(OpKPlusPlusAll, err)
	}

	s.logRun(ctx, OpKPlusPlusAll, start, "n", len(values), "k", req.K, "seeds", seeds, "updates", updates)
	return all, nil
}

// KSimple returns the largest cluster of a biggest-gap run
func (s *ClusterService) KSimple(ctx context.Context, req *ClusterRequest) (cluster.Stats, error) {
	values, err := s.sequence(OpKSimple, req)
	if err != nil {
		return cluster.Stats{}, err
	}

	start := time.Now()
	st, err := cluster.KSimple(values, req.K)
	if err != nil {
		return cluster.Stats{}, fromAnalytics(OpKSimple, err)
	}

	s.logRun(ctx, OpKSimple, start, "n", len(values), "k", req.K)
	return st, nil
}

// KSimpleAll returns every cluster of a biggest-gap run
func (s *ClusterService) KSimpleAll(ctx context.Context, req *ClusterRequest) ([]cluster.Stats, error) {
	values, err := s.sequence(OpKSimpleAll, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	all, err := cluster.KSimpleAll(values, req.K)
	if err != nil {
		return nil, fromAnalytics(OpKSimpleAll, err)
	}

	s.logRun(ctx, OpKSimpleAll, start, "n", len(values), "k", req.K)
	return all, nil
}

// KNear returns the cluster whose mean is nearest req.Target
func (s *ClusterService) KNear(ctx context.Context, req *ClusterRequest) (cluster.Stats, error) {
	values, err := s.sequence(OpKNear, req)
	if err != nil {
		return cluster.Stats{}, err
	}

	start := time.Now()
	st, err := cluster.KNear(values, s.nearParams(req))
	if err != nil {
		return cluster.Stats{}, fromAnalytics(OpKNear, err)
	}

	s.logRun(ctx, OpKNear, start, "n", len(values), "k", req.K, "target", req.Target)
	return st, nil
}

// KNearAvg returns the mean of the cluster chosen by KNear
func (s *ClusterService) KNearAvg(ctx context.Context, req *ClusterRequest) (float64, error) {
	values, err := s.sequence(OpKNearAvg, req)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	avg, err := cluster.KNearAvg(values, s.nearParams(req))
	if err != nil {
		return 0, fromAnalytics(OpKNearAvg, err)
	}

	s.logRun(ctx, OpKNearAvg, start, "n", len(values), "k", req.K, "target", req.Target)
	return avg, nil
}

// KDynamic picks k from the outlier tails and returns the largest cluster
func (s *ClusterService) KDynamic(ctx context.Context, req *ClusterRequest) (cluster.DynamicResult, error) {
	if req.Middle == nil {
		return cluster.DynamicResult{}, NewServiceErrorWithDetails(CodeMissingParameter,
			"middle is required", map[string]interface{}{"op": OpKDynamic})
	}
	values, err := s.sequence(OpKDynamic, req)
	if err != nil {
		return cluster.DynamicResult{}, err
	}

	seeds := req.Seeds
	if seeds <= 0 {
		seeds = s.cfg.DynamicSeeds
	}
	updates := req.Updates
	if updates <= 0 {
		updates = s.cfg.DynamicUpdates
	}
	sdevs := req.SDevs
	if sdevs == 0 {
		sdevs = s.cfg.DynamicSDevs
	}

	start := time.Now()
	res, err := cluster.KDynamic(values, cluster.KDynamicParams{
		Middle:  *req.Middle,
		SDevs:   sdevs,
		Seeds:   seeds,
		Updates: updates,
		Rand:    s.rng(req.Seed),
	})
	if err != nil {
		return cluster.DynamicResult{}, fromAnalytics(OpKDynamic, err)
	}

	s.logRun(ctx, OpKDynamic, start, "n", len(values), "k", res.K, "seeds", seeds, "updates", updates)
	return res, nil
}

// KBand clusters around the midpoint and the outlier boundaries
func (s *ClusterService) KBand(ctx context.Context, req *ClusterRequest) (*BandResult, error) {
	if req.Perc == nil {
		return nil, NewServiceErrorWithDetails(CodeMissingParameter,
			"perc is required", map[string]interface{}{"op": OpKBand})
	}
	values, err := s.sequence(OpKBand, req)
	if err != nil {
		return nil, err
	}

	sdevs := req.SDevs
	if sdevs == 0 {
		sdevs = s.cfg.BandSDevs
	}

	start := time.Now()
	a, err := cluster.KBand(values, *req.Perc, sdevs)
	if err != nil {
		return nil, fromAnalytics(OpKBand, err)
	}

	s.logRun(ctx, OpKBand, start, "n", len(values), "k", a.K, "score", a.Score)
	return &BandResult{K: a.K, Labels: a.Labels, Clusters: a.AllStats()}, nil
}

// Breaks returns the positions of the req.Num biggest adjacent gaps
func (s *ClusterService) Breaks(ctx context.Context, req *ClusterRequest) ([]int, error) {
	values, err := s.sequence(OpKBig, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	breaks, err := cluster.KBig(values, req.Num)
	if err != nil {
		return nil, fromAnalytics(OpKBig, err)
	}

	s.logRun(ctx, OpKBig, start, "n", len(values), "num", req.Num)
	return breaks, nil
}

// Run clusters with the seeder named in req.Seeder and returns the full
// assignment together with the resolved seeder name.
func (s *ClusterService) Run(ctx context.Context, req *ClusterRequest) (*cluster.Assignment, string, error) {
	values, err := s.sequence(OpRun, req)
	if err != nil {
		return nil, "", err
	}

	name := req.Seeder
	if name == "" {
		name = cluster.SeederKPlusPlus
	}
	seeder, err := cluster.GetSeeder(name)
	if err != nil {
		return nil, "", fromAnalytics(OpRun, err)
	}
	seeds, updates := s.trials(req)

	start := time.Now()
	a, err := cluster.Run(values, cluster.Options{
		K:       req.K,
		Seeds:   seeds,
		Updates: updates,
		Seeder:  seeder,
		Rand:    s.rng(req.Seed),
	})
	if err != nil {
		return nil, "", fromAnalytics(OpRun, err)
	}

	s.logRun(ctx, OpRun, start, "n", len(values), "k", req.K, "seeder", name, "seeds", seeds, "score", a.Score)
	return a, name, nil
}

// AdjacencyCount counts adjacent pairs whose relative difference exceeds req.Threshold
func (s *ClusterService) AdjacencyCount(ctx context.Context, req *ClusterRequest) (int, error) {
	values, err := s.sequence(OpAdjacencyCount, req)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	count, err := adjacency.Count(values, req.Threshold)
	if err != nil {
		return 0, fromAnalytics(OpAdjacencyCount, err)
	}

	s.logRun(ctx, OpAdjacencyCount, start, "n", len(values), "threshold", req.Threshold, "count", count)
	return count, nil
}

// AdjacencyDiffs returns the relative difference of every adjacent pair
func (s *ClusterService) AdjacencyDiffs(ctx context.Context, req *ClusterRequest) ([]float64, error) {
	values, err := s.sequence(OpAdjacencyDiffs, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	diffs, err := adjacency.Diffs(values)
	if err != nil {
		return nil, fromAnalytics(OpAdjacencyDiffs, err)
	}

	s.logRun(ctx, OpAdjacencyDiffs, start, "n", len(values))
	return diffs, nil
}

// sequence converts the request input and enforces the configured size cap
func (s *ClusterService) sequence(op string, req *ClusterRequest) ([]float64, error) {
	if req == nil {
		return nil, NewServiceErrorWithDetails(CodeInvalidInput, "request is required",
			map[string]interface{}{"op": op})
	}

	var (
		values []float64
		err    error
	)
	switch {
	case req.Values != nil:
		values, err = analytics.ToSequence(req.Values)
	case len(req.Points) > 0:
		values = req.Points.Sequence()
	default:
		return nil, NewServiceErrorWithDetails(CodeInsufficientData, "values or points are required",
			map[string]interface{}{"op": op})
	}
	if err != nil {
		return nil, fromAnalytics(op, err)
	}

	if !s.cfg.AcceptsLength(len(values)) {
		return nil, NewServiceErrorWithDetails(CodeTooManyPoints, "sequence exceeds max_points",
			map[string]interface{}{"op": op, "points": len(values), "max_points": s.cfg.MaxPoints})
	}
	return values, nil
}

// trials applies the configured seeds and updates defaults
func (s *ClusterService) trials(req *ClusterRequest) (int, int) {
	seeds := req.Seeds
	if seeds <= 0 {
		seeds = s.cfg.DefaultSeeds
	}
	updates := req.Updates
	if updates <= 0 {
		updates = s.cfg.DefaultUpdates
	}
	return seeds, updates
}

func (s *ClusterService) nearParams(req *ClusterRequest) cluster.KNearParams {
	seeds, updates := s.trials(req)
	return cluster.KNearParams{
		K:        req.K,
		Seeds:    seeds,
		Updates:  updates,
		Target:   req.Target,
		MinCount: req.MinCount,
		Rand:     s.rng(req.Seed),
	}
}

// rng returns a generator owned by one call. A pinned seed gives a
// reproducible stream; otherwise a fresh stream is drawn from the root.
func (s *ClusterService) rng(seed *uint64) *rand.Rand {
	if seed != nil {
		return rand.New(rand.NewPCG(*seed, *seed^streamMix))
	}

	s.mu.Lock()
	a, b := s.root.Uint64(), s.root.Uint64()
	s.mu.Unlock()

	return rand.New(rand.NewPCG(a, b))
}

func (s *ClusterService) logRun(ctx context.Context, op string, start time.Time, fields ...interface{}) {
	if !s.logger.Enabled(zerolog.DebugLevel) {
		return
	}
	latency := time.Since(start)
	fields = append([]interface{}{"op", op}, fields...)
	fields = append(fields, "latency_ms", latency.Milliseconds())
	s.logger.WithContext(ctx).Debug("Clustering completed", fields...)
}
