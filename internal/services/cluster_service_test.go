package services

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soltixdb/kcluster/internal/analytics"
	"github.com/soltixdb/kcluster/internal/config"
	"github.com/soltixdb/kcluster/internal/logging"
	"github.com/soltixdb/kcluster/internal/models"
)

func newTestClusterService(mutate func(*config.ClusteringConfig)) *ClusterService {
	cfg := config.DefaultConfig().Clustering
	cfg.RandomSeed = 1234
	if mutate != nil {
		mutate(&cfg)
	}
	return NewClusterService(logging.NewNop(), cfg)
}

func requireCode(t *testing.T, err error, code string) *ServiceError {
	t.Helper()
	require.Error(t, err)
	var svcErr *ServiceError
	require.True(t, errors.As(err, &svcErr), "expected *ServiceError, got %T", err)
	assert.Equal(t, code, svcErr.Code)
	return svcErr
}

func ptr[T any](v T) *T {
	return &v
}

func TestClusterService_KSimpleTwoGroups(t *testing.T) {
	svc := newTestClusterService(nil)

	res, err := svc.Execute(context.Background(), OpKSimpleAll, &ClusterRequest{
		Values: []float64{1, 2, 3, 10, 11, 12},
		K:      2,
	})
	require.NoError(t, err)

	list, ok := res.(models.StatsListResponse)
	require.True(t, ok)
	require.Len(t, list.Clusters, 2)
	assert.Equal(t, OpKSimpleAll, list.Op)
	assert.Equal(t, 3, list.Clusters[0].Count)
	assert.InDelta(t, 2.0, list.Clusters[0].Mean, 1e-12)
	assert.InDelta(t, 0.816, list.Clusters[0].StdDev, 1e-3)
	assert.InDelta(t, 11.0, list.Clusters[1].Mean, 1e-12)
}

func TestClusterService_PointsAreOrderedByTime(t *testing.T) {
	svc := newTestClusterService(nil)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// slice order is shuffled; time order is 1,2,3,10,11,12
	points := analytics.TimeSeriesData{
		{Time: base.Add(5 * time.Minute), Value: 12},
		{Time: base, Value: 1},
		{Time: base.Add(4 * time.Minute), Value: 11},
		{Time: base.Add(time.Minute), Value: 2},
		{Time: base.Add(3 * time.Minute), Value: 10},
		{Time: base.Add(2 * time.Minute), Value: 3},
	}

	breaks, err := svc.Breaks(context.Background(), &ClusterRequest{Points: points, Num: 1})
	require.NoError(t, err)
	assert.Equal(t, []int{2}, breaks)
}

func TestClusterService_InputErrors(t *testing.T) {
	svc := newTestClusterService(func(c *config.ClusteringConfig) { c.MaxPoints = 3 })
	ctx := context.Background()

	tests := []struct {
		name string
		req  *ClusterRequest
		code string
	}{
		{"nil request", nil, CodeInvalidInput},
		{"no input", &ClusterRequest{K: 1}, CodeInsufficientData},
		{"null element", &ClusterRequest{Values: []interface{}{1.0, nil}, K: 1}, CodeInvalidInput},
		{"string element", &ClusterRequest{Values: []interface{}{1.0, "x"}, K: 1}, CodeUnsupportedType},
		{"empty values", &ClusterRequest{Values: []float64{}, K: 1}, CodeInsufficientData},
		{"too many points", &ClusterRequest{Values: []float64{1, 2, 3, 4}, K: 1}, CodeTooManyPoints},
		{"k too large", &ClusterRequest{Values: []float64{1, 2}, K: 3}, CodeInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.KSimple(ctx, tt.req)
			svcErr := requireCode(t, err, tt.code)
			assert.Equal(t, OpKSimple, svcErr.Details["op"])
		})
	}
}

func TestClusterService_UnknownOperation(t *testing.T) {
	svc := newTestClusterService(nil)
	_, err := svc.Execute(context.Background(), "kmedoids", &ClusterRequest{Values: []float64{1}})
	svcErr := requireCode(t, err, CodeUnknownOperation)
	assert.Equal(t, Operations, svcErr.Details["available_operations"])
}

func TestClusterService_PinnedSeedIsReproducible(t *testing.T) {
	svc := newTestClusterService(nil)
	values := []float64{5, 3, 9, 1, 14, 2, 8, 13, 7, 4, 22, 21}
	req := &ClusterRequest{Values: values, K: 3, Seeds: 3, Updates: 5, Seed: ptr(uint64(77))}

	a, err := svc.KPlusPlusAll(context.Background(), req)
	require.NoError(t, err)
	b, err := svc.KPlusPlusAll(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestClusterService_KPlusPlusRank(t *testing.T) {
	svc := newTestClusterService(nil)
	values := []float64{1, 1, 1, 1, 100, 100}

	largest, err := svc.KPlusPlus(context.Background(), &ClusterRequest{Values: values, K: 2})
	require.NoError(t, err)
	assert.Equal(t, 4, largest.Count)

	smallest, err := svc.KPlusPlus(context.Background(), &ClusterRequest{Values: values, K: 2, Rank: ptr(0)})
	require.NoError(t, err)
	assert.Equal(t, 2, smallest.Count)

	_, err = svc.KPlusPlus(context.Background(), &ClusterRequest{Values: values, K: 2, Rank: ptr(5)})
	requireCode(t, err, CodeInvalidParameter)
}

func TestClusterService_KNear(t *testing.T) {
	svc := newTestClusterService(nil)
	values := []float64{1, 1, 1, 1, 100, 100}

	st, err := svc.KNear(context.Background(), &ClusterRequest{Values: values, K: 2, Target: 80})
	require.NoError(t, err)
	assert.InDelta(t, 100.0, st.Mean, 1e-12)

	avg, err := svc.KNearAvg(context.Background(), &ClusterRequest{Values: values, K: 2, Target: 80, MinCount: 3})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, avg, 1e-12)

	_, err = svc.KNear(context.Background(), &ClusterRequest{Values: values, K: 2, MinCount: 10})
	requireCode(t, err, CodeInsufficientData)
}

func TestClusterService_KDynamic(t *testing.T) {
	svc := newTestClusterService(nil)
	values := []float64{0, 10, 10, 10, 10, 10, 10, 100}

	_, err := svc.KDynamic(context.Background(), &ClusterRequest{Values: values})
	requireCode(t, err, CodeMissingParameter)

	res, err := svc.Execute(context.Background(), OpKDynamic, &ClusterRequest{Values: values, Middle: ptr(0.5)})
	require.NoError(t, err)
	dyn := res.(models.DynamicResponse)
	assert.Equal(t, 3, dyn.K)
	assert.Equal(t, 6, dyn.Cluster.Count)

	_, err = svc.KDynamic(context.Background(), &ClusterRequest{Values: values, Middle: ptr(2.0)})
	requireCode(t, err, CodeInvalidParameter)
}

func TestClusterService_KBand(t *testing.T) {
	svc := newTestClusterService(nil)
	values := []float64{0, 10, 10, 10, 10, 10, 10, 100}

	_, err := svc.KBand(context.Background(), &ClusterRequest{Values: values})
	requireCode(t, err, CodeMissingParameter)

	band, err := svc.KBand(context.Background(), &ClusterRequest{Values: values, Perc: ptr(0.5)})
	require.NoError(t, err)
	assert.Equal(t, 3, band.K)
	assert.Equal(t, []int{1, 0, 0, 0, 0, 0, 0, 2}, band.Labels)
	require.Len(t, band.Clusters, 3)
	assert.Equal(t, 6, band.Clusters[0].Count)
}

func TestClusterService_BreaksAndAdjacency(t *testing.T) {
	svc := newTestClusterService(nil)
	ctx := context.Background()

	breaks, err := svc.Breaks(ctx, &ClusterRequest{Values: []int64{5, 1, 9, 2}, Num: 1})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, breaks)

	count, err := svc.AdjacencyCount(ctx, &ClusterRequest{Values: []float64{10, 10, 10, 10}})
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	_, err = svc.AdjacencyCount(ctx, &ClusterRequest{Values: []float64{1, 2}, Threshold: -1})
	requireCode(t, err, CodeInvalidParameter)

	diffs, err := svc.AdjacencyDiffs(ctx, &ClusterRequest{Values: []float64{10, 20, 5}})
	require.NoError(t, err)
	assert.Len(t, diffs, 3)

	_, err = svc.AdjacencyDiffs(ctx, &ClusterRequest{Values: []float64{1}})
	requireCode(t, err, CodeInsufficientData)
}

func TestClusterService_ConcurrentRuns(t *testing.T) {
	svc := newTestClusterService(nil)
	values := []float64{5, 3, 9, 1, 14, 2, 8, 13, 7, 4, 22, 21}

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			all, err := svc.KPlusPlusAll(context.Background(), &ClusterRequest{Values: values, K: 3})
			if err != nil {
				errs <- err
				return
			}
			total := 0
			for _, st := range all {
				total += st.Count
			}
			if total != len(values) {
				errs <- errors.New("cluster counts do not sum to the sequence length")
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestClusterService_Seeders(t *testing.T) {
	svc := newTestClusterService(nil)
	assert.Equal(t, []string{"biggest_gap", "kplusplus"}, svc.Seeders())
}

func TestClusterService_LogsRunWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.DefaultConfig().Clustering
	svc := NewClusterService(logging.NewWithWriter(&buf, zerolog.DebugLevel), cfg)

	ctx := logging.WithRequestID(context.Background(), "req-42")
	_, err := svc.Execute(ctx, OpKBig, &ClusterRequest{Values: []float64{5, 1, 9, 2}, Num: 1})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Clustering completed")
	assert.Contains(t, out, `"op":"kbig"`)
	assert.Contains(t, out, `"request_id":"req-42"`)

	buf.Reset()
	quiet := NewClusterService(logging.NewWithWriter(&buf, zerolog.InfoLevel), cfg)
	_, err = quiet.Execute(ctx, OpKBig, &ClusterRequest{Values: []float64{5, 1, 9, 2}, Num: 1})
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestClusterService_RunResolvesSeederByName(t *testing.T) {
	svc := newTestClusterService(nil)
	values := []float64{1, 2, 3, 10, 11, 12}

	res, err := svc.Execute(context.Background(), OpRun, &ClusterRequest{Values: values, K: 2, Seeder: "biggest_gap"})
	require.NoError(t, err)

	run, ok := res.(models.RunResponse)
	require.True(t, ok)
	assert.Equal(t, "biggest_gap", run.Seeder)
	assert.Equal(t, []int{0, 0, 0, 1, 1, 1}, run.Labels)
	assert.InDelta(t, 3379.0, run.Score, 1e-9)
	require.Len(t, run.Clusters, 2)

	res, err = svc.Execute(context.Background(), OpRun, &ClusterRequest{Values: values, K: 2, Seed: ptr(uint64(3))})
	require.NoError(t, err)
	assert.Equal(t, "kplusplus", res.(models.RunResponse).Seeder)

	_, err = svc.Execute(context.Background(), OpRun, &ClusterRequest{Values: values, K: 2, Seeder: "jenks"})
	svcErr := requireCode(t, err, CodeInvalidParameter)
	assert.Equal(t, OpRun, svcErr.Details["op"])
}
