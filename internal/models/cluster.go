package models

import (
	"github.com/soltixdb/kcluster/internal/analytics/cluster"
)

// ClusterRequest is the body shared by every clustering, breakpoint and
// adjacency route. Either Values or Points carries the sequence; each route
// reads only the parameters it needs.
type ClusterRequest struct {
	Values []interface{}  `json:"values,omitempty"` // numbers; null elements are rejected
	Points []PointRequest `json:"points,omitempty"` // sorted by time before use

	K        int  `json:"k"`
	Seeds    int  `json:"seeds"`   // 0 uses the configured default
	Updates  int  `json:"updates"` // 0 uses the configured default
	Rank     *int `json:"rank,omitempty"`
	MinCount int  `json:"min_count"`

	Target    float64  `json:"target"`
	Middle    *float64 `json:"middle,omitempty"` // kdynamic central fraction
	Perc      *float64 `json:"perc,omitempty"`   // kband central fraction
	SDevs     float64  `json:"sdevs"`
	Num       int      `json:"num"`
	Threshold float64  `json:"threshold"`

	// Seed pins the random generator for a reproducible run
	Seed *uint64 `json:"seed,omitempty"`

	// Seeder names the seeding strategy for /v1/cluster/run
	Seeder string `json:"seeder,omitempty"`
}

// PointRequest is one timestamped value
type PointRequest struct {
	Time  string   `json:"time"` // RFC3339
	Value *float64 `json:"value"`
}

// StatsResponse carries a single cluster
type StatsResponse struct {
	Op      string        `json:"op"`
	Cluster cluster.Stats `json:"cluster"`
}

// StatsListResponse carries every cluster in index order
type StatsListResponse struct {
	Op       string          `json:"op"`
	Clusters []cluster.Stats `json:"clusters"`
}

// ValueResponse carries a scalar result
type ValueResponse struct {
	Op    string  `json:"op"`
	Value float64 `json:"value"`
}

// DynamicResponse carries the largest cluster and the cluster count chosen
type DynamicResponse struct {
	Op      string        `json:"op"`
	K       int           `json:"k"`
	Cluster cluster.Stats `json:"cluster"`
}

// BandResponse carries an outlier-band clustering
type BandResponse struct {
	Op       string          `json:"op"`
	K        int             `json:"k"`
	Labels   []int           `json:"labels"`
	Clusters []cluster.Stats `json:"clusters"`
}

// BreaksResponse carries gap positions, largest gap first
type BreaksResponse struct {
	Op     string `json:"op"`
	Breaks []int  `json:"breaks"`
}

// AdjacencyCountResponse carries the number of jumpy pairs
type AdjacencyCountResponse struct {
	Op    string `json:"op"`
	Count int    `json:"count"`
}

// AdjacencyDiffsResponse carries the relative difference of every pair
type AdjacencyDiffsResponse struct {
	Op    string    `json:"op"`
	Diffs []float64 `json:"diffs"`
}

// RunResponse carries a full assignment from a named seeder
type RunResponse struct {
	Op       string          `json:"op"`
	Seeder   string          `json:"seeder"`
	K        int             `json:"k"`
	Score    float64         `json:"score"`
	Labels   []int           `json:"labels"`
	Clusters []cluster.Stats `json:"clusters"`
}

// SeedersResponse lists the registered seeding strategies
type SeedersResponse struct {
	Seeders []string `json:"seeders"`
}
