package domain

import "time"

// Cluster is a frozen taste cluster produced by training.
// Clusters never reference each other; adjacency is computed on demand from centroids.
// Centroid is the mean of the members for a converged model; a run stopped by its iteration
// cap keeps the centroid of the last update instead.
type Cluster struct {
	ID          int           `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Centroid    FeatureVector `gorm:"type:text;not null" json:"centroid"`
	SongCount   int           `gorm:"not null;default:0" json:"song_count"`
	Description string        `gorm:"type:text" json:"description"`
	Mood        string        `gorm:"type:text" json:"mood"`
	Emoji       string        `gorm:"type:text" json:"emoji"`
	Snapshot    string        `gorm:"type:text;index:idx_clusters_snapshot" json:"snapshot"`
	CreatedAt   time.Time     `json:"created_at"`
}

// TableName returns the database table name for Cluster.
func (Cluster) TableName() string {
	return "clusters"
}

// ClusterMatch is a cluster ranked against a query vector.
type ClusterMatch struct {
	Cluster
	Distance    float64      `json:"distance"`
	Confidence  float64      `json:"confidence"`
	SampleSongs []ScoredSong `json:"sample_songs,omitempty"`
}

// MatchResult is the outcome of matching a query vector against a trained model.
type MatchResult struct {
	MatchedCluster   ClusterMatch   `json:"matched_cluster"`
	AdjacentClusters []ClusterMatch `json:"adjacent_clusters"`
	Songs            []ScoredSong   `json:"songs"`
}
