package domain

import "time"

// RawDescriptors is the per-song audio analysis record supplied by an external analyzer.
// Nil fields are treated as missing.
type RawDescriptors struct {
	Tempo            *float64 `json:"tempo,omitempty"`    // beats per minute
	Loudness         *float64 `json:"loudness,omitempty"` // decibels, typically negative
	Energy           *float64 `json:"energy,omitempty"`
	Danceability     *float64 `json:"danceability,omitempty"`
	Acousticness     *float64 `json:"acousticness,omitempty"`
	Valence          *float64 `json:"valence,omitempty"`
	Instrumentalness *float64 `json:"instrumentalness,omitempty"`
	Speechiness      *float64 `json:"speechiness,omitempty"`
	Liveness         *float64 `json:"liveness,omitempty"`
	Key              *int     `json:"key,omitempty"`  // pitch class 0-11
	Mode             *int     `json:"mode,omitempty"` // 1 major, 0 minor
}

// Song represents a catalog song with its normalized features and cluster assignment.
type Song struct {
	ID          string `gorm:"type:text;primaryKey" json:"id"`
	SourceType  string `gorm:"type:text;not null;index:idx_songs_source,unique" json:"source_type"`
	SourceID    string `gorm:"type:text;not null;index:idx_songs_source,unique" json:"source_id"`
	Title       string `gorm:"type:text;not null" json:"title"`
	Artist      string `gorm:"type:text;not null" json:"artist"`
	Album       string `gorm:"type:text" json:"album,omitempty"`
	ImageURL    string `gorm:"type:text" json:"image_url,omitempty"`
	PreviewURL  string `gorm:"type:text" json:"preview_url,omitempty"`
	ExternalURL string `gorm:"type:text" json:"external_url,omitempty"`
	DurationMs  int    `json:"duration_ms,omitempty"`

	BPM   float64 `json:"bpm"`
	Key   string  `gorm:"type:text" json:"key"`
	Scale string  `gorm:"type:text" json:"scale"`

	Energy           float64 `json:"energy"`
	Danceability     float64 `json:"danceability"`
	Acousticness     float64 `json:"acousticness"`
	Valence          float64 `json:"valence"`
	Instrumentalness float64 `json:"instrumentalness"`
	Loudness         float64 `json:"loudness"`
	TempoNormalized  float64 `gorm:"column:bpm_normalized" json:"bpm_normalized"`
	Speechiness      float64 `json:"speechiness"`
	Liveness         float64 `json:"liveness"`

	ClusterID *int      `gorm:"index:idx_songs_cluster" json:"cluster_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Song.
func (Song) TableName() string {
	return "songs"
}

// Features returns the song's FeatureVector.
func (s Song) Features() FeatureVector {
	return FeatureVector{
		FeatureEnergy:           s.Energy,
		FeatureDanceability:     s.Danceability,
		FeatureAcousticness:     s.Acousticness,
		FeatureValence:          s.Valence,
		FeatureInstrumentalness: s.Instrumentalness,
		FeatureLoudness:         s.Loudness,
		FeatureTempo:            s.TempoNormalized,
		FeatureSpeechiness:      s.Speechiness,
		FeatureLiveness:         s.Liveness,
	}
}

// SetFeatures copies a FeatureVector into the song's feature columns.
func (s *Song) SetFeatures(v FeatureVector) {
	s.Energy = v[FeatureEnergy]
	s.Danceability = v[FeatureDanceability]
	s.Acousticness = v[FeatureAcousticness]
	s.Valence = v[FeatureValence]
	s.Instrumentalness = v[FeatureInstrumentalness]
	s.Loudness = v[FeatureLoudness]
	s.TempoNormalized = v[FeatureTempo]
	s.Speechiness = v[FeatureSpeechiness]
	s.Liveness = v[FeatureLiveness]
}

// ScoredSong is a song ranked against a query vector.
type ScoredSong struct {
	Song
	Distance        float64 `json:"distance"`
	SimilarityScore float64 `json:"similarity_score"`
}
