package repository

import (
	"context"
	"crypto/tls"
	"fmt"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/timmy/musicmatch/internal/domain"
)

const upsertBatchSize = 256

// QdrantConnectionConfig holds configuration for the Qdrant connection.
type QdrantConnectionConfig struct {
	Host       string
	Port       int
	Collection string
	APIKey     string // Qdrant Cloud API key; enables TLS
	UseTLS     bool
}

func apiKeyInterceptor(apiKey string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		ctx = metadata.AppendToOutgoingContext(ctx, "api-key", apiKey)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// QdrantRepository indexes song feature vectors for nearest-neighbour lookups.
// Points use the song ID as their UUID and Euclidean distance, matching the in-memory matcher.
type QdrantRepository struct {
	conn           *grpc.ClientConn
	pointsClient   pb.PointsClient
	collectClient  pb.CollectionsClient
	collectionName string
}

// NewQdrantRepository connects to local Qdrant (insecure) or Qdrant Cloud (TLS + API key).
func NewQdrantRepository(cfg *QdrantConnectionConfig) (*QdrantRepository, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	var opts []grpc.DialOption
	if cfg.UseTLS || cfg.APIKey != "" {
		creds := credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS13})
		opts = append(opts, grpc.WithTransportCredentials(creds))
		if cfg.APIKey != "" {
			opts = append(opts, grpc.WithUnaryInterceptor(apiKeyInterceptor(cfg.APIKey)))
		}
	} else {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to qdrant: %w", err)
	}

	return &QdrantRepository{
		conn:           conn,
		pointsClient:   pb.NewPointsClient(conn),
		collectClient:  pb.NewCollectionsClient(conn),
		collectionName: cfg.Collection,
	}, nil
}

// Close closes the gRPC connection.
func (r *QdrantRepository) Close() error {
	return r.conn.Close()
}

// EnsureCollection creates the song collection if missing and checks its vector size.
func (r *QdrantRepository) EnsureCollection(ctx context.Context) error {
	info, err := r.collectClient.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: r.collectionName,
	})
	if err == nil {
		if size, ok := collectionVectorSize(info.GetResult()); ok && size != domain.NumFeatures {
			return fmt.Errorf("collection %s has vector size %d, expected %d", r.collectionName, size, domain.NumFeatures)
		}
		return nil
	}

	_, err = r.collectClient.Create(ctx, &pb.CreateCollection{
		CollectionName: r.collectionName,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     domain.NumFeatures,
					Distance: pb.Distance_Euclid,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

func collectionVectorSize(info *pb.CollectionInfo) (uint64, bool) {
	vectors := info.GetConfig().GetParams().GetVectorsConfig()
	if vectors == nil {
		return 0, false
	}
	if single := vectors.GetParams(); single != nil && single.GetSize() > 0 {
		return single.GetSize(), true
	}
	for _, params := range vectors.GetParamsMap().GetMap() {
		if params.GetSize() > 0 {
			return params.GetSize(), true
		}
	}
	return 0, false
}

// UpsertSongs writes songs with their cluster labels, tagged with the snapshot version.
func (r *QdrantRepository) UpsertSongs(ctx context.Context, songs []domain.Song, snapshot string) error {
	for start := 0; start < len(songs); start += upsertBatchSize {
		end := min(start+upsertBatchSize, len(songs))
		points := make([]*pb.PointStruct, 0, end-start)
		for _, s := range songs[start:end] {
			points = append(points, songPoint(s, snapshot))
		}

		wait := true
		if _, err := r.pointsClient.Upsert(ctx, &pb.UpsertPoints{
			CollectionName: r.collectionName,
			Wait:           &wait,
			Points:         points,
		}); err != nil {
			return fmt.Errorf("failed to upsert songs: %w", err)
		}
	}
	return nil
}

func songPoint(s domain.Song, snapshot string) *pb.PointStruct {
	vec := s.Features()
	data := make([]float32, len(vec))
	for i, v := range vec {
		data[i] = float32(v)
	}

	payload := map[string]*pb.Value{
		"song_id":  {Kind: &pb.Value_StringValue{StringValue: s.ID}},
		"title":    {Kind: &pb.Value_StringValue{StringValue: s.Title}},
		"artist":   {Kind: &pb.Value_StringValue{StringValue: s.Artist}},
		"snapshot": {Kind: &pb.Value_StringValue{StringValue: snapshot}},
	}
	if s.ClusterID != nil {
		payload["cluster_id"] = &pb.Value{Kind: &pb.Value_IntegerValue{IntegerValue: int64(*s.ClusterID)}}
	}

	return &pb.PointStruct{
		Id: &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: s.ID}},
		Vectors: &pb.Vectors{
			VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: data}},
		},
		Payload: payload,
	}
}

// DeleteStale removes points not written by the given snapshot.
func (r *QdrantRepository) DeleteStale(ctx context.Context, snapshot string) error {
	_, err := r.pointsClient.Delete(ctx, &pb.DeletePoints{
		CollectionName: r.collectionName,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Filter{
				Filter: &pb.Filter{
					MustNot: []*pb.Condition{keywordCondition("snapshot", snapshot)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete stale points: %w", err)
	}
	return nil
}

// SongHit is one nearest-neighbour result; Distance is Euclidean.
type SongHit struct {
	SongID    string
	Distance  float64
	ClusterID *int
}

// SearchFilters narrows a nearest-neighbour query.
type SearchFilters struct {
	ClusterID *int
	ExcludeID string
}

// SearchNearest returns up to limit songs closest to vector, nearest first.
func (r *QdrantRepository) SearchNearest(ctx context.Context, vector domain.FeatureVector, limit int, filters *SearchFilters) ([]SongHit, error) {
	data := make([]float32, len(vector))
	for i, v := range vector {
		data[i] = float32(v)
	}

	req := &pb.SearchPoints{
		CollectionName: r.collectionName,
		Vector:         data,
		Limit:          uint64(limit),
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
		},
	}
	if filters != nil {
		req.Filter = buildFilter(filters)
	}

	resp, err := r.pointsClient.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	hits := make([]SongHit, len(resp.GetResult()))
	for i, scored := range resp.GetResult() {
		hits[i] = SongHit{
			SongID:   scored.GetId().GetUuid(),
			Distance: float64(scored.GetScore()),
		}
		if v, ok := scored.GetPayload()["cluster_id"]; ok {
			label := int(v.GetIntegerValue())
			hits[i].ClusterID = &label
		}
	}
	return hits, nil
}

func keywordCondition(key, value string) *pb.Condition {
	return &pb.Condition{
		ConditionOneOf: &pb.Condition_Field{
			Field: &pb.FieldCondition{
				Key:   key,
				Match: &pb.Match{MatchValue: &pb.Match_Keyword{Keyword: value}},
			},
		},
	}
}

func buildFilter(filters *SearchFilters) *pb.Filter {
	filter := &pb.Filter{}

	if filters.ClusterID != nil {
		filter.Must = append(filter.Must, &pb.Condition{
			ConditionOneOf: &pb.Condition_Field{
				Field: &pb.FieldCondition{
					Key:   "cluster_id",
					Match: &pb.Match{MatchValue: &pb.Match_Integer{Integer: int64(*filters.ClusterID)}},
				},
			},
		})
	}

	if filters.ExcludeID != "" {
		filter.MustNot = append(filter.MustNot, &pb.Condition{
			ConditionOneOf: &pb.Condition_HasId{
				HasId: &pb.HasIdCondition{
					HasId: []*pb.PointId{{PointIdOptions: &pb.PointId_Uuid{Uuid: filters.ExcludeID}}},
				},
			},
		})
	}

	if len(filter.Must) == 0 && len(filter.MustNot) == 0 {
		return nil
	}
	return filter
}
