package search

import (
	"context"
	"fmt"
	"log"

	"github.com/pinecone-io/go-pinecone/v3/pinecone"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
	"google.golang.org/protobuf/types/known/structpb"
)

const catalogNamespace = "catalog-items"

// Match is one ranked candidate from the vector index. IDs have the form
// "<kind>_<numericId>", e.g. "problem_42" or "lesson_7".
type Match struct {
	ID         string
	Score      float32
	Title      string
	Difficulty string
}

type Service struct {
	client    *pinecone.Client
	embedder  embeddings.Embedder
	indexName string
}

func NewService(apiKey, openaiAPIKey, indexName string) (*Service, error) {
	log.Printf("[INFO] Initializing vector search service")

	pc, err := pinecone.NewClient(pinecone.NewClientParams{
		ApiKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Pinecone client: %w", err)
	}

	llm, err := openai.New(
		openai.WithModel("gpt-4o-mini"),
		openai.WithToken(openaiAPIKey),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	return &Service{
		client:    pc,
		embedder:  embedder,
		indexName: indexName,
	}, nil
}

// QueryItems embeds the prompt and returns the top candidates of the given
// item type and difficulty, ranked by similarity.
func (s *Service) QueryItems(ctx context.Context, prompt, itemType, difficulty string, topK int) ([]Match, error) {
	log.Printf("[INFO] Querying catalog for type=%s difficulty=%s", itemType, difficulty)

	idxConn, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}

	queryEmbedding, err := s.embedder.EmbedQuery(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	filter, err := structpb.NewStruct(map[string]any{
		"type":       map[string]any{"$eq": itemType},
		"difficulty": map[string]any{"$eq": difficulty},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build metadata filter: %w", err)
	}

	result, err := idxConn.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
		Vector:          queryEmbedding,
		TopK:            uint32(topK),
		MetadataFilter:  filter,
		IncludeValues:   false,
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query vectors: %w", err)
	}

	var matches []Match
	for _, m := range result.Matches {
		match := Match{
			ID:    m.Vector.Id,
			Score: m.Score,
		}
		if m.Vector.Metadata != nil {
			metadata := m.Vector.Metadata.AsMap()
			if title, ok := metadata["title"].(string); ok {
				match.Title = title
			}
			if difficulty, ok := metadata["difficulty"].(string); ok {
				match.Difficulty = difficulty
			}
		}
		matches = append(matches, match)
	}

	log.Printf("[INFO] Retrieved %d catalog matches", len(matches))
	return matches, nil
}

// FetchDifficulties returns the difficulty metadata of the given item ids.
// Items missing from the index or lacking difficulty metadata are skipped.
func (s *Service) FetchDifficulties(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	idxConn, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}

	result, err := idxConn.FetchVectors(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch vectors: %w", err)
	}

	var difficulties []string
	for _, vector := range result.Vectors {
		if vector.Metadata == nil {
			continue
		}
		metadata := vector.Metadata.AsMap()
		if difficulty, ok := metadata["difficulty"].(string); ok && difficulty != "" {
			difficulties = append(difficulties, difficulty)
		}
	}

	return difficulties, nil
}

func (s *Service) connect(ctx context.Context) (*pinecone.IndexConnection, error) {
	idxDesc, err := s.client.DescribeIndex(ctx, s.indexName)
	if err != nil {
		return nil, fmt.Errorf("failed to describe index: %w", err)
	}

	idxConn, err := s.client.Index(pinecone.NewIndexConnParams{
		Host:      idxDesc.Host,
		Namespace: catalogNamespace,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create index connection: %w", err)
	}

	return idxConn, nil
}
