package feedback

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	opensearch "github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"promptrouter/internal/model"
	"promptrouter/internal/telemetry"
)

// Document is one feedback submission. Written once, never updated.
type Document struct {
	Timestamp    string              `json:"timestamp"`
	Thumbs       string              `json:"thumbs"`
	Model        string              `json:"model"`
	Provider     string              `json:"provider"`
	MessageIndex int                 `json:"message_index"`
	FeedbackText string              `json:"feedback_text"`
	ChatSnapshot []model.ChatMessage `json:"chat_snapshot"`
	ID           string              `json:"id"`
}

type Store interface {
	Insert(ctx context.Context, doc Document) error
}

const feedbackMapping = `{
  "settings": {
    "index": {
      "number_of_shards": 1,
      "number_of_replicas": 0
    }
  },
  "mappings": {
    "properties": {
      "timestamp": {"type": "date"},
      "thumbs": {"type": "keyword"},
      "model": {"type": "keyword"},
      "provider": {"type": "keyword"},
      "message_index": {"type": "integer"},
      "feedback_text": {"type": "text"},
      "id": {"type": "keyword"}
    }
  }
}`

type OpenSearchStore struct {
	client *opensearch.Client
	index  string
}

func NewOpenSearchStore(host string, port int, index string) (*OpenSearchStore, error) {
	client, err := opensearch.NewClient(opensearch.Config{
		Addresses: []string{fmt.Sprintf("http://%s:%d", host, port)},
	})
	if err != nil {
		return nil, err
	}
	return &OpenSearchStore{client: client, index: index}, nil
}

// EnsureIndex creates the feedback index if it is missing. OpenSearch tends
// to come up after the app in compose setups, so connection failures are
// retried a few times before giving up.
func (s *OpenSearchStore) EnsureIndex(ctx context.Context) error {
	const maxRetries = 5
	const retryDelay = 5 * time.Second

	log := telemetry.L().With().Str("index", s.index).Logger()

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(retryDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		exists := opensearchapi.IndicesExistsRequest{Index: []string{s.index}}
		res, err := exists.Do(ctx, s.client)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt+1).Msg("opensearch_unreachable")
			lastErr = err
			continue
		}
		res.Body.Close()
		if res.StatusCode == 200 {
			log.Info().Msg("feedback_index_exists")
			return nil
		}

		create := opensearchapi.IndicesCreateRequest{
			Index: s.index,
			Body:  strings.NewReader(feedbackMapping),
		}
		cres, err := create.Do(ctx, s.client)
		if err != nil {
			lastErr = err
			continue
		}
		body := cres.String()
		cres.Body.Close()
		if cres.IsError() {
			// concurrent boot may have won the race
			if strings.Contains(body, "resource_already_exists_exception") {
				return nil
			}
			lastErr = errors.New("create index: " + cres.Status())
			continue
		}
		log.Info().Msg("feedback_index_created")
		return nil
	}
	return fmt.Errorf("opensearch not reachable after %d attempts: %w", maxRetries, lastErr)
}

func (s *OpenSearchStore) Insert(ctx context.Context, doc Document) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	req := opensearchapi.IndexRequest{
		Index:      s.index,
		DocumentID: doc.ID,
		Body:       bytes.NewReader(b),
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return errors.New("opensearch index: " + res.Status())
	}
	return nil
}
