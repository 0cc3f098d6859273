// internal/snapshot/elasticsearch.go
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"jobmatch-workers/internal/common/logger"
	"jobmatch-workers/internal/matching"
	"jobmatch-workers/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
)

const DefaultJobsIndex = "jobs"

// ElasticsearchJobLoader reads job snapshots from the search index that
// backs the listing pages.
type ElasticsearchJobLoader struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewElasticsearchJobLoader(client *elasticsearch.Client, index string, log logger.Logger) *ElasticsearchJobLoader {
	if index == "" {
		index = DefaultJobsIndex
	}
	return &ElasticsearchJobLoader{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "snapshot.elasticsearch", "index": index}),
	}
}

type getResponse struct {
	Found  bool             `json:"found"`
	Source models.JobRecord `json:"_source"`
	Error  json.RawMessage  `json:"error,omitempty"`
}

func (l *ElasticsearchJobLoader) LoadJobSnapshot(ctx context.Context, jobID string) (*matching.JobSnapshot, error) {
	res, err := l.client.Get(l.index, jobID, l.client.Get.WithContext(ctx))
	if err != nil {
		return nil, queryError(models.QueryTypeJobDocument, err)
	}
	defer res.Body.Close()

	var doc getResponse
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		return nil, queryError(models.QueryTypeJobDocument, fmt.Errorf("decode response: %w", err))
	}

	// A missing index also answers 404, but with an error body.
	if res.StatusCode == http.StatusNotFound && len(doc.Error) == 0 {
		return nil, fmt.Errorf("job %s: %w", jobID, matching.ErrNotFound)
	}
	if res.IsError() {
		return nil, queryError(models.QueryTypeJobDocument, fmt.Errorf("status %s: %s", res.Status(), doc.Error))
	}
	if !doc.Found {
		return nil, fmt.Errorf("job %s: %w", jobID, matching.ErrNotFound)
	}

	if doc.Source.ID == "" {
		doc.Source.ID = jobID
	}
	return JobFromRecord(&doc.Source), nil
}
