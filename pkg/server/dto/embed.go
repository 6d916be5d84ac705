package dto

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/soundprediction/rembed/pkg/dispatch"
	"github.com/soundprediction/rembed/pkg/types"
)

// Validation errors
var (
	ErrEmptyClientName = errors.New("client name cannot be empty")
	ErrEmptyConfig     = errors.New("config cannot be empty")
)

// RegisterClientRequest registers a client. Config is either a configuration
// string or an object of options.
type RegisterClientRequest struct {
	Name   string      `json:"name"`
	Config interface{} `json:"config"`
}

// Validate performs validation on RegisterClientRequest
func (r *RegisterClientRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrEmptyClientName
	}
	if r.Config == nil {
		return ErrEmptyConfig
	}
	return nil
}

// ClientsResponse lists registered clients with credentials masked.
type ClientsResponse struct {
	Clients []types.ClientDescriptor `json:"clients"`
}

// EmbedRequest embeds one text.
type EmbedRequest struct {
	Client string `json:"client" binding:"required"`
	Text   string `json:"text"`
}

// EmbedImageRequest embeds one base64 encoded image.
type EmbedImageRequest struct {
	Client string `json:"client" binding:"required"`
	Image  []byte `json:"image"`
	Prompt string `json:"prompt,omitempty"`
}

// EmbedBatchRequest embeds many texts.
type EmbedBatchRequest struct {
	Client string   `json:"client" binding:"required"`
	Texts  []string `json:"texts"`
}

// EmbedImagesBatchRequest embeds many base64 encoded images with one prompt.
type EmbedImagesBatchRequest struct {
	Client string   `json:"client" binding:"required"`
	Images [][]byte `json:"images"`
	Prompt string   `json:"prompt,omitempty"`
}

// EmbeddingResponse carries one vector as base64 encoded little-endian float32.
type EmbeddingResponse struct {
	Client     string `json:"client"`
	Embedding  string `json:"embedding"`
	Dimensions int    `json:"dimensions"`
}

// NewEmbeddingResponse builds an EmbeddingResponse from a vector.
func NewEmbeddingResponse(client string, v types.Vector) EmbeddingResponse {
	return EmbeddingResponse{
		Client:     client,
		Embedding:  base64.StdEncoding.EncodeToString(v),
		Dimensions: v.Dimensions(),
	}
}

// BatchItem is the outcome of one batch input.
type BatchItem struct {
	Index     int    `json:"index"`
	Embedding string `json:"embedding,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
	Error     string `json:"error,omitempty"`
}

// BatchStats summarizes a batch.
type BatchStats struct {
	Total        int     `json:"total"`
	Successful   int     `json:"successful"`
	Failed       int     `json:"failed"`
	ElapsedMs    int64   `json:"elapsed_ms"`
	Throughput   float64 `json:"throughput"`
	AvgPerItemMs float64 `json:"avg_per_item_ms"`
}

// BatchResponse returns results in input order.
type BatchResponse struct {
	JobID       string      `json:"job_id"`
	Client      string      `json:"client"`
	Concurrency int         `json:"concurrency"`
	Results     []BatchItem `json:"results"`
	Stats       BatchStats  `json:"stats"`
}

// NewBatchResponse converts a dispatch result.
func NewBatchResponse(res *dispatch.BatchResult) BatchResponse {
	items := make([]BatchItem, len(res.Results))
	for i, r := range res.Results {
		items[i] = BatchItem{Index: r.Index}
		if r.OK() {
			items[i].Embedding = base64.StdEncoding.EncodeToString(r.Embedding)
			continue
		}
		items[i].ErrorKind = r.ErrorKind()
		items[i].Error = r.Err.Error()
	}

	return BatchResponse{
		JobID:       res.JobID,
		Client:      res.Client,
		Concurrency: res.Concurrency,
		Results:     items,
		Stats: BatchStats{
			Total:        res.Stats.Total,
			Successful:   res.Stats.Successful,
			Failed:       res.Stats.Failed,
			ElapsedMs:    res.Stats.Elapsed.Milliseconds(),
			Throughput:   res.Stats.Throughput,
			AvgPerItemMs: float64(res.Stats.AvgPerItem.Microseconds()) / 1000,
		},
	}
}
