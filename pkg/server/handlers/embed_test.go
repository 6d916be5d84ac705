package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/rembed"
	"github.com/soundprediction/rembed/pkg/config"
	"github.com/soundprediction/rembed/pkg/provider"
	"github.com/soundprediction/rembed/pkg/server/dto"
	"github.com/soundprediction/rembed/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client, err := rembed.New(config.Default(), logger)
	require.NoError(t, err)
	require.NoError(t, client.Register("text", "mock::m"))
	require.NoError(t, client.Register("vision", map[string]string{"format": "mock", "model": "v", "embedding_model": "e"}))

	h := NewEmbedHandler(client, logger)
	r := gin.New()
	r.GET("/api/v1/clients", h.ListClients)
	r.POST("/api/v1/clients", h.RegisterClient)
	r.POST("/api/v1/embed", h.EmbedText)
	r.POST("/api/v1/embed/image", h.EmbedImage)
	r.POST("/api/v1/embed/batch", h.EmbedBatch)
	r.POST("/api/v1/embed/images/batch", h.EmbedImagesBatch)
	return r
}

func do(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			data, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(data)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestEmbedText(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/embed", dto.EmbedRequest{Client: "text", Text: "hello"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp dto.EmbeddingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, provider.DefaultMockDimensions, resp.Dimensions)

	raw, err := base64.StdEncoding.DecodeString(resp.Embedding)
	require.NoError(t, err)
	assert.Equal(t, provider.MockEmbedding("hello", provider.DefaultMockDimensions), types.Vector(raw).Floats())
}

func TestEmbedErrors(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name     string
		path     string
		body     interface{}
		status   int
		errorKey string
	}{
		{"missing client field", "/api/v1/embed", dto.EmbedRequest{Text: "x"}, http.StatusBadRequest, "invalid_request"},
		{"invalid json", "/api/v1/embed", "{", http.StatusBadRequest, "invalid_request"},
		{"unknown client", "/api/v1/embed", dto.EmbedRequest{Client: "nope", Text: "x"}, http.StatusNotFound, types.KindClientNotRegistered},
		{"text on multimodal client", "/api/v1/embed", dto.EmbedRequest{Client: "vision", Text: "x"}, http.StatusNotFound, types.KindClientNotRegistered},
		{"empty text", "/api/v1/embed", dto.EmbedRequest{Client: "text"}, http.StatusBadRequest, types.KindEmptyInput},
		{"malformed image", "/api/v1/embed/image", dto.EmbedImageRequest{Client: "vision", Image: []byte("nope")}, http.StatusUnprocessableEntity, types.KindMalformedImage},
		{"empty batch", "/api/v1/embed/batch", dto.EmbedBatchRequest{Client: "text", Texts: []string{}}, http.StatusBadRequest, types.KindEmptyBatch},
		{"empty image batch", "/api/v1/embed/images/batch", dto.EmbedImagesBatchRequest{Client: "vision"}, http.StatusBadRequest, types.KindEmptyBatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())

			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.errorKey, resp.Error)
		})
	}
}

func TestEmbedImage(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/embed/image", dto.EmbedImageRequest{Client: "vision", Image: pngHeader})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp dto.EmbeddingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, provider.DefaultMockDimensions, resp.Dimensions)
}

func TestEmbedBatch_MixedResults(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/embed/batch", dto.EmbedBatchRequest{Client: "text", Texts: []string{"a", "", "c"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp dto.BatchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 3)
	assert.NotEmpty(t, resp.Results[0].Embedding)
	assert.Empty(t, resp.Results[1].Embedding)
	assert.Equal(t, types.KindEmptyInput, resp.Results[1].ErrorKind)
	assert.Equal(t, 2, resp.Results[2].Index)
	assert.Equal(t, 2, resp.Stats.Successful)
	assert.Equal(t, 1, resp.Stats.Failed)
	assert.NotEmpty(t, resp.JobID)
}

func TestEmbedImagesBatch(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/embed/images/batch", dto.EmbedImagesBatchRequest{
		Client: "vision",
		Images: [][]byte{pngHeader, []byte("bad")},
		Prompt: "What is shown?",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp dto.BatchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Stats.Successful)
	assert.Equal(t, types.KindMalformedImage, resp.Results[1].ErrorKind)
}

func TestRegisterAndListClients(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/clients", map[string]interface{}{
		"name":   "structured",
		"config": map[string]interface{}{"format": "mock", "model": "m", "max_concurrent_requests": 2},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var desc types.ClientDescriptor
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &desc))
	assert.Equal(t, 2, desc.MaxConcurrentRequests)

	w = do(t, r, http.MethodPost, "/api/v1/clients", dto.RegisterClientRequest{Name: "secret", Config: "openai:sk-abcdefghijkl"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "sk-abcdefghijkl")

	w = do(t, r, http.MethodPost, "/api/v1/clients", dto.RegisterClientRequest{Name: "bad", Config: "::"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/clients", dto.RegisterClientRequest{Config: "mock"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/clients", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list dto.ClientsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	names := make([]string, len(list.Clients))
	for i, c := range list.Clients {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"secret", "structured", "text", "vision"}, names)
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{types.NewMalformedConfigError("x"), http.StatusBadRequest},
		{types.ErrEmptyInput, http.StatusBadRequest},
		{&types.ClientNotRegisteredError{Name: "x"}, http.StatusNotFound},
		{&types.MalformedImageError{Reason: "x"}, http.StatusUnprocessableEntity},
		{types.NewProviderError(types.FormatOpenAI, types.ProviderRequestFailed, "", nil), http.StatusBadGateway},
		{types.NewProviderError(types.FormatOpenAI, types.ProviderUnavailable, "", nil), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, statusForError(tt.err), tt.err.Error())
	}
}
