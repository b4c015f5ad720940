package job

import (
	"context"
	"errors"
	"sync"

	"mediastat/internal/repository"
)

var ErrMediaServerNotConfigured = errors.New("media server is not configured")

// clientHolder keeps the media server client of the current execution so
// Dispose can close it.
type clientHolder struct {
	mu       sync.Mutex
	client   repository.MediaServerClient
	clients  repository.MediaServerClientFactory
	settings Settings
}

func (h *clientHolder) open(ctx context.Context) (repository.MediaServerClient, error) {
	settings, err := h.settings.GetMediaServer(ctx)
	if err != nil {
		return nil, err
	}
	if !settings.Configured() {
		return nil, ErrMediaServerNotConfigured
	}

	client := h.clients.New(settings.ServerAddress, settings.AccessToken)
	h.mu.Lock()
	if h.client != nil {
		h.client.Close()
	}
	h.client = client
	h.mu.Unlock()
	return client, nil
}

func (h *clientHolder) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.client != nil {
		h.client.Close()
		h.client = nil
	}
}
