package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"mediastat/config"
	"mediastat/internal/apperror"
	"mediastat/internal/dto"
	"mediastat/pkg/httpclient"
	"mediastat/pkg/logger"
	"mediastat/pkg/ratelimit"
)

// unauthenticated GitHub clients get 60 requests an hour
const githubRequestsPerMinute = 1

type GithubRepository interface {
	ListReleases(ctx context.Context) ([]dto.GithubRelease, error)
	DownloadAsset(ctx context.Context, asset dto.GithubAsset) (string, error)
}

type githubRepository struct {
	httpClient httpclient.HTTPClient
	limiter    *ratelimit.TokenLimiter
	cfg        *config.Config
	logger     *logger.Logger
}

func NewGithubRepository(cfg *config.Config, log *logger.Logger) GithubRepository {
	client := httpclient.New(cfg.Github.BaseURL, cfg.Github.Timeout, "")
	client.SetHeader("Accept", "application/vnd.github+json")
	return &githubRepository{
		httpClient: client,
		limiter:    ratelimit.NewTokenLimiter(githubRequestsPerMinute),
		cfg:        cfg,
		logger:     log,
	}
}

func (r *githubRepository) ListReleases(ctx context.Context) ([]dto.GithubRelease, error) {
	if err := r.limiter.Wait(ctx, 1); err != nil {
		return nil, err
	}

	var releases []dto.GithubRelease
	endpoint := fmt.Sprintf("/repos/%s/releases", r.cfg.Github.Repo)
	resp, err := r.httpClient.Get(ctx, endpoint, map[string]string{"per_page": "20"}, nil, &releases)
	if err != nil {
		return nil, apperror.Transport("list releases", err)
	}
	if !resp.IsSuccess() {
		return nil, apperror.Transport("list releases", fmt.Errorf("github returned status %d", resp.StatusCode))
	}
	return releases, nil
}

// DownloadAsset stores the asset under the download dir and returns its path.
func (r *githubRepository) DownloadAsset(ctx context.Context, asset dto.GithubAsset) (string, error) {
	dir := r.cfg.App.DownloadDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}

	target := filepath.Join(dir, filepath.Base(asset.Name))
	resp, err := r.httpClient.Download(ctx, asset.BrowserDownloadURL, target)
	if err != nil {
		return "", apperror.Transport("download asset", err)
	}
	if !resp.IsSuccess() {
		_ = os.Remove(target)
		return "", apperror.Transport("download asset", fmt.Errorf("github returned status %d", resp.StatusCode))
	}

	r.logger.InfoContext(ctx, "Downloaded release asset",
		logger.StringField("asset", asset.Name),
		logger.StringField("path", target),
	)
	return target, nil
}
