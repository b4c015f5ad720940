package service

import (
	"context"
	"errors"
	"runtime"
	"strings"

	"mediastat/config"
	"mediastat/internal/dto"
	"mediastat/internal/repository"
	"mediastat/pkg/logger"

	"golang.org/x/mod/semver"
)

var ErrNoUpdateAsset = errors.New("release has no asset for this platform")

// UpdateService finds newer releases and downloads their asset. Installing
// the download is left to the operator.
type UpdateService interface {
	CheckForUpdate(ctx context.Context) (*dto.UpdateResult, error)
	DownloadUpdate(ctx context.Context, update *dto.UpdateResult) (string, error)
}

type updateService struct {
	cfg        *config.Config
	log        *logger.Logger
	githubRepo repository.GithubRepository
	settings   SettingsService
	goos       string
	goarch     string
}

func NewUpdateService(cfg *config.Config, log *logger.Logger, githubRepo repository.GithubRepository, settings SettingsService) UpdateService {
	return &updateService{
		cfg:        cfg,
		log:        log,
		githubRepo: githubRepo,
		settings:   settings,
		goos:       runtime.GOOS,
		goarch:     runtime.GOARCH,
	}
}

func canonicalVersion(v string) string {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

func (u *updateService) CheckForUpdate(ctx context.Context) (*dto.UpdateResult, error) {
	settings, err := u.settings.GetUpdate(ctx)
	if err != nil {
		return nil, err
	}
	releases, err := u.githubRepo.ListReleases(ctx)
	if err != nil {
		return nil, err
	}

	current := canonicalVersion(u.cfg.App.Version)
	result := &dto.UpdateResult{CurrentVersion: strings.TrimPrefix(current, "v")}
	allowPrerelease := settings.UpdateTrain != "" && settings.UpdateTrain != defaultUpdateTrain

	var best *dto.GithubRelease
	bestVersion := current
	for i, release := range releases {
		if release.Draft || (release.Prerelease && !allowPrerelease) {
			continue
		}
		version := canonicalVersion(release.TagName)
		if !semver.IsValid(version) {
			u.log.DebugContext(ctx, "Skipping release with invalid version", logger.StringField("tag", release.TagName))
			continue
		}
		if semver.Compare(version, bestVersion) > 0 {
			best = &releases[i]
			bestVersion = version
		}
	}
	if best == nil {
		return result, nil
	}

	result.IsUpdateAvailable = true
	result.AvailableVersion = strings.TrimPrefix(bestVersion, "v")
	result.ReleaseURL = best.HtmlURL
	result.Asset = u.pickAsset(best.Assets)
	return result, nil
}

// pickAsset prefers an asset named for both OS and architecture, then one for the OS only.
func (u *updateService) pickAsset(assets []dto.GithubAsset) *dto.GithubAsset {
	var osOnly *dto.GithubAsset
	for i, a := range assets {
		name := strings.ToLower(a.Name)
		if !strings.Contains(name, u.goos) {
			continue
		}
		if strings.Contains(name, u.goarch) {
			return &assets[i]
		}
		if osOnly == nil {
			osOnly = &assets[i]
		}
	}
	return osOnly
}

func (u *updateService) DownloadUpdate(ctx context.Context, update *dto.UpdateResult) (string, error) {
	if update == nil || update.Asset == nil {
		return "", ErrNoUpdateAsset
	}
	path, err := u.githubRepo.DownloadAsset(ctx, *update.Asset)
	if err != nil {
		return "", err
	}
	u.log.InfoContext(ctx, "Update downloaded",
		logger.StringField("version", update.AvailableVersion),
		logger.StringField("path", path),
	)
	return path, nil
}
