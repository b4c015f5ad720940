package job

import (
	"context"
	"fmt"
	"time"

	"mediastat/internal/model"
	"mediastat/internal/repository"
	"mediastat/pkg/logger"
	"mediastat/pkg/utils"
)

const (
	itemTypeMovie  = "Movie"
	itemTypeSeries = "Series"
)

// MediaSyncJob copies the movie and show catalog of the media server and
// refreshes TVDB episode counts. Its last successful run keys the statistics cache.
type MediaSyncJob struct {
	base
	clientHolder
	log       *logger.Logger
	libraries repository.LibraryRepository
	movies    repository.MovieRepository
	shows     repository.ShowRepository
	tvdb      repository.TvdbRepository
	uow       repository.UnitOfWork
	now       func() time.Time
}

func NewMediaSyncJob(log *logger.Logger, settings Settings, repo *repository.Repository) *MediaSyncJob {
	return &MediaSyncJob{
		base:         base{def: mediaSyncDefinition()},
		clientHolder: clientHolder{clients: repo.MediaServerClients, settings: settings},
		log:          log,
		libraries:    repo.LibraryRepo,
		movies:       repo.MovieRepo,
		shows:        repo.ShowRepo,
		tvdb:         repo.TvdbRepo,
		uow:          repo.UnitOfWork,
		now:          utils.TimeNowUTC,
	}
}

func (j *MediaSyncJob) Run(ctx context.Context, r Reporter) error {
	client, err := j.open(ctx)
	if err != nil {
		return err
	}

	r.Info("Fetching libraries")
	items, err := client.ListLibraries(ctx)
	if err != nil {
		return fmt.Errorf("failed to list libraries: %w", err)
	}

	syncedAt := j.now()
	var libraries []model.Library
	for _, item := range items {
		if item.CollectionType != model.CollectionTypeMovies && item.CollectionType != model.CollectionTypeTvShows {
			continue
		}
		libraries = append(libraries, toLibrary(item, syncedAt))
	}
	r.Info(fmt.Sprintf("Found %d movie and show libraries", len(libraries)))
	r.Progress(5)

	for i, library := range libraries {
		if !utils.ShouldContinue(ctx, j.log) {
			return ctx.Err()
		}
		if err := j.syncLibrary(ctx, r, client, library); err != nil {
			return err
		}
		r.Progress(5 + 60*float64(i+1)/float64(len(libraries)))
	}

	if err := j.libraries.ReplaceAll(ctx, libraries); err != nil {
		return fmt.Errorf("failed to store libraries: %w", err)
	}
	r.Progress(65)

	return j.syncTvdb(ctx, r)
}

func (j *MediaSyncJob) Dispose() {
	j.close()
}

func (j *MediaSyncJob) syncLibrary(ctx context.Context, r Reporter, client repository.MediaServerClient, library model.Library) error {
	switch library.CollectionType {
	case model.CollectionTypeMovies:
		items, err := client.ListItems(ctx, library.ID, itemTypeMovie)
		if err != nil {
			return fmt.Errorf("failed to list movies of %s: %w", library.Name, err)
		}
		movies := make([]model.Movie, 0, len(items))
		keep := make([]string, 0, len(items))
		for _, item := range items {
			movies = append(movies, toMovie(library.ID, item))
			keep = append(keep, item.Id)
		}

		var removed int64
		err = j.uow.Run(ctx, func(opts ...utils.DBOption) error {
			if err := j.movies.UpsertRange(ctx, movies, opts...); err != nil {
				return err
			}
			removed, err = j.movies.RemoveMissing(ctx, library.ID, keep, opts...)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to store movies of %s: %w", library.Name, err)
		}
		r.Info(fmt.Sprintf("Synced %d movies from %s, removed %d", len(movies), library.Name, removed))

	case model.CollectionTypeTvShows:
		items, err := client.ListItems(ctx, library.ID, itemTypeSeries)
		if err != nil {
			return fmt.Errorf("failed to list shows of %s: %w", library.Name, err)
		}
		shows := make([]model.Show, 0, len(items))
		keep := make([]string, 0, len(items))
		for _, item := range items {
			count, err := client.CountEpisodes(ctx, item.Id)
			if err != nil {
				return fmt.Errorf("failed to count episodes of %s: %w", item.Name, err)
			}
			shows = append(shows, toShow(library.ID, item, count))
			keep = append(keep, item.Id)
		}

		var removed int64
		err = j.uow.Run(ctx, func(opts ...utils.DBOption) error {
			if err := j.shows.UpsertRange(ctx, shows, opts...); err != nil {
				return err
			}
			removed, err = j.shows.RemoveMissing(ctx, library.ID, keep, opts...)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to store shows of %s: %w", library.Name, err)
		}
		r.Info(fmt.Sprintf("Synced %d shows from %s, removed %d", len(shows), library.Name, removed))
	}
	return nil
}

// syncTvdb refreshes aired episode counts of shows changed on TVDB since the
// last run. The first run refreshes every show with a TVDB id.
func (j *MediaSyncJob) syncTvdb(ctx context.Context, r Reporter) error {
	settings, err := j.settings.GetTvdb(ctx)
	if err != nil {
		return fmt.Errorf("failed to read tvdb settings: %w", err)
	}
	if settings.ApiKey == "" {
		r.Warn("No TVDB api key configured, skipping missing episode refresh")
		return nil
	}

	startedAt := j.now()
	if err := j.tvdb.Login(ctx, settings.ApiKey); err != nil {
		return err
	}

	var shows []model.Show
	if settings.LastUpdate == nil {
		shows, err = j.shows.GetWithTvdbID(ctx)
	} else {
		var ids []string
		ids, err = j.tvdb.GetShowsToUpdate(ctx, *settings.LastUpdate)
		if err == nil {
			shows, err = j.shows.GetByTvdbIDs(ctx, ids)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to find shows to refresh: %w", err)
	}
	r.Info(fmt.Sprintf("Refreshing TVDB episodes of %d shows", len(shows)))

	failed := 0
	for i, show := range shows {
		if !utils.ShouldContinue(ctx, j.log) {
			return ctx.Err()
		}
		episodes, err := j.tvdb.GetEpisodes(ctx, show.TvdbID)
		if err != nil {
			failed++
			r.Warn(fmt.Sprintf("Could not fetch TVDB episodes of %s: %v", show.Name, err))
			if err := j.shows.UpdateTvdbState(ctx, show.ID, 0, true); err != nil {
				return err
			}
			continue
		}
		if err := j.shows.UpdateTvdbState(ctx, show.ID, len(episodes), false); err != nil {
			return err
		}
		r.Progress(65 + 34*float64(i+1)/float64(len(shows)))
	}
	if failed > 0 {
		j.log.WarnContext(ctx, "Some shows failed the TVDB refresh", logger.IntField("failed", failed), logger.IntField("total", len(shows)))
	}

	settings.LastUpdate = &startedAt
	if err := j.settings.SaveTvdb(ctx, settings); err != nil {
		return fmt.Errorf("failed to store tvdb settings: %w", err)
	}
	return nil
}
