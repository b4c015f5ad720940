package repository

import (
	"mediastat/config"
	"mediastat/pkg/cache"
	"mediastat/pkg/logger"

	"gorm.io/gorm"
)

type Repository struct {
	TriggerRepo        TriggerRepository
	TaskResultRepo     TaskResultRepository
	StatisticRepo      StatisticRepository
	GenreRepo          GenreRepository
	PersonRepo         PersonRepository
	LibraryRepo        LibraryRepository
	MovieRepo          MovieRepository
	ShowRepo           ShowRepository
	ServerRepo         ServerRepository
	SystemParamRepo    SystemParamRepository
	TvdbRepo           TvdbRepository
	GithubRepo         GithubRepository
	MediaServerClients MediaServerClientFactory
	UnitOfWork         UnitOfWork
}

func NewRepository(cfg *config.Config, inMemoryCache cache.Cache, db *gorm.DB, log *logger.Logger) *Repository {
	return &Repository{
		TriggerRepo:        NewTriggerRepository(db),
		TaskResultRepo:     NewTaskResultRepository(db),
		StatisticRepo:      NewStatisticRepository(db),
		GenreRepo:          NewGenreRepository(db),
		PersonRepo:         NewPersonRepository(db),
		LibraryRepo:        NewLibraryRepository(db),
		MovieRepo:          NewMovieRepository(db),
		ShowRepo:           NewShowRepository(db),
		ServerRepo:         NewServerRepository(db),
		SystemParamRepo:    NewSystemParamRepository(cfg, inMemoryCache, db),
		TvdbRepo:           NewTvdbRepository(cfg, log),
		GithubRepo:         NewGithubRepository(cfg, log),
		MediaServerClients: NewMediaServerClientFactory(cfg, log),
		UnitOfWork:         NewUnitOfWork(db),
	}
}
