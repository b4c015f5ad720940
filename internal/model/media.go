package model

import "time"

const (
	CollectionTypeMovies  = "movies"
	CollectionTypeTvShows = "tvshows"
)

const (
	MediaTypeMovie = "Movie"
	MediaTypeShow  = "Series"
)

const (
	PersonTypeActor    = "Actor"
	PersonTypeDirector = "Director"
	PersonTypeWriter   = "Writer"
)

type Library struct {
	ID             string `gorm:"type:varchar(100);primaryKey"`
	Name           string `gorm:"type:varchar(255)"`
	CollectionType string `gorm:"type:varchar(50);index"`
	SyncedAt       time.Time
}

func (Library) TableName() string {
	return "libraries"
}

type Movie struct {
	ID              string `gorm:"type:varchar(100);primaryKey"`
	LibraryID       string `gorm:"type:varchar(100);index"`
	Name            string `gorm:"type:varchar(255)"`
	SortName        string `gorm:"type:varchar(255)"`
	ProductionYear  *int
	RunTimeTicks    *int64
	CommunityRating *float64
	OfficialRating  string `gorm:"type:varchar(50)"`
	PremiereDate    *time.Time
	DateCreated     *time.Time
	ImdbID          string `gorm:"type:varchar(50)"`
	TmdbID          string `gorm:"type:varchar(50)"`
	Container       string `gorm:"type:varchar(50)"`
	Height          *int
	Width           *int

	Genres []Genre       `gorm:"-"`
	People []MediaPerson `gorm:"-"`
}

func (Movie) TableName() string {
	return "movies"
}

type Show struct {
	ID               string `gorm:"type:varchar(100);primaryKey"`
	LibraryID        string `gorm:"type:varchar(100);index"`
	Name             string `gorm:"type:varchar(255)"`
	SortName         string `gorm:"type:varchar(255)"`
	TvdbID           string `gorm:"type:varchar(50);index"`
	Status           string `gorm:"type:varchar(50)"`
	ProductionYear   *int
	RunTimeTicks     *int64
	CommunityRating  *float64
	OfficialRating   string `gorm:"type:varchar(50)"`
	PremiereDate     *time.Time
	DateCreated      *time.Time
	EpisodeCount     int
	TvdbEpisodeCount int
	TvdbSynced       bool
	TvdbFailed       bool

	Genres []Genre       `gorm:"-"`
	People []MediaPerson `gorm:"-"`
}

func (Show) TableName() string {
	return "shows"
}

// MissingEpisodeCount is the number of aired episodes known to TVDB but absent locally.
func (s Show) MissingEpisodeCount() int {
	if !s.TvdbSynced || s.TvdbEpisodeCount <= s.EpisodeCount {
		return 0
	}
	return s.TvdbEpisodeCount - s.EpisodeCount
}

type Genre struct {
	ID   string `gorm:"type:varchar(100);primaryKey"`
	Name string `gorm:"type:varchar(255)"`
}

func (Genre) TableName() string {
	return "genres"
}

type Person struct {
	ID   string `gorm:"type:varchar(100);primaryKey"`
	Name string `gorm:"type:varchar(255)"`
}

func (Person) TableName() string {
	return "people"
}

// MediaGenre links a movie or show to a genre.
type MediaGenre struct {
	MediaID string `gorm:"type:varchar(100);primaryKey"`
	GenreID string `gorm:"type:varchar(100);primaryKey;index"`
}

func (MediaGenre) TableName() string {
	return "media_genres"
}

// MediaPerson links a movie or show to a person in a role.
type MediaPerson struct {
	MediaID  string `gorm:"type:varchar(100);primaryKey"`
	PersonID string `gorm:"type:varchar(100);primaryKey;index"`
	Type     string `gorm:"type:varchar(50);primaryKey"`
	Name     string `gorm:"-"`
}

func (MediaPerson) TableName() string {
	return "media_people"
}
