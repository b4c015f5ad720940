package job

import (
	"strings"
	"time"

	"mediastat/internal/dto"
	"mediastat/internal/model"
)

const (
	providerImdb = "Imdb"
	providerTmdb = "Tmdb"
	providerTvdb = "Tvdb"
)

// provider looks up a provider id ignoring the key case the server uses.
func provider(ids map[string]string, name string) string {
	if v, ok := ids[name]; ok {
		return v
	}
	for k, v := range ids {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func toGenres(items []dto.NameIdPair) []model.Genre {
	genres := make([]model.Genre, 0, len(items))
	for _, g := range items {
		genres = append(genres, model.Genre{ID: g.Id, Name: g.Name})
	}
	return genres
}

func toPeople(mediaID string, people []dto.BaseItemPerson) []model.MediaPerson {
	out := make([]model.MediaPerson, 0, len(people))
	for _, p := range people {
		switch p.Type {
		case model.PersonTypeActor, model.PersonTypeDirector, model.PersonTypeWriter:
		default:
			continue
		}
		out = append(out, model.MediaPerson{MediaID: mediaID, PersonID: p.Id, Type: p.Type, Name: p.Name})
	}
	return out
}

func toLibrary(item dto.BaseItem, syncedAt time.Time) model.Library {
	return model.Library{
		ID:             item.Id,
		Name:           item.Name,
		CollectionType: item.CollectionType,
		SyncedAt:       syncedAt,
	}
}

func toMovie(libraryID string, item dto.BaseItem) model.Movie {
	return model.Movie{
		ID:              item.Id,
		LibraryID:       libraryID,
		Name:            item.Name,
		SortName:        item.SortName,
		ProductionYear:  item.ProductionYear,
		RunTimeTicks:    item.RunTimeTicks,
		CommunityRating: item.CommunityRating,
		OfficialRating:  item.OfficialRating,
		PremiereDate:    item.PremiereDate,
		DateCreated:     item.DateCreated,
		ImdbID:          provider(item.ProviderIds, providerImdb),
		TmdbID:          provider(item.ProviderIds, providerTmdb),
		Container:       item.Container,
		Height:          item.Height,
		Width:           item.Width,
		Genres:          toGenres(item.GenreItems),
		People:          toPeople(item.Id, item.People),
	}
}

func toShow(libraryID string, item dto.BaseItem, episodeCount int) model.Show {
	return model.Show{
		ID:              item.Id,
		LibraryID:       libraryID,
		Name:            item.Name,
		SortName:        item.SortName,
		TvdbID:          provider(item.ProviderIds, providerTvdb),
		Status:          item.Status,
		ProductionYear:  item.ProductionYear,
		RunTimeTicks:    item.RunTimeTicks,
		CommunityRating: item.CommunityRating,
		OfficialRating:  item.OfficialRating,
		PremiereDate:    item.PremiereDate,
		DateCreated:     item.DateCreated,
		EpisodeCount:    episodeCount,
		Genres:          toGenres(item.GenreItems),
		People:          toPeople(item.Id, item.People),
	}
}

func toServerInfo(info *dto.SystemInfo) *model.ServerInfo {
	return &model.ServerInfo{
		ID:                 info.Id,
		ServerName:         info.ServerName,
		Version:            info.Version,
		OperatingSystem:    info.OperatingSystem,
		LocalAddress:       info.LocalAddress,
		WanAddress:         info.WanAddress,
		HasUpdateAvailable: info.HasUpdateAvailable,
		CanSelfRestart:     info.CanSelfRestart,
	}
}

func toPlugins(plugins []dto.PluginInfo) []model.Plugin {
	out := make([]model.Plugin, 0, len(plugins))
	for _, p := range plugins {
		out = append(out, model.Plugin{ID: p.Id, Name: p.Name, Version: p.Version, Description: p.Description})
	}
	return out
}

func toDrives(drives []dto.FileSystemEntryInfo) []model.Drive {
	out := make([]model.Drive, 0, len(drives))
	for _, d := range drives {
		out = append(out, model.Drive{Path: d.Path, Name: d.Name, Type: d.Type})
	}
	return out
}

func toUsers(users []dto.UserDto) []model.MediaServerUser {
	out := make([]model.MediaServerUser, 0, len(users))
	for _, u := range users {
		out = append(out, model.MediaServerUser{
			ID:               u.Id,
			Name:             u.Name,
			IsAdministrator:  u.Policy.IsAdministrator,
			IsDisabled:       u.Policy.IsDisabled,
			LastLoginDate:    u.LastLoginDate,
			LastActivityDate: u.LastActivityDate,
		})
	}
	return out
}
