package repository

import (
	"context"

	"mediastat/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const batchSize = 200

// linkSet accumulates the genre and people links of a batch of movies or shows.
type linkSet struct {
	mediaIDs    []string
	genreLinks  []model.MediaGenre
	personLinks []model.MediaPerson
	genres      map[string]model.Genre
	people      map[string]model.Person
}

func newLinkSet() *linkSet {
	return &linkSet{
		genres: make(map[string]model.Genre),
		people: make(map[string]model.Person),
	}
}

func (s *linkSet) add(mediaID string, genres []model.Genre, people []model.MediaPerson) {
	s.mediaIDs = append(s.mediaIDs, mediaID)

	seenGenre := make(map[string]struct{}, len(genres))
	for _, g := range genres {
		if g.ID == "" {
			continue
		}
		if _, ok := seenGenre[g.ID]; ok {
			continue
		}
		seenGenre[g.ID] = struct{}{}
		s.genreLinks = append(s.genreLinks, model.MediaGenre{MediaID: mediaID, GenreID: g.ID})
		s.genres[g.ID] = g
	}

	seenPerson := make(map[string]struct{}, len(people))
	for _, p := range people {
		if p.PersonID == "" {
			continue
		}
		key := p.PersonID + "|" + p.Type
		if _, ok := seenPerson[key]; ok {
			continue
		}
		seenPerson[key] = struct{}{}
		s.personLinks = append(s.personLinks, model.MediaPerson{MediaID: mediaID, PersonID: p.PersonID, Type: p.Type})
		s.people[p.PersonID] = model.Person{ID: p.PersonID, Name: p.Name}
	}
}

// write replaces the links of every media id in the set and upserts the linked genres and people.
func (s *linkSet) write(tx *gorm.DB) error {
	if err := deleteLinks(tx, s.mediaIDs); err != nil {
		return err
	}

	if len(s.genres) > 0 {
		genres := make([]model.Genre, 0, len(s.genres))
		for _, g := range s.genres {
			genres = append(genres, g)
		}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).CreateInBatches(&genres, batchSize).Error; err != nil {
			return err
		}
	}
	if len(s.people) > 0 {
		people := make([]model.Person, 0, len(s.people))
		for _, p := range s.people {
			people = append(people, p)
		}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).CreateInBatches(&people, batchSize).Error; err != nil {
			return err
		}
	}
	if len(s.genreLinks) > 0 {
		if err := tx.CreateInBatches(&s.genreLinks, batchSize).Error; err != nil {
			return err
		}
	}
	if len(s.personLinks) > 0 {
		if err := tx.CreateInBatches(&s.personLinks, batchSize).Error; err != nil {
			return err
		}
	}
	return nil
}

func deleteLinks(tx *gorm.DB, mediaIDs []string) error {
	if len(mediaIDs) == 0 {
		return nil
	}
	if err := tx.Where("media_id IN ?", mediaIDs).Delete(&model.MediaGenre{}).Error; err != nil {
		return err
	}
	return tx.Where("media_id IN ?", mediaIDs).Delete(&model.MediaPerson{}).Error
}

type mediaGenreRow struct {
	MediaID string
	GenreID string
	Name    string
}

type mediaPersonRow struct {
	MediaID  string
	PersonID string
	Type     string
	Name     string
}

func loadGenres(ctx context.Context, db *gorm.DB, mediaIDs []string) (map[string][]model.Genre, error) {
	out := make(map[string][]model.Genre)
	if len(mediaIDs) == 0 {
		return out, nil
	}
	var rows []mediaGenreRow
	err := db.WithContext(ctx).
		Table("media_genres").
		Select("media_genres.media_id, media_genres.genre_id, genres.name").
		Joins("JOIN genres ON genres.id = media_genres.genre_id").
		Where("media_genres.media_id IN ?", mediaIDs).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.MediaID] = append(out[row.MediaID], model.Genre{ID: row.GenreID, Name: row.Name})
	}
	return out, nil
}

func loadPeople(ctx context.Context, db *gorm.DB, mediaIDs []string) (map[string][]model.MediaPerson, error) {
	out := make(map[string][]model.MediaPerson)
	if len(mediaIDs) == 0 {
		return out, nil
	}
	var rows []mediaPersonRow
	err := db.WithContext(ctx).
		Table("media_people").
		Select("media_people.media_id, media_people.person_id, media_people.type, people.name").
		Joins("JOIN people ON people.id = media_people.person_id").
		Where("media_people.media_id IN ?", mediaIDs).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.MediaID] = append(out[row.MediaID], model.MediaPerson{
			MediaID:  row.MediaID,
			PersonID: row.PersonID,
			Type:     row.Type,
			Name:     row.Name,
		})
	}
	return out, nil
}
