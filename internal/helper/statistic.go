package helper

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"mediastat/internal/dto"
	"mediastat/internal/model"
	"mediastat/pkg/utils"
)

const topPeopleLimit = 10

// GenreChart counts titles per genre, most common first.
func GenreChart(genres [][]model.Genre) dto.Chart {
	counts := make(map[string]int)
	for _, list := range genres {
		for _, g := range list {
			counts[g.Name]++
		}
	}
	return dto.Chart{Title: "Genres", Points: sortedPoints(counts, false)}
}

// DecadeChart counts titles per production decade in chronological order.
// Titles without a year are counted under "Unknown".
func DecadeChart(years []*int) dto.Chart {
	counts := make(map[string]int)
	for _, y := range years {
		if y == nil || *y <= 0 {
			counts["Unknown"]++
			continue
		}
		counts[strconv.Itoa(*y/10*10)+"s"]++
	}
	return dto.Chart{Title: "Production decades", Points: sortedPoints(counts, true)}
}

// RatingChart counts titles per official rating.
func RatingChart(ratings []string) dto.Chart {
	counts := make(map[string]int)
	for _, r := range ratings {
		if r == "" {
			r = "Unknown"
		}
		counts[r]++
	}
	return dto.Chart{Title: "Official ratings", Points: sortedPoints(counts, false)}
}

func sortedPoints(counts map[string]int, byLabel bool) []dto.ChartPoint {
	points := make([]dto.ChartPoint, 0, len(counts))
	for label, value := range counts {
		points = append(points, dto.ChartPoint{Label: label, Value: value})
	}
	sort.Slice(points, func(i, j int) bool {
		if !byLabel && points[i].Value != points[j].Value {
			return points[i].Value > points[j].Value
		}
		return points[i].Label < points[j].Label
	})
	return points
}

// TopPeople returns the people of personType appearing in the most titles.
func TopPeople(people [][]model.MediaPerson, personType string, limit int) []dto.PersonCount {
	if limit <= 0 {
		limit = topPeopleLimit
	}
	counts := make(map[string]int)
	names := make(map[string]string)
	for _, list := range people {
		seen := make(map[string]struct{})
		for _, p := range list {
			if p.Type != personType {
				continue
			}
			if _, ok := seen[p.PersonID]; ok {
				continue
			}
			seen[p.PersonID] = struct{}{}
			counts[p.PersonID]++
			names[p.PersonID] = p.Name
		}
	}

	out := make([]dto.PersonCount, 0, len(counts))
	for id, c := range counts {
		out = append(out, dto.PersonCount{Name: names[id], Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// TotalRuntime sums runtimes given in ticks.
func TotalRuntime(ticks []*int64) time.Duration {
	var total time.Duration
	for _, t := range ticks {
		if t != nil {
			total += utils.TicksToDuration(*t)
		}
	}
	return total
}

// FormatRuntime renders a duration as days, hours and minutes.
func FormatRuntime(d time.Duration) string {
	days := int(d / (24 * time.Hour))
	d -= time.Duration(days) * 24 * time.Hour
	hours := int(d / time.Hour)
	d -= time.Duration(hours) * time.Hour
	minutes := int(d / time.Minute)
	return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
}

// AverageRating is the mean community rating, ignoring unrated titles.
func AverageRating(ratings []*float64) float64 {
	sum, n := 0.0, 0
	for _, r := range ratings {
		if r != nil {
			sum += *r
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func MovieGeneralCards(movies []model.Movie) []dto.Card {
	genres := make(map[string]struct{})
	runtimes := make([]*int64, 0, len(movies))
	ratings := make([]*float64, 0, len(movies))
	var newest *model.Movie
	for i, m := range movies {
		for _, g := range m.Genres {
			genres[g.ID] = struct{}{}
		}
		runtimes = append(runtimes, m.RunTimeTicks)
		ratings = append(ratings, m.CommunityRating)
		if m.DateCreated != nil && (newest == nil || m.DateCreated.After(*newest.DateCreated)) {
			newest = &movies[i]
		}
	}

	cards := []dto.Card{
		{Title: "Movies", Value: strconv.Itoa(len(movies))},
		{Title: "Genres", Value: strconv.Itoa(len(genres))},
		{Title: "Total play length", Value: FormatRuntime(TotalRuntime(runtimes))},
		{Title: "Average rating", Value: strconv.FormatFloat(AverageRating(ratings), 'f', 1, 64)},
	}
	if newest != nil {
		cards = append(cards, dto.Card{Title: "Latest added", Value: newest.Name})
	}
	return cards
}

func MovieCharts(movies []model.Movie) []dto.Chart {
	genres := make([][]model.Genre, 0, len(movies))
	years := make([]*int, 0, len(movies))
	ratings := make([]string, 0, len(movies))
	for _, m := range movies {
		genres = append(genres, m.Genres)
		years = append(years, m.ProductionYear)
		ratings = append(ratings, m.OfficialRating)
	}
	return []dto.Chart{GenreChart(genres), DecadeChart(years), RatingChart(ratings)}
}

func moviePeople(movies []model.Movie) [][]model.MediaPerson {
	people := make([][]model.MediaPerson, 0, len(movies))
	for _, m := range movies {
		people = append(people, m.People)
	}
	return people
}

func MovieTopActors(movies []model.Movie) []dto.PersonCount {
	return TopPeople(moviePeople(movies), model.PersonTypeActor, topPeopleLimit)
}

func MovieTopDirectors(movies []model.Movie) []dto.PersonCount {
	return TopPeople(moviePeople(movies), model.PersonTypeDirector, topPeopleLimit)
}

func ShowGeneralCards(shows []model.Show) []dto.Card {
	episodes, missing, ended := 0, 0, 0
	for _, s := range shows {
		episodes += s.EpisodeCount
		missing += s.MissingEpisodeCount()
		if s.Status == "Ended" {
			ended++
		}
	}
	return []dto.Card{
		{Title: "Shows", Value: strconv.Itoa(len(shows))},
		{Title: "Episodes", Value: strconv.Itoa(episodes)},
		{Title: "Missing episodes", Value: strconv.Itoa(missing)},
		{Title: "Ended shows", Value: strconv.Itoa(ended)},
	}
}

func ShowCharts(shows []model.Show) []dto.Chart {
	genres := make([][]model.Genre, 0, len(shows))
	years := make([]*int, 0, len(shows))
	ratings := make([]string, 0, len(shows))
	for _, s := range shows {
		genres = append(genres, s.Genres)
		years = append(years, s.ProductionYear)
		ratings = append(ratings, s.OfficialRating)
	}
	return []dto.Chart{GenreChart(genres), DecadeChart(years), RatingChart(ratings)}
}

func ShowTopActors(shows []model.Show) []dto.PersonCount {
	people := make([][]model.MediaPerson, 0, len(shows))
	for _, s := range shows {
		people = append(people, s.People)
	}
	return TopPeople(people, model.PersonTypeActor, topPeopleLimit)
}

// ShowCollectedRows lists how complete each show is, least complete first.
func ShowCollectedRows(shows []model.Show) []dto.ShowCollectedRow {
	rows := make([]dto.ShowCollectedRow, 0, len(shows))
	for _, s := range shows {
		missing := s.MissingEpisodeCount()
		percent := 100.0
		if total := s.EpisodeCount + missing; total > 0 {
			percent = float64(s.EpisodeCount) / float64(total) * 100
		}
		rows = append(rows, dto.ShowCollectedRow{
			Name:            s.Name,
			Episodes:        s.EpisodeCount,
			MissingEpisodes: missing,
			PercentComplete: percent,
			Status:          s.Status,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].PercentComplete != rows[j].PercentComplete {
			return rows[i].PercentComplete < rows[j].PercentComplete
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}
