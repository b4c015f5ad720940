package dto

type StatisticsParam struct {
	LibraryIDs []string `query:"library_ids"`
}

type Card struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

type ChartPoint struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

type Chart struct {
	Title  string       `json:"title"`
	Points []ChartPoint `json:"points"`
}

type PersonCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type MovieStatistics struct {
	General     []Card        `json:"general"`
	Charts      []Chart       `json:"charts"`
	TopActors   []PersonCount `json:"top_actors"`
	TopDirector []PersonCount `json:"top_directors"`
}

type ShowStatistics struct {
	General   []Card             `json:"general"`
	Charts    []Chart            `json:"charts"`
	TopActors []PersonCount      `json:"top_actors"`
	Collected []ShowCollectedRow `json:"collected"`
}

type ShowCollectedRow struct {
	Name            string  `json:"name"`
	Episodes        int     `json:"episodes"`
	MissingEpisodes int     `json:"missing_episodes"`
	PercentComplete float64 `json:"percent_complete"`
	Status          string  `json:"status"`
}
