package dto

type TvdbLoginRequest struct {
	ApiKey string `json:"apikey"`
}

type TvdbToken struct {
	Token string `json:"token"`
}

type TvdbLinks struct {
	First    *int `json:"first"`
	Last     *int `json:"last"`
	Next     *int `json:"next"`
	Previous *int `json:"previous"`
}

type TvdbEpisode struct {
	Id                 int    `json:"id"`
	AiredSeason        int    `json:"airedSeason"`
	AiredEpisodeNumber int    `json:"airedEpisodeNumber"`
	EpisodeName        string `json:"episodeName"`
	FirstAired         string `json:"firstAired"`
}

type TvdbEpisodes struct {
	Links TvdbLinks     `json:"links"`
	Data  []TvdbEpisode `json:"data"`
}

type TvdbUpdate struct {
	Id          int   `json:"id"`
	LastUpdated int64 `json:"lastUpdated"`
}

type TvdbUpdates struct {
	Data []TvdbUpdate `json:"data"`
}

// VirtualEpisode is an aired episode as reported by TVDB.
type VirtualEpisode struct {
	Id            int    `json:"id"`
	SeasonNumber  int    `json:"season_number"`
	EpisodeNumber int    `json:"episode_number"`
	Name          string `json:"name"`
	FirstAired    string `json:"first_aired"`
}
