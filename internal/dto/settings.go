package dto

import "time"

type SettingsResponse struct {
	AutoUpdate       bool       `json:"auto_update"`
	UpdateTrain      string     `json:"update_train"`
	UpdateInProgress bool       `json:"update_in_progress"`
	TvdbApiKey       string     `json:"tvdb_api_key"`
	TvdbLastUpdate   *time.Time `json:"tvdb_last_update"`
}

type UpdateSettingsRequest struct {
	AutoUpdate  bool   `json:"auto_update"`
	UpdateTrain string `json:"update_train" validate:"required,oneof=release beta dev"`
	TvdbApiKey  string `json:"tvdb_api_key"`
}
