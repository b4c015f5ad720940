package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	SysParamMediaServer       = "MEDIA_SERVER"
	SysParamTvdb              = "TVDB"
	SysParamUpdate            = "UPDATE"
	SysParamMediaServerStatus = "MEDIA_SERVER_STATUS"
)

type SystemParameter struct {
	Name        string         `gorm:"column:name;type:varchar(100);primaryKey" json:"name"`
	Value       datatypes.JSON `gorm:"column:value" json:"value"`
	Description string         `gorm:"column:description;type:text" json:"description"`
	DeletedAt   gorm.DeletedAt `json:"deleted_at"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
}

func (SystemParameter) TableName() string {
	return "system_parameters"
}

type MediaServerSettings struct {
	ServerName    string `json:"server_name"`
	ServerAddress string `json:"server_address"`
	ServerID      string `json:"server_id"`
	UserID        string `json:"user_id"`
	AccessToken   string `json:"access_token"`
}

func (s MediaServerSettings) Configured() bool {
	return s.ServerAddress != "" && s.AccessToken != ""
}

type TvdbSettings struct {
	ApiKey     string     `json:"api_key"`
	LastUpdate *time.Time `json:"last_update"`
}

type UpdateSettings struct {
	AutoUpdate       bool   `json:"auto_update"`
	UpdateTrain      string `json:"update_train"`
	UpdateInProgress bool   `json:"update_in_progress"`
}

type MediaServerStatus struct {
	MissedPings int `json:"missed_pings"`
}
