package model

import "time"

type ServerInfo struct {
	ID                 string `gorm:"type:varchar(100);primaryKey"`
	ServerName         string `gorm:"type:varchar(255)"`
	Version            string `gorm:"type:varchar(50)"`
	OperatingSystem    string `gorm:"type:varchar(100)"`
	LocalAddress       string `gorm:"type:varchar(255)"`
	WanAddress         string `gorm:"type:varchar(255)"`
	HasUpdateAvailable bool
	CanSelfRestart     bool
	UpdatedAt          time.Time `gorm:"autoUpdateTime"`
}

func (ServerInfo) TableName() string {
	return "server_info"
}

type Plugin struct {
	ID          string `gorm:"type:varchar(100);primaryKey"`
	Name        string `gorm:"type:varchar(255)"`
	Version     string `gorm:"type:varchar(50)"`
	Description string `gorm:"type:text"`
}

func (Plugin) TableName() string {
	return "plugins"
}

type Drive struct {
	Path string `gorm:"type:varchar(255);primaryKey"`
	Name string `gorm:"type:varchar(255)"`
	Type string `gorm:"type:varchar(50)"`
}

func (Drive) TableName() string {
	return "drives"
}

type MediaServerUser struct {
	ID               string `gorm:"type:varchar(100);primaryKey"`
	Name             string `gorm:"type:varchar(255)"`
	IsAdministrator  bool
	IsDisabled       bool
	LastLoginDate    *time.Time
	LastActivityDate *time.Time
}

func (MediaServerUser) TableName() string {
	return "media_server_users"
}
