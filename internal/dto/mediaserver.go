package dto

import "time"

type MediaServerLoginRequest struct {
	UserName string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Address  string `json:"address" validate:"required,url"`
}

type MediaServerToken struct {
	Token    string `json:"token"`
	UserID   string `json:"user_id"`
	ServerID string `json:"server_id"`
	IsAdmin  bool   `json:"is_admin"`
}

type MediaServerStatus struct {
	MissedPings int `json:"missed_pings"`
}

type AuthenticateByNameRequest struct {
	Username string `json:"Username"`
	Pw       string `json:"Pw"`
}

type AuthenticationResult struct {
	User        UserDto `json:"User"`
	AccessToken string  `json:"AccessToken"`
	ServerId    string  `json:"ServerId"`
}

type UserPolicy struct {
	IsAdministrator bool `json:"IsAdministrator"`
	IsDisabled      bool `json:"IsDisabled"`
}

type UserDto struct {
	Id               string     `json:"Id"`
	Name             string     `json:"Name"`
	LastLoginDate    *time.Time `json:"LastLoginDate"`
	LastActivityDate *time.Time `json:"LastActivityDate"`
	Policy           UserPolicy `json:"Policy"`
}

type SystemInfo struct {
	Id                 string `json:"Id"`
	ServerName         string `json:"ServerName"`
	Version            string `json:"Version"`
	OperatingSystem    string `json:"OperatingSystem"`
	LocalAddress       string `json:"LocalAddress"`
	WanAddress         string `json:"WanAddress"`
	HasUpdateAvailable bool   `json:"HasUpdateAvailable"`
	CanSelfRestart     bool   `json:"CanSelfRestart"`
}

type PluginInfo struct {
	Id          string `json:"Id"`
	Name        string `json:"Name"`
	Version     string `json:"Version"`
	Description string `json:"Description"`
}

type FileSystemEntryInfo struct {
	Name string `json:"Name"`
	Path string `json:"Path"`
	Type string `json:"Type"`
}

type NameIdPair struct {
	Id   string `json:"Id"`
	Name string `json:"Name"`
}

type BaseItemPerson struct {
	Id   string `json:"Id"`
	Name string `json:"Name"`
	Type string `json:"Type"`
}

type BaseItem struct {
	Id              string            `json:"Id"`
	Name            string            `json:"Name"`
	SortName        string            `json:"SortName"`
	Type            string            `json:"Type"`
	CollectionType  string            `json:"CollectionType"`
	ProductionYear  *int              `json:"ProductionYear"`
	RunTimeTicks    *int64            `json:"RunTimeTicks"`
	CommunityRating *float64          `json:"CommunityRating"`
	OfficialRating  string            `json:"OfficialRating"`
	PremiereDate    *time.Time        `json:"PremiereDate"`
	DateCreated     *time.Time        `json:"DateCreated"`
	Container       string            `json:"Container"`
	Width           *int              `json:"Width"`
	Height          *int              `json:"Height"`
	Status          string            `json:"Status"`
	ProviderIds     map[string]string `json:"ProviderIds"`
	GenreItems      []NameIdPair      `json:"GenreItems"`
	People          []BaseItemPerson  `json:"People"`
}

type ItemsResult struct {
	Items            []BaseItem `json:"Items"`
	TotalRecordCount int        `json:"TotalRecordCount"`
}
