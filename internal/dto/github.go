package dto

type GithubAsset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
	Size               int64  `json:"size"`
}

type GithubRelease struct {
	TagName    string        `json:"tag_name"`
	Name       string        `json:"name"`
	Draft      bool          `json:"draft"`
	Prerelease bool          `json:"prerelease"`
	HtmlURL    string        `json:"html_url"`
	Body       string        `json:"body"`
	Assets     []GithubAsset `json:"assets"`
}

type UpdateResult struct {
	IsUpdateAvailable bool         `json:"is_update_available"`
	CurrentVersion    string       `json:"current_version"`
	AvailableVersion  string       `json:"available_version"`
	ReleaseURL        string       `json:"release_url"`
	Asset             *GithubAsset `json:"asset,omitempty"`
}
