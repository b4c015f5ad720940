package repository

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"mediastat/config"
	"mediastat/internal/apperror"
	"mediastat/internal/dto"
	"mediastat/pkg/common"
	"mediastat/pkg/httpclient"
	"mediastat/pkg/logger"
	"mediastat/pkg/ratelimit"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// PingReply is the body a healthy media server answers /System/Ping with.
const PingReply = "Emby Server"

// MediaServerClient talks to one media server. Close releases its connections.
type MediaServerClient interface {
	Authenticate(ctx context.Context, userName, password string) (*dto.AuthenticationResult, error)
	GetServerInfo(ctx context.Context) (*dto.SystemInfo, error)
	ListPlugins(ctx context.Context) ([]dto.PluginInfo, error)
	ListDrives(ctx context.Context) ([]dto.FileSystemEntryInfo, error)
	ListUsers(ctx context.Context) ([]dto.UserDto, error)
	Ping(ctx context.Context) (string, error)
	ListLibraries(ctx context.Context) ([]dto.BaseItem, error)
	ListItems(ctx context.Context, libraryID string, itemType string) ([]dto.BaseItem, error)
	CountEpisodes(ctx context.Context, showID string) (int, error)
	Close()
}

// MediaServerClientFactory builds clients for a server address. Breakers and
// limiters are shared by every client of the same address.
type MediaServerClientFactory interface {
	New(address, token string) MediaServerClient
}

type mediaServerClientFactory struct {
	cfg      *config.Config
	log      *logger.Logger
	limiters *ratelimit.LimiterStore
	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[*httpclient.BaseResponse]
}

func NewMediaServerClientFactory(cfg *config.Config, log *logger.Logger) MediaServerClientFactory {
	perSecond := cfg.MediaServer.MaxRequestPerSecond
	if perSecond <= 0 {
		perSecond = 20
	}
	return &mediaServerClientFactory{
		cfg:      cfg,
		log:      log,
		limiters: ratelimit.NewLimiterStore(rate.Limit(perSecond), perSecond),
		breakers: make(map[string]*gobreaker.CircuitBreaker[*httpclient.BaseResponse]),
	}
}

func (f *mediaServerClientFactory) breaker(address string) *gobreaker.CircuitBreaker[*httpclient.BaseResponse] {
	f.mu.Lock()
	defer f.mu.Unlock()

	if cb, ok := f.breakers[address]; ok {
		return cb
	}
	maxFailures := f.cfg.MediaServer.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	cb := gobreaker.NewCircuitBreaker[*httpclient.BaseResponse](gobreaker.Settings{
		Name:        "media-server:" + address,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     f.cfg.MediaServer.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			f.log.Warn("Media server circuit breaker state changed",
				logger.StringField("name", name),
				logger.StringField("from", from.String()),
				logger.StringField("to", to.String()),
			)
		},
	})
	f.breakers[address] = cb
	return cb
}

func (f *mediaServerClientFactory) New(address, token string) MediaServerClient {
	address = strings.TrimRight(address, "/")
	client := httpclient.New(address, f.cfg.MediaServer.Timeout, "")
	client.SetHeader("X-Emby-Authorization", fmt.Sprintf(
		`MediaBrowser Client="%s", Device="%s", DeviceId="%s", Version="%s"`,
		f.cfg.MediaServer.ClientName, f.cfg.App.Name, f.cfg.MediaServer.DeviceID, f.cfg.App.Version,
	))
	if token != "" {
		client.SetHeader("X-Emby-Token", token)
	}

	return &mediaServerClient{
		httpClient: client,
		breaker:    f.breaker(address),
		limiters:   f.limiters,
		address:    address,
		log:        f.log.With(logger.StringField("prefix", common.LOG_PREFIX_MEDIA), logger.StringField("address", address)),
	}
}

type mediaServerClient struct {
	httpClient httpclient.HTTPClient
	breaker    *gobreaker.CircuitBreaker[*httpclient.BaseResponse]
	limiters   *ratelimit.LimiterStore
	address    string
	log        *logger.Logger
}

// call runs fn through the limiter and the breaker. Only transport failures
// and 5xx answers count against the breaker.
func (c *mediaServerClient) call(ctx context.Context, op string, fn func() (*httpclient.BaseResponse, error)) (*httpclient.BaseResponse, error) {
	if err := c.limiters.Wait(ctx, c.address); err != nil {
		return nil, apperror.Transport(op, err)
	}

	resp, err := c.breaker.Execute(func() (*httpclient.BaseResponse, error) {
		resp, err := fn()
		if err != nil {
			return resp, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return resp, fmt.Errorf("media server returned status %d", resp.StatusCode)
		}
		return resp, nil
	})
	if err != nil {
		c.log.WarnContext(ctx, "Media server call failed", logger.StringField("op", op), logger.ErrorField(err))
		return resp, apperror.Transport(op, err)
	}
	if !resp.IsSuccess() {
		return resp, apperror.Transport(op, fmt.Errorf("media server returned status %d: %s", resp.StatusCode, truncate(resp.Body, 200)))
	}
	return resp, nil
}

func truncate(body []byte, n int) string {
	if len(body) <= n {
		return string(body)
	}
	return string(body[:n])
}

func (c *mediaServerClient) get(ctx context.Context, op, endpoint string, query map[string]string, result interface{}) error {
	_, err := c.call(ctx, op, func() (*httpclient.BaseResponse, error) {
		return c.httpClient.Get(ctx, endpoint, query, nil, result)
	})
	return err
}

func (c *mediaServerClient) Authenticate(ctx context.Context, userName, password string) (*dto.AuthenticationResult, error) {
	var result dto.AuthenticationResult
	_, err := c.call(ctx, "authenticate", func() (*httpclient.BaseResponse, error) {
		return c.httpClient.Post(ctx, "/Users/AuthenticateByName", dto.AuthenticateByNameRequest{Username: userName, Pw: password}, nil, &result)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *mediaServerClient) GetServerInfo(ctx context.Context) (*dto.SystemInfo, error) {
	var info dto.SystemInfo
	if err := c.get(ctx, "get server info", "/System/Info", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *mediaServerClient) ListPlugins(ctx context.Context) ([]dto.PluginInfo, error) {
	var plugins []dto.PluginInfo
	if err := c.get(ctx, "list plugins", "/Plugins", nil, &plugins); err != nil {
		return nil, err
	}
	return plugins, nil
}

func (c *mediaServerClient) ListDrives(ctx context.Context) ([]dto.FileSystemEntryInfo, error) {
	var drives []dto.FileSystemEntryInfo
	if err := c.get(ctx, "list drives", "/Environment/Drives", nil, &drives); err != nil {
		return nil, err
	}
	return drives, nil
}

func (c *mediaServerClient) ListUsers(ctx context.Context) ([]dto.UserDto, error) {
	var users []dto.UserDto
	if err := c.get(ctx, "list users", "/Users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *mediaServerClient) Ping(ctx context.Context) (string, error) {
	resp, err := c.call(ctx, "ping", func() (*httpclient.BaseResponse, error) {
		return c.httpClient.Post(ctx, "/System/Ping", nil, nil, nil)
	})
	if err != nil {
		return "", err
	}
	return strings.Trim(strings.TrimSpace(string(resp.Body)), `"`), nil
}

func (c *mediaServerClient) ListLibraries(ctx context.Context) ([]dto.BaseItem, error) {
	var result dto.ItemsResult
	if err := c.get(ctx, "list libraries", "/Library/MediaFolders", nil, &result); err != nil {
		return nil, err
	}
	return result.Items, nil
}

func (c *mediaServerClient) ListItems(ctx context.Context, libraryID string, itemType string) ([]dto.BaseItem, error) {
	var result dto.ItemsResult
	query := map[string]string{
		"ParentId":         libraryID,
		"Recursive":        "true",
		"IncludeItemTypes": itemType,
		"Fields":           "Genres,People,ProviderIds,SortName,DateCreated,PremiereDate,OfficialRating,Status,MediaSources",
	}
	if err := c.get(ctx, "list items", "/Items", query, &result); err != nil {
		return nil, err
	}
	return result.Items, nil
}

func (c *mediaServerClient) CountEpisodes(ctx context.Context, showID string) (int, error) {
	var result dto.ItemsResult
	query := map[string]string{
		"ParentId":         showID,
		"Recursive":        "true",
		"IncludeItemTypes": "Episode",
		"Limit":            strconv.Itoa(0),
	}
	if err := c.get(ctx, "count episodes", "/Items", query, &result); err != nil {
		return 0, err
	}
	return result.TotalRecordCount, nil
}

func (c *mediaServerClient) Close() {
	c.httpClient.Close()
}
