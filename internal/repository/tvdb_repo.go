package repository

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"mediastat/config"
	"mediastat/internal/apperror"
	"mediastat/internal/dto"
	"mediastat/pkg/common"
	"mediastat/pkg/httpclient"
	"mediastat/pkg/logger"
	"mediastat/pkg/utils"

	"golang.org/x/time/rate"
)

const tvdbDateLayout = "2006-01-02"

type TvdbRepository interface {
	Login(ctx context.Context, apiKey string) error
	GetEpisodes(ctx context.Context, seriesID string) ([]dto.VirtualEpisode, error)
	GetShowsToUpdate(ctx context.Context, since time.Time) ([]string, error)
}

type tvdbRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
	mu             sync.Mutex
	token          string
	now            func() time.Time
}

func NewTvdbRepository(cfg *config.Config, log *logger.Logger) TvdbRepository {
	perMinute := cfg.Tvdb.MaxRequestPerMin
	if perMinute <= 0 {
		perMinute = 60
	}
	requestLimiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)

	return &tvdbRepository{
		httpClient:     httpclient.New(cfg.Tvdb.BaseURL, cfg.Tvdb.Timeout, ""),
		cfg:            cfg,
		logger:         log.With(logger.StringField("prefix", common.LOG_PREFIX_TVDB_CLIENT)),
		requestLimiter: requestLimiter,
		now:            utils.TimeNowUTC,
	}
}

func (r *tvdbRepository) wait(ctx context.Context) error {
	if !r.requestLimiter.Allow() {
		r.logger.DebugContext(ctx, "TVDB request limit reached, waiting",
			logger.IntField("max_request_per_minute", r.cfg.Tvdb.MaxRequestPerMin),
		)
		return r.requestLimiter.Wait(ctx)
	}
	return nil
}

func (r *tvdbRepository) Login(ctx context.Context, apiKey string) error {
	if err := r.wait(ctx); err != nil {
		return err
	}

	var token dto.TvdbToken
	resp, err := r.httpClient.Post(ctx, "/login", dto.TvdbLoginRequest{ApiKey: apiKey}, nil, &token)
	if err != nil {
		return apperror.Transport("tvdb login", err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return apperror.Business(apperror.CodeTvdbLoginFailed, http.StatusInternalServerError,
			fmt.Errorf("tvdb rejected the api key"))
	}
	if !resp.IsSuccess() {
		return apperror.Transport("tvdb login", fmt.Errorf("tvdb returned status %d", resp.StatusCode))
	}

	r.mu.Lock()
	r.token = token.Token
	r.httpClient.SetAuthToken(token.Token)
	r.mu.Unlock()
	return nil
}

// GetEpisodes walks every page of the series and keeps the episodes that
// belong to a regular season and have already aired.
func (r *tvdbRepository) GetEpisodes(ctx context.Context, seriesID string) ([]dto.VirtualEpisode, error) {
	today := utils.StartOfDay(r.now())
	var episodes []dto.VirtualEpisode

	for page := 1; ; page++ {
		if err := r.wait(ctx); err != nil {
			return nil, err
		}

		var result dto.TvdbEpisodes
		endpoint := fmt.Sprintf("/series/%s/episodes", seriesID)
		resp, err := r.httpClient.Get(ctx, endpoint, map[string]string{"page": strconv.Itoa(page)}, nil, &result)
		if err != nil {
			return nil, apperror.Transport("tvdb get episodes", err)
		}
		if !resp.IsSuccess() {
			return nil, apperror.Transport("tvdb get episodes",
				fmt.Errorf("tvdb returned status %d for series %s page %d", resp.StatusCode, seriesID, page))
		}

		for _, ep := range result.Data {
			if ep.AiredSeason == 0 {
				continue
			}
			// unparseable dates come back as the zero time and are kept
			aired, _ := time.Parse(tvdbDateLayout, ep.FirstAired)
			if aired.After(today) {
				continue
			}
			episodes = append(episodes, dto.VirtualEpisode{
				Id:            ep.Id,
				SeasonNumber:  ep.AiredSeason,
				EpisodeNumber: ep.AiredEpisodeNumber,
				Name:          ep.EpisodeName,
				FirstAired:    ep.FirstAired,
			})
		}

		next := result.Links.Next
		if next == nil || *next == page {
			break
		}
	}

	return episodes, nil
}

// GetShowsToUpdate queries the update feed one week at a time. A failing
// window is logged and skipped so the rest of the range still counts.
func (r *tvdbRepository) GetShowsToUpdate(ctx context.Context, since time.Time) ([]string, error) {
	var ids []string
	failed := 0
	windows := utils.WeekWindows(since, r.now())

	for _, window := range windows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		windowIDs, err := r.getUpdates(ctx, window[0], window[1])
		if err != nil {
			failed++
			r.logger.WarnContext(ctx, "Skipping TVDB update window",
				logger.TimeField("from", window[0]),
				logger.TimeField("to", window[1]),
				logger.ErrorField(apperror.PartialResult("tvdb updates", err)),
			)
			continue
		}
		ids = append(ids, windowIDs...)
	}

	if failed > 0 {
		r.logger.WarnContext(ctx, "TVDB update feed returned partial results",
			logger.IntField("failed_windows", failed),
			logger.IntField("windows", len(windows)),
		)
	}
	return utils.SortedUnique(ids), nil
}

func (r *tvdbRepository) getUpdates(ctx context.Context, from, to time.Time) ([]string, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}

	var result dto.TvdbUpdates
	query := map[string]string{
		"fromTime": strconv.FormatInt(from.Unix(), 10),
		"toTime":   strconv.FormatInt(to.Unix(), 10),
	}
	resp, err := r.httpClient.Get(ctx, "/updated/query", query, nil, &result)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("tvdb returned status %d", resp.StatusCode)
	}

	ids := make([]string, 0, len(result.Data))
	for _, u := range result.Data {
		ids = append(ids, strconv.Itoa(u.Id))
	}
	return ids, nil
}
