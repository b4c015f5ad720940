package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"mediastat/internal/apperror"
	"mediastat/internal/dto"
	"mediastat/internal/model"
	"mediastat/internal/repository"
	"mediastat/pkg/logger"
)

var (
	errEmptyCredentials = errors.New("user name and password are required")
	errEmptyToken       = errors.New("media server returned no access token")
)

type MediaServerService interface {
	// GetToken logs in to the media server and stores the session for the jobs.
	GetToken(ctx context.Context, login dto.MediaServerLoginRequest) (*dto.MediaServerToken, error)
	GetStatus(ctx context.Context) (*dto.MediaServerStatus, error)
}

type mediaServerService struct {
	log      *logger.Logger
	clients  repository.MediaServerClientFactory
	settings SettingsService
}

func NewMediaServerService(log *logger.Logger, clients repository.MediaServerClientFactory, settings SettingsService) MediaServerService {
	return &mediaServerService{log: log, clients: clients, settings: settings}
}

func (m *mediaServerService) GetToken(ctx context.Context, login dto.MediaServerLoginRequest) (*dto.MediaServerToken, error) {
	if strings.TrimSpace(login.UserName) == "" || login.Password == "" {
		return nil, apperror.Business(apperror.CodeTokenFailed, http.StatusInternalServerError, errEmptyCredentials)
	}

	address := strings.TrimRight(login.Address, "/")
	client := m.clients.New(address, "")
	defer client.Close()

	auth, err := client.Authenticate(ctx, login.UserName, login.Password)
	if err != nil {
		m.log.WarnContext(ctx, "Media server login failed", logger.ErrorField(err), logger.StringField("address", address))
		return nil, apperror.Business(apperror.CodeTokenFailed, http.StatusInternalServerError, err)
	}
	if auth.AccessToken == "" {
		return nil, apperror.Business(apperror.CodeTokenFailed, http.StatusInternalServerError, errEmptyToken)
	}

	settings, err := m.settings.GetMediaServer(ctx)
	if err != nil {
		return nil, err
	}
	settings.ServerAddress = address
	settings.AccessToken = auth.AccessToken
	settings.ServerID = auth.ServerId
	settings.UserID = auth.User.Id
	if err := m.settings.SaveMediaServer(ctx, settings); err != nil {
		return nil, apperror.Persistence("save media server settings", err)
	}
	if err := m.settings.SaveMediaServerStatus(ctx, model.MediaServerStatus{}); err != nil {
		return nil, apperror.Persistence("reset media server status", err)
	}

	return &dto.MediaServerToken{
		Token:    auth.AccessToken,
		UserID:   auth.User.Id,
		ServerID: auth.ServerId,
		IsAdmin:  auth.User.Policy.IsAdministrator,
	}, nil
}

func (m *mediaServerService) GetStatus(ctx context.Context) (*dto.MediaServerStatus, error) {
	status, err := m.settings.GetMediaServerStatus(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.MediaServerStatus{MissedPings: status.MissedPings}, nil
}
