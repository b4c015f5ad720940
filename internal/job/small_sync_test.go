package job

import (
	"context"
	"errors"
	"testing"

	"mediastat/internal/dto"
	"mediastat/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSmallSyncJob_Run(t *testing.T) {
	repo := newTestRepository(t)
	settings := new(mockSettings)
	settings.On("GetMediaServer", mock.Anything).Return(configuredServer, nil)

	client := new(mockMediaServerClient)
	client.On("GetServerInfo", mock.Anything).Return(&dto.SystemInfo{Id: "srv", ServerName: "Home", Version: "4.8.0"}, nil)
	client.On("ListPlugins", mock.Anything).Return([]dto.PluginInfo{{Id: "p1", Name: "Trakt"}, {Id: "p2", Name: "OpenSubtitles"}}, nil)
	client.On("ListDrives", mock.Anything).Return([]dto.FileSystemEntryInfo{{Name: "media", Path: "/mnt/media", Type: "Directory"}}, nil)
	client.On("ListUsers", mock.Anything).Return([]dto.UserDto{{Id: "u1", Name: "admin", Policy: dto.UserPolicy{IsAdministrator: true}}}, nil)
	repo.MediaServerClients = staticClientFactory{client: client}

	j := NewSmallSyncJob(logger.NewNop(), settings, repo)
	reporter := &recordingReporter{}
	require.NoError(t, j.Run(context.Background(), reporter))
	j.Dispose()

	assert.Equal(t, []float64{35, 55, 65}, reporter.progress)
	assert.Equal(t, 1, client.closed)

	ctx := context.Background()
	info, err := repo.ServerRepo.GetServerInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Home", info.ServerName)
	plugins, err := repo.ServerRepo.GetPlugins(ctx)
	require.NoError(t, err)
	assert.Len(t, plugins, 2)
	users, err := repo.ServerRepo.GetUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.True(t, users[0].IsAdministrator)
}

func TestSmallSyncJob_FailsOnTransportError(t *testing.T) {
	repo := newTestRepository(t)
	settings := new(mockSettings)
	settings.On("GetMediaServer", mock.Anything).Return(configuredServer, nil)

	client := new(mockMediaServerClient)
	client.On("GetServerInfo", mock.Anything).Return(&dto.SystemInfo{Id: "srv"}, nil)
	client.On("ListPlugins", mock.Anything).Return([]dto.PluginInfo(nil), errors.New("timeout"))
	repo.MediaServerClients = staticClientFactory{client: client}

	j := NewSmallSyncJob(logger.NewNop(), settings, repo)
	reporter := &recordingReporter{}
	err := j.Run(context.Background(), reporter)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list plugins")
	assert.Equal(t, []float64{35}, reporter.progress)
	client.AssertNotCalled(t, "ListDrives", mock.Anything)
}
