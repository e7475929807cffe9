package cmd

import (
	"context"
	"time"

	"sttmgr/config"
	"sttmgr/config/models"
	"sttmgr/internal/daemon"
	"sttmgr/internal/remote"
)

// newService returns the settings backend for one-shot commands: the
// daemon when it is answering on its socket, the settings file
// otherwise.
func newService() (remote.Service, error) {
	client := remote.NewClient(daemon.SocketPath())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if client.Ping(ctx) == nil {
		return client, nil
	}

	manager, err := config.NewManager()
	if err != nil {
		return nil, err
	}
	return remote.NewLocal(manager), nil
}

// loadSettings reads the current settings through svc.
func loadSettings(svc remote.Service) (models.Settings, error) {
	ctx, cancel := callContext()
	defer cancel()
	return svc.GetSettings(ctx)
}

func callContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), remote.DefaultCallTimeout)
}
