package client

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/service/common"
)

// Options configures how a command reaches the server.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// ConfigExplicit is true when ConfigPath came from the command line.
	ConfigExplicit bool
	// ServerAddress overrides the address derived from the config.
	ServerAddress string
	// Wait keeps retrying Status until the server answers or Wait elapses.
	Wait time.Duration
	// Out receives the command output, os.Stdout when nil.
	Out io.Writer
}

// session is a loaded config plus a connected client.
type session struct {
	settings *config.Config
	address  string
	client   *common.Client
	out      io.Writer
}

// connect loads settings and builds an API client for opts.
func connect(ctx context.Context, opts *Options) (*session, error) {
	settings, err := config.LoadOrDefault(opts.ConfigPath, opts.ConfigExplicit)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	address := DialAddress(settings.ListenAddress)
	if opts.ServerAddress != "" {
		address = opts.ServerAddress
	}

	clientOpts := []common.Option{common.WithCallTimeout(settings.Timeout)}

	// Identify current user and hostname for server-side request logs.
	actor, err := common.DetectActor()
	if err != nil {
		logger.WarnKV(ctx, "Failed to detect actor", "error", err)
	} else {
		clientOpts = append(clientOpts, common.WithActor(actor))
	}

	client, err := common.New(address, clientOpts...)
	if err != nil {
		return nil, err
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	return &session{
		settings: settings,
		address:  address,
		client:   client,
		out:      out,
	}, nil
}

// DialAddress turns a listen address into one a client can dial.
// An empty or wildcard host becomes the loopback address.
func DialAddress(listen string) string {
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return listen
	}

	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}

	return net.JoinHostPort(host, port)
}
