package client

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/oshokin/alarm-clock/internal/logger"
)

// ListSounds prints the sound catalog and marks the one being previewed.
func ListSounds(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "sounds-list")

	s, err := connect(ctx, opts)
	if err != nil {
		return err
	}

	sounds, err := s.client.ListSounds(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(w, "ID\tNAME\tPREVIEW")

	for _, sound := range sounds.Sounds {
		playing := ""
		if sound.ID == sounds.Previewing {
			playing = "playing"
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", sound.ID, sound.Name, playing)
	}

	return w.Flush()
}

// PreviewSound plays a catalog sound on the server until stopped.
func PreviewSound(ctx context.Context, opts *Options, id string) error {
	ctx = logger.WithName(ctx, "sounds-preview")

	s, err := connect(ctx, opts)
	if err != nil {
		return err
	}

	if err = s.client.PreviewSound(ctx, id); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Preview started", "sound", id)

	return nil
}

// StopPreview stops the running preview, if any.
func StopPreview(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "sounds-stop")

	s, err := connect(ctx, opts)
	if err != nil {
		return err
	}

	if err = s.client.StopPreview(ctx); err != nil {
		return err
	}

	logger.Info(ctx, "Preview stopped")

	return nil
}
