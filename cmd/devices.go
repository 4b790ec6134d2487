package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/smazurov/capturehost/internal/api/models"
	"github.com/smazurov/capturehost/internal/capture"
	"github.com/smazurov/capturehost/internal/desktop"
	"github.com/smazurov/capturehost/internal/dispatcher"
	"github.com/smazurov/capturehost/internal/mediadevices"
	"github.com/spf13/cobra"
)

// DevicesOptions holds the flags of the devices command.
type DevicesOptions struct {
	Audio      bool
	Video      bool
	Default    bool
	JSON       bool
	Verbose    bool
	Backends   []string
	DeviceFile string
}

// CreateDevicesCmd creates the devices command.
func CreateDevicesCmd() *cobra.Command {
	opts := &DevicesOptions{}

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List capture devices once",
		Long: `Enumerates audio and video capture devices and prints them. ` +
			`With --default only the first device of each requested kind is printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			initCLILogging(opts.Verbose)
			return RunDevices(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&opts.Audio, "audio", false, "Only audio devices")
	cmd.Flags().BoolVar(&opts.Video, "video", false, "Only video devices")
	cmd.Flags().BoolVar(&opts.Default, "default", false, "Print the default device of each kind")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output JSON")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Debug logging")
	cmd.Flags().StringSliceVar(&opts.Backends, "backend", nil, "Enumeration backends (sysfs, pion, file)")
	cmd.Flags().StringVar(&opts.DeviceFile, "device-file", "", "TOML device file for the file backend")

	return cmd
}

// RunDevices enumerates once and writes the result to w. Neither --audio nor
// --video means both.
func RunDevices(ctx context.Context, opts *DevicesOptions, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	enum, err := capture.NewEnumerator(opts.Backends, opts.DeviceFile)
	if err != nil {
		return err
	}
	host := capture.NewMediaCaptureDevices(enum)
	if err := host.Refresh(ctx); err != nil {
		return fmt.Errorf("device enumeration failed: %w", err)
	}

	wantAudio, wantVideo := opts.Audio, opts.Video
	if !wantAudio && !wantVideo {
		wantAudio, wantVideo = true, true
	}

	d := dispatcher.New(dispatcher.Options{Host: host, Factory: desktop.FactoryFuncs{}})

	var devices mediadevices.Devices
	err = withUIThread(ctx, func(ctx context.Context) error {
		if opts.Default {
			devices = d.DefaultDevices(ctx, wantAudio, wantVideo)
			return nil
		}
		devices = mediadevices.Devices{}
		if wantAudio {
			devices = append(devices, d.AudioCaptureDevices(ctx)...)
		}
		if wantVideo {
			devices = append(devices, d.VideoCaptureDevices(ctx)...)
		}
		return nil
	})
	if err != nil {
		return err
	}

	infos := models.FromDevices(devices)
	if opts.JSON {
		return writeJSON(w, infos)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tID\tNAME\tPATH")
	for _, info := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", info.Kind, info.ID, info.Name, info.Path)
	}
	return tw.Flush()
}
