package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/capturehost/cmd"
	"github.com/smazurov/capturehost/internal/api"
	"github.com/smazurov/capturehost/internal/capture"
	"github.com/smazurov/capturehost/internal/config"
	"github.com/smazurov/capturehost/internal/dispatcher"
	"github.com/smazurov/capturehost/internal/events"
	"github.com/smazurov/capturehost/internal/logging"
	"github.com/smazurov/capturehost/internal/metrics/exporters"
	"github.com/smazurov/capturehost/internal/threads"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Server settings
	Port string `help:"Port to listen on" short:"p" default:":8090" toml:"server.port" env:"SERVER_PORT"`

	// Auth settings
	AuthUsername string `help:"Basic auth username" default:"" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password" default:"" toml:"auth.password" env:"AUTH_PASSWORD"`

	// Capture settings
	CaptureBackends        string `help:"Comma-separated enumeration backends (sysfs, pion, file)" default:"" toml:"capture.backends" env:"CAPTURE_BACKENDS"`
	CaptureDeviceFile      string `help:"TOML device file for the file backend" default:"" toml:"capture.device_file" env:"CAPTURE_DEVICE_FILE"`
	CaptureHotplugDebounce string `help:"Quiet period before re-enumerating after hotplug" default:"500ms" toml:"capture.hotplug_debounce" env:"CAPTURE_HOTPLUG_DEBOUNCE"`
	DisableEnumeration     bool   `help:"Report empty device lists (testing)" default:"false" toml:"capture.disable_enumeration" env:"CAPTURE_DISABLE_ENUMERATION"`

	// Metrics settings
	MetricsEnabled bool `help:"Expose Prometheus metrics at /metrics" default:"true" toml:"metrics.enabled" env:"METRICS_ENABLED"`

	// Logging settings
	LoggingLevel      string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat     string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingCapture    string `help:"Capture logging level" default:"info" toml:"logging.capture" env:"LOGGING_CAPTURE"`
	LoggingDispatcher string `help:"Dispatcher logging level" default:"info" toml:"logging.dispatcher" env:"LOGGING_DISPATCHER"`
	LoggingAPI        string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
	LoggingHTTP       string `help:"HTTP request logging level" default:"info" toml:"logging.http" env:"LOGGING_HTTP"`
	LoggingThreads    string `help:"Thread runner logging level" default:"info" toml:"logging.threads" env:"LOGGING_THREADS"`
}

func (o *Options) loggingConfig() logging.Config {
	return logging.Config{
		Level:  o.LoggingLevel,
		Format: o.LoggingFormat,
		Modules: map[string]string{
			"capture":    o.LoggingCapture,
			"dispatcher": o.LoggingDispatcher,
			"api":        o.LoggingAPI,
			"http":       o.LoggingHTTP,
			"threads":    o.LoggingThreads,
		},
	}
}

func splitBackends(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' '
	})
}

func main() {
	var cli humacli.CLI

	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		logging.Initialize(opts.loggingConfig())
		logger := logging.GetLogger("main")

		eventBus := events.New()

		enumerator, err := capture.NewEnumerator(splitBackends(opts.CaptureBackends), opts.CaptureDeviceFile)
		if err != nil {
			logger.Error("Invalid capture configuration", "error", err)
			os.Exit(1)
		}

		hostOpts := []capture.Option{capture.WithEventBus(eventBus)}
		if opts.CaptureHotplugDebounce != "" {
			debounce, parseErr := time.ParseDuration(opts.CaptureHotplugDebounce)
			if parseErr != nil {
				logger.Warn("Invalid hotplug debounce, using default", "value", opts.CaptureHotplugDebounce, "error", parseErr)
			} else {
				hostOpts = append(hostOpts, capture.WithHotplugDebounce(debounce))
			}
		}
		host := capture.NewMediaCaptureDevices(enumerator, hostOpts...)
		capture.SetDefault(host)

		uiRunner := threads.NewRunner(threads.UI, 0)

		// The singleton binds to the registry installed above.
		mediaDispatcher := dispatcher.GetInstance()
		if opts.DisableEnumeration {
			logger.Info("Device enumeration disabled")
			mediaDispatcher.DisableDeviceEnumerationForTesting()
		}

		// Logging levels follow config.toml edits without a restart.
		configWatcher := config.NewConfigWatcher(opts.Config, config.ReadLoggingConfig, logger)
		configWatcher.OnReload(func(cfg logging.Config) {
			logger.Info("Reloading logging configuration", "level", cfg.Level)
			logging.Initialize(cfg)
		})

		var deviceWatcher *config.Watcher[struct{}]
		if opts.CaptureDeviceFile != "" {
			deviceWatcher = config.NewConfigWatcher(opts.CaptureDeviceFile, func(string) (struct{}, error) {
				return struct{}{}, nil
			}, logger)
			deviceWatcher.OnReload(func(struct{}) {
				if refreshErr := host.Refresh(context.Background()); refreshErr != nil {
					logger.Warn("Device file refresh failed", "error", refreshErr)
				}
			})
		}

		apiOpts := &api.Options{
			AuthUsername: opts.AuthUsername,
			AuthPassword: opts.AuthPassword,
			Dispatcher:   mediaDispatcher,
			Runner:       uiRunner,
			Host:         host,
			EventBus:     eventBus,
		}
		if opts.MetricsEnabled {
			apiOpts.PrometheusHandler = exporters.HTTPHandler()
		}
		server := api.NewServer(apiOpts)

		var stopObserving func()

		hooks.OnStart(func() {
			uiRunner.Start()
			stopObserving = mediaDispatcher.Observe(eventBus, uiRunner)

			if startErr := host.StartMonitoring(context.Background()); startErr != nil {
				logger.Warn("Hotplug monitoring unavailable", "error", startErr)
			}

			if _, statErr := os.Stat(opts.Config); statErr == nil {
				if startErr := configWatcher.Start(); startErr != nil {
					logger.Warn("Failed to watch config file", "path", opts.Config, "error", startErr)
				}
			}
			if deviceWatcher != nil {
				if startErr := deviceWatcher.Start(); startErr != nil {
					logger.Warn("Failed to watch device file", "path", opts.CaptureDeviceFile, "error", startErr)
				}
			}

			if _, notifyErr := daemon.SdNotify(false, daemon.SdNotifyReady); notifyErr != nil {
				logger.Debug("sd_notify failed", "error", notifyErr)
			}

			logger.Info("Starting HTTP server", "port", opts.Port)
			if startErr := server.Start(opts.Port); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
				logger.Error("Failed to start HTTP server", "error", startErr)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down server")
			_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)

			if stopErr := server.Stop(); stopErr != nil {
				logger.Error("Error stopping HTTP server", "error", stopErr)
			}

			if deviceWatcher != nil {
				_ = deviceWatcher.Stop()
			}
			_ = configWatcher.Stop()

			host.StopMonitoring()
			if stopObserving != nil {
				stopObserving()
			}
			uiRunner.Stop()

			if closeErr := eventBus.Close(); closeErr != nil {
				logger.Warn("Error closing event bus", "error", closeErr)
			}
		})
	})

	cli.Root().AddCommand(cmd.CreateDevicesCmd())
	cli.Root().AddCommand(cmd.CreateSourcesCmd())

	cli.Run()
}
