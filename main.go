package main

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/lumenode/cmd"
	"github.com/smazurov/lumenode/internal/api"
	"github.com/smazurov/lumenode/internal/audio"
	"github.com/smazurov/lumenode/internal/config"
	"github.com/smazurov/lumenode/internal/coordinator"
	"github.com/smazurov/lumenode/internal/events"
	"github.com/smazurov/lumenode/internal/link"
	"github.com/smazurov/lumenode/internal/logging"
	"github.com/smazurov/lumenode/internal/metrics"
	"github.com/smazurov/lumenode/internal/screen"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Server settings
	Port string `help:"Port to listen on" short:"p" default:":8090" toml:"server.port" env:"SERVER_PORT"`

	// Serial settings
	SerialPort        string `help:"Serial port of the LED controller" default:"/dev/ttyUSB0" toml:"serial.port" env:"SERIAL_PORT"`
	SerialBaud        int    `help:"Serial baud rate" default:"9600" toml:"serial.baud" env:"SERIAL_BAUD"`
	SerialAutoConnect bool   `help:"Open the serial link at startup" default:"true" toml:"serial.auto_connect" env:"SERIAL_AUTO_CONNECT"`

	// Audio settings
	AudioChunkSize  int `help:"Samples per analysis chunk" default:"1024" toml:"audio.chunk_size" env:"AUDIO_CHUNK_SIZE"`
	AudioSampleRate int `help:"Capture sample rate in Hz" default:"44100" toml:"audio.sample_rate" env:"AUDIO_SAMPLE_RATE"`

	// Screen settings
	ScreenFPS int `help:"Screen sampling rate in frames per second" default:"10" toml:"screen.fps" env:"SCREEN_FPS"`

	// Auth settings
	AuthUsername string `help:"Basic auth username" default:"admin" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password" default:"password" toml:"auth.password" env:"AUTH_PASSWORD"`

	// Logging settings
	LoggingLevel       string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat      string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingLink        string `help:"Serial link logging level" default:"info" toml:"logging.link" env:"LOGGING_LINK"`
	LoggingAudio       string `help:"Audio engine logging level" default:"info" toml:"logging.audio" env:"LOGGING_AUDIO"`
	LoggingScreen      string `help:"Screen engine logging level" default:"info" toml:"logging.screen" env:"LOGGING_SCREEN"`
	LoggingCoordinator string `help:"Mode coordinator logging level" default:"info" toml:"logging.coordinator" env:"LOGGING_COORDINATOR"`
	LoggingAPI         string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
}

func main() {
	// Create Huma CLI
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		// Load configuration automatically
		if loadErr := config.LoadConfig(opts, nil); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		// Initialize logging system
		loggingConfig := logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"link":        opts.LoggingLink,
				"audio":       opts.LoggingAudio,
				"screen":      opts.LoggingScreen,
				"coordinator": opts.LoggingCoordinator,
				"api":         opts.LoggingAPI,
			},
		}
		logging.Initialize(loggingConfig)

		logger := logging.GetLogger("main")

		// Create event bus for in-process event handling
		eventBus := events.New()

		// Feed new log entries onto the bus so /api/logs/stream sees them live
		logging.SetLogCallback(func(entry logging.LogEntry) {
			eventBus.Publish(events.LogEntryEvent{
				Seq:        entry.Seq,
				Timestamp:  entry.Timestamp.Format(time.RFC3339Nano),
				Level:      entry.Level,
				Module:     entry.Module,
				Message:    entry.Message,
				Attributes: entry.Attributes,
			})
		})

		deviceLink := link.New(&link.Options{
			Port:            opts.SerialPort,
			Baud:            opts.SerialBaud,
			ReadDiagnostics: true,
			EventBus:        eventBus,
		})

		audioEngine := audio.NewEngine(&audio.Options{
			Source:     audio.NewCaptureSource(opts.AudioChunkSize, opts.AudioSampleRate),
			Sink:       deviceLink,
			EventBus:   eventBus,
			ChunkSize:  opts.AudioChunkSize,
			SampleRate: opts.AudioSampleRate,
		})

		screenEngine := screen.NewEngine(&screen.Options{
			Grabber:  screen.NewDisplayGrabber(),
			Sink:     deviceLink,
			EventBus: eventBus,
			FPS:      opts.ScreenFPS,
		})

		coord := coordinator.New(deviceLink, audioEngine, screenEngine, eventBus)

		// Reconnect the link when the serial section of the config changes
		watcher := config.NewConfigWatcher(
			opts.Config,
			config.LoadSerialSettings,
			logging.GetLogger("config"),
		)
		watcher.OnReload(func(settings config.SerialSettings) {
			currentPort, currentBaud := deviceLink.Settings()
			if settings.Port == "" || (settings.Port == currentPort && (settings.Baud == 0 || settings.Baud == currentBaud)) {
				return
			}
			logger.Info("Serial settings changed, reconnecting",
				"port", settings.Port, "baud", settings.Baud)
			deviceLink.Reconnect(settings.Port, settings.Baud)
		})

		server := api.NewServer(&api.Options{
			AuthUsername:      opts.AuthUsername,
			AuthPassword:      opts.AuthPassword,
			Link:              deviceLink,
			Modes:             coord,
			Audio:             audioEngine,
			Screen:            screenEngine,
			EventBus:          eventBus,
			PrometheusHandler: metrics.Handler(),
		})

		hooks.OnStart(func() {
			if _, statErr := os.Stat(opts.Config); statErr == nil {
				if watchErr := watcher.Start(); watchErr != nil {
					logger.Warn("Failed to watch config file", "error", watchErr)
				}
			}

			if opts.SerialAutoConnect {
				deviceLink.Connect(opts.SerialPort, opts.SerialBaud)
				if !deviceLink.IsOpen() {
					logger.Warn("Device link not open, commands will be dropped until connect",
						"port", opts.SerialPort)
				}
			}

			logger.Info("Starting HTTP server", "port", opts.Port)
			if startErr := server.Start(opts.Port); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
				logger.Error("Failed to start HTTP server", "error", startErr)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down")
			if stopErr := server.Stop(); stopErr != nil {
				logger.Error("Error stopping HTTP server", "error", stopErr)
			}

			// Turn the strip off and stop any running producer before the
			// port closes.
			coord.Deactivate()

			if stopErr := watcher.Stop(); stopErr != nil {
				logger.Error("Error stopping config watcher", "error", stopErr)
			}
			deviceLink.Disconnect()
			if closeErr := eventBus.Close(); closeErr != nil {
				logger.Error("Error closing event bus", "error", closeErr)
			}
		})
	})

	cli.Root().AddCommand(cmd.CreatePortsCmd())
	cli.Root().AddCommand(cmd.CreateSendCmd())
	cli.Root().AddCommand(cmd.CreateUpdateCmd())

	// Run the CLI
	cli.Run()
}
