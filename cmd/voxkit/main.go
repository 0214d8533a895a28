package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/voxkit/voxkit/internal/audio"
	"github.com/voxkit/voxkit/internal/config"
	"github.com/voxkit/voxkit/internal/engine"
	"github.com/voxkit/voxkit/internal/history"
	"github.com/voxkit/voxkit/internal/hotkey"
	"github.com/voxkit/voxkit/internal/inject"
	"github.com/voxkit/voxkit/internal/models"
	"github.com/voxkit/voxkit/internal/vocab"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default: ~/.config/voxkit/config.yaml)")
	modelPath := flag.String("model", "", "model path override (whisper .bin file or sherpa-onnx directory)")
	transcribeFile := flag.String("transcribe", "", "transcribe a single 16kHz WAV file and exit")
	download := flag.Bool("download", false, "download the default whisper model and exit")
	setHotwords := flag.String("set-hotwords", "", "comma-separated bias words for transducer decoding; store and exit")
	listHotwords := flag.Bool("hotwords", false, "print stored bias words and exit")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal("config", "err", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("config validation", "err", err)
	}
	setLogLevel(cfg.LogLevel)

	if *download {
		if _, err := models.DownloadWhisper(printProgress); err != nil {
			log.Fatal("download failed", "err", err)
		}
		return
	}

	if *setHotwords != "" || *listHotwords {
		if err := manageHotwords(cfg.Hotwords.Path, *setHotwords); err != nil {
			log.Fatal("hotwords", "err", err)
		}
		return
	}

	if *modelPath != "" {
		cfg.ModelPath = *modelPath
	}

	eng := engine.New(engine.Options{
		Threads:       cfg.Threads,
		ScratchDir:    cfg.Scratch.Dir,
		SidecarBinDir: cfg.Sidecar.BinDir,
		SidecarBinary: cfg.Sidecar.Binary,
		HotwordsPath:  cfg.Hotwords.Path,
		HotwordsScore: cfg.Hotwords.Score,
	})
	defer eng.Close()

	log.Info("loading model", "path", cfg.ModelPath)
	loadStart := time.Now()
	label, err := eng.Load(cfg.ModelPath)
	if err != nil {
		log.Fatal("failed to load model (run 'voxkit -download' to fetch the default one)", "path", cfg.ModelPath, "err", err)
	}
	log.Info("model ready", "name", label, "took", time.Since(loadStart).Round(time.Millisecond))

	store := history.NewStore(cfg.History.Path)

	if *transcribeFile != "" {
		transcribeOnce(eng, store, *transcribeFile)
		return
	}

	runDictation(cfg, eng, store)
}

// manageHotwords stores a new bias vocabulary when words is non-empty,
// then prints the current one.
func manageHotwords(path, words string) error {
	store := vocab.NewStore(path)

	if words != "" {
		var list []string
		for _, w := range strings.Split(words, ",") {
			if w = strings.TrimSpace(w); w != "" {
				list = append(list, w)
			}
		}
		if err := store.Save(list); err != nil {
			return err
		}
	}

	stored, err := store.Words()
	if err != nil {
		return err
	}
	for _, w := range stored {
		fmt.Println(w)
	}
	return nil
}

// transcribeOnce runs the byte-level transcription path on one WAV file
// and prints the transcript to stdout.
func transcribeOnce(eng *engine.Engine, store *history.Store, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatal("reading audio file", "path", path, "err", err)
	}

	start := time.Now()
	text, err := eng.Transcribe(data)
	if err != nil {
		log.Fatal("transcription failed", "err", err)
	}
	elapsed := time.Since(start)

	fmt.Println(text)

	if _, err := store.Save(text, path, "", 0, elapsed.Seconds()); err != nil {
		log.Warn("saving history", "err", err)
	}
}

// runDictation is the push-to-talk loop: hotkey starts the microphone,
// releasing it transcribes the capture and types the result into the
// foreground application.
func runDictation(cfg *config.Config, eng *engine.Engine, store *history.Store) {
	recorder, err := audio.NewRecorder(cfg.Audio.SampleRate, cfg.Audio.Channels)
	if err != nil {
		log.Fatal("failed to initialize audio recorder", "err", err)
	}
	defer recorder.Close()

	injector := inject.NewInjector(cfg.Inject.Method)
	listener := hotkey.NewListener(cfg.Hotkey.Keys, cfg.Hotkey.Mode)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go listener.Start()
	log.Info("ready", "hotkey", strings.Join(cfg.Hotkey.Keys, "+"), "mode", cfg.Hotkey.Mode, "model", eng.CurrentModel())

	events := listener.Events()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				log.Info("hotkey listener stopped")
				return
			}

			switch ev.Type {
			case hotkey.EventStart:
				if err := recorder.Start(); err != nil {
					log.Error("failed to start recording", "err", err)
					continue
				}
				log.Info("recording")

			case hotkey.EventStop:
				samples := recorder.Stop()
				if samples == nil {
					continue
				}

				duration := float64(len(samples)) / float64(cfg.Audio.SampleRate)
				if duration < 0.3 {
					log.Debug("recording too short, skipping", "seconds", duration)
					continue
				}
				log.Info("transcribing", "seconds", fmt.Sprintf("%.1f", duration))

				go func(samples []float32, duration float64) {
					start := time.Now()
					text, err := eng.TranscribeSamples(samples)
					if err != nil {
						log.Error("transcription failed", "err", err)
						return
					}
					elapsed := time.Since(start)

					if text == "" {
						log.Info("no speech detected", "took", elapsed.Round(time.Millisecond))
						return
					}
					log.Info("transcribed", "took", elapsed.Round(time.Millisecond), "text", text)

					if err := injector.Inject(text); err != nil {
						log.Error("text injection failed", "err", err)
						return
					}
					if _, err := store.Save(text, "", "", duration, elapsed.Seconds()); err != nil {
						log.Warn("saving history", "err", err)
					}
				}(samples, duration)
			}

		case sig := <-sigCh:
			log.Info("shutting down", "signal", sig)
			if recorder.IsRecording() {
				recorder.Stop()
			}
			recorder.Close()
			eng.Close()
			// Exit directly to avoid gohook's C cleanup crash.
			// The OS reclaims the event hook on process exit.
			os.Exit(0)
		}
	}
}

// loadConfig loads the config from the specified path, or falls back to
// the default config path, or uses built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}

	defaultPath := config.DefaultConfigPath()
	if _, err := os.Stat(defaultPath); err == nil {
		cfg, err := config.Load(defaultPath)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", defaultPath, err)
		}
		log.Info("config loaded", "path", defaultPath)
		return cfg, nil
	}

	log.Info("no config file found, using defaults")
	return config.Default(), nil
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}

func printProgress(p models.Progress) {
	if p.Percent >= 0 {
		fmt.Printf("\r  %s: %.1f MB / %.1f MB (%d%%)",
			p.Filename,
			float64(p.Downloaded)/(1024*1024),
			float64(p.Total)/(1024*1024),
			p.Percent)
	} else {
		fmt.Printf("\r  %s: %.1f MB downloaded", p.Filename, float64(p.Downloaded)/(1024*1024))
	}
	if p.Total > 0 && p.Downloaded >= p.Total {
		fmt.Println()
	}
}
