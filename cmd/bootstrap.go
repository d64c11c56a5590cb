package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"firestige.xyz/meshlisten/internal/config"
	"firestige.xyz/meshlisten/internal/log"
	"firestige.xyz/meshlisten/internal/pipeline"
	"firestige.xyz/meshlisten/internal/sink/console"
	"firestige.xyz/meshlisten/internal/sink/pcap"
	"firestige.xyz/meshlisten/internal/source"
)

// bootstrap loads the configuration, initializes logging and applies the
// optional positional device argument.
func bootstrap(args []string) (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if err := log.Init(cfg.Log); err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}
	if len(args) > 0 {
		cfg.Serial.Device = args[0]
	}
	return cfg, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// openSerial opens cfg.Device, or the first port matching cfg.Glob.
func openSerial(cfg config.SerialConfig) (*source.Serial, error) {
	device := cfg.Device
	if device == "" {
		var err error
		if device, err = source.FindDevice(cfg.Glob); err != nil {
			return nil, err
		}
	}
	return source.OpenSerial(source.SerialConfig{
		Device:      device,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
		DTR:         cfg.DTR,
	})
}

// buildSinks creates the console sink on out plus the pcap recorder when
// configured. The returned close func releases the recorder.
func buildSinks(cfg config.OutputConfig, out io.Writer) ([]pipeline.Sink, func() error, error) {
	noop := func() error { return nil }

	con, err := console.NewSink(out, cfg.Format)
	if err != nil {
		return nil, noop, err
	}
	sinks := []pipeline.Sink{con}
	if cfg.PCAP == "" {
		return sinks, noop, nil
	}

	rec, err := pcap.NewSink(cfg.PCAP)
	if err != nil {
		return nil, noop, err
	}
	log.GetLogger().WithField("path", cfg.PCAP).Info("recording captures")
	return append(sinks, rec), rec.Close, nil
}

// banner prints operator messages. In yaml mode stdout carries only
// documents, so they go to the log instead.
func banner(out io.Writer, format string, msg string) {
	if format == config.FormatYAML {
		log.GetLogger().Info(msg)
		return
	}
	fmt.Fprintln(out, msg)
}

// decodeStream runs the decode pipeline over src until it ends or ctx is
// done, then logs the counters to logger.
func decodeStream(ctx context.Context, src source.LineSource, cfg config.OutputConfig, out io.Writer, logger log.Logger) error {
	sinks, closeSinks, err := buildSinks(cfg, out)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeSinks(); err != nil {
			logger.WithError(err).Error("failed to close sinks")
		}
	}()

	p := pipeline.NewBuilder().
		WithSource(src).
		WithSinks(sinks...).
		WithLogger(logger).
		Build()

	err = p.Run(ctx)
	logger.WithFields(p.Stats().Fields()).Info("pipeline stopped")
	return err
}
