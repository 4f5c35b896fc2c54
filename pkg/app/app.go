package app

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	metrics_util "github.com/taker-protocol/taker-client/pkg/metrics"
)

// Command is a unit of work driven by Run for the lifetime of the process.
//
// The context passed to Execute is cancelled when the process receives an
// interrupt, at which point the command has ShutdownGracePeriod to return.
type Command interface {
	// Init prepares the command in a blocking fashion. Configuration errors should
	// be surfaced here, before any network activity.
	//
	// metricsProvider is nil when metrics are not configured.
	Init(config BaseConfig, metricsProvider *newrelic.Application) error

	// Execute performs the command. Long running commands return when ctx is done.
	Execute(ctx context.Context) error
}

var (
	configPath = flag.String("config", "config.yaml", "configuration file path")

	osSigCh = make(chan os.Signal, 1)
)

func init() {
	signal.Notify(osSigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP)
}

// Run loads the base configuration, sets up logging and metrics, and executes cmd.
// The returned error has already been logged.
func Run(cmd Command, options ...Option) error {
	if !flag.Parsed() {
		flag.Parse()
	}

	opts := opts{
		signals: osSigCh,
		logOut:  os.Stderr,
	}
	for _, o := range options {
		o(&opts)
	}

	logger := logrus.StandardLogger().WithField("type", "app")
	logrus.SetOutput(opts.logOut)

	config, err := loadConfig(*configPath)
	if err != nil {
		logger.WithError(err).Error("failed to load config")
		return err
	}

	if len(config.AppName) == 0 {
		config.AppName = opts.appName
	}
	if len(config.AppName) == 0 {
		err := errors.New("must specify an application name")
		logger.Error(err.Error())
		return err
	}

	// todo: Better abstraction so we're not directly tied to NR
	var metricsProvider *newrelic.Application
	if len(config.NewRelicLicenseKey) > 0 {
		nr, err := newrelic.NewApplication(
			newrelic.ConfigFromEnvironment(),
			newrelic.ConfigAppName(config.AppName),
			newrelic.ConfigLicense(config.NewRelicLicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			logger.WithError(err).Error("error connecting to new relic")
			return err
		}

		metricsProvider = nr
		defer nr.Shutdown(5 * time.Second)
	}

	configureLogger(config, metricsProvider, opts.logOut)

	return execute(cmd, config, metricsProvider, opts.signals)
}

func execute(cmd Command, config BaseConfig, metricsProvider *newrelic.Application, signals <-chan os.Signal) error {
	logger := logrus.StandardLogger().WithFields(logrus.Fields{
		"type": "app",
		"app":  config.AppName,
	})

	if err := cmd.Init(config, metricsProvider); err != nil {
		logger.WithError(err).Error("failed to initialize command")
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = metrics_util.NewContext(ctx, metricsProvider)

	doneCh := make(chan error, 1)
	go func() {
		doneCh <- cmd.Execute(ctx)
	}()

	var err error
	select {
	case err = <-doneCh:
	case <-signals:
		logger.Info("interrupt received, shutting down")
		cancel()

		select {
		case err = <-doneCh:
			if errors.Is(err, context.Canceled) {
				err = nil
			}
		case <-time.After(config.ShutdownGracePeriod):
			err = errors.Errorf("failed to stop the command within %v", config.ShutdownGracePeriod)
		}
	}

	if err != nil {
		logger.WithError(err).Error("command failed")
	}
	return err
}

func loadConfig(path string) (BaseConfig, error) {
	// viper.ReadInConfig only returns ConfigFileNotFoundError if it has to search
	// for a default config file because one hasn't been explicitly set. That is,
	// if we explicitly set a config file, and it does not exist, viper will not
	// return a ConfigFileNotFoundError, so we do it ourselves.
	if _, err := os.Stat(path); err == nil {
		viper.SetConfigFile(path)
	} else if !os.IsNotExist(err) {
		return BaseConfig{}, errors.Wrap(err, "failed to check if config exists")
	}

	err := viper.ReadInConfig()
	_, isConfigNotFound := err.(viper.ConfigFileNotFoundError)
	if err != nil && !isConfigNotFound {
		return BaseConfig{}, err
	}

	config := defaultConfig
	if err := viper.Unmarshal(&config); err != nil {
		return BaseConfig{}, errors.Wrap(err, "failed to unmarshal config")
	}
	return config, nil
}

func configureLogger(config BaseConfig, metricsProvider *newrelic.Application, out io.Writer) {
	var formatter logrus.Formatter = &logrus.JSONFormatter{}
	if strings.EqualFold(config.LogFormat, "text") {
		formatter = &logrus.TextFormatter{FullTimestamp: true}
	}

	if metricsProvider != nil {
		logrus.SetFormatter(metrics_util.NewCustomNewRelicLogFormatter(metricsProvider, formatter))
	} else {
		logrus.SetFormatter(formatter)
	}

	level, err := logrus.ParseLevel(strings.ToLower(config.LogLevel))
	if err != nil {
		logrus.StandardLogger().WithField("log_level", config.LogLevel).Warn("unknown log level, ignoring")
	} else {
		logrus.SetLevel(level)
	}

	logrus.SetOutput(out)
}
