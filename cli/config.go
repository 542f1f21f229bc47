package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/flastex/go-bpmn/engine"
	"github.com/flastex/go-bpmn/engine/mem"
	"github.com/flastex/go-bpmn/engine/pg"
	"github.com/flastex/go-bpmn/script"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const envPrefix = "GO_BPMN" // e.g. log-level -> GO_BPMN_LOG_LEVEL

const (
	keyConfig                = "config"
	keyDatabaseUrl           = "database-url"
	keyEngineId              = "engine-id"
	keyEvaluator             = "evaluator"
	keyFailOnEvaluationError = "fail-on-evaluation-error"
	keyForcedFlows           = "forced-flows"
	keyLogLevel              = "log-level"
	keyOutput                = "output"
	keyScheduling            = "scheduling"
	keyScriptTimeout         = "script-timeout"
)

const (
	evaluatorForced     = "forced"
	evaluatorJavaScript = "javascript"
	evaluatorNone       = "none"
)

const (
	outputJson  = "json"
	outputTable = "table"
	outputYaml  = "yaml"
)

// config is the configuration of a CLI command, layered from flags, environment variables and an optional config file.
type config struct {
	DatabaseUrl           string
	EngineId              string
	Evaluator             string
	FailOnEvaluationError bool
	ForcedFlows           []string
	LogLevel              zapcore.Level
	Output                string
	Scheduling            engine.Scheduling
	ScriptTimeout         time.Duration
}

func flagConfig(c *cobra.Command, v *viper.Viper) {
	scheduling := schedulingValue(engine.SchedulingLifo)

	c.PersistentFlags().String(keyConfig, "", "Path to a YAML, JSON or TOML config file")
	c.PersistentFlags().String(keyDatabaseUrl, "", "PostgreSQL database URL - if set, the execution history is recorded")
	c.PersistentFlags().String(keyEngineId, engine.DefaultEngineId, "Engine ID")
	c.PersistentFlags().String(keyEvaluator, evaluatorJavaScript, "Condition evaluator: none, javascript or forced")
	c.PersistentFlags().Bool(keyFailOnEvaluationError, false, "Terminate tokens, when a condition cannot be evaluated")
	c.PersistentFlags().StringSlice(keyForcedFlows, nil, "IDs of sequence flows or complex gateways, the forced evaluator evaluates to true")
	c.PersistentFlags().String(keyLogLevel, "warn", "Log level: debug, info, warn or error")
	c.PersistentFlags().StringP(keyOutput, "o", outputTable, "Output format: table, json or yaml")
	c.PersistentFlags().Var(&scheduling, keyScheduling, "Order, in which active tokens are processed: lifo or fifo")
	c.PersistentFlags().Duration(keyScriptTimeout, time.Second, "Time limit of a single script evaluation")

	c.MarkPersistentFlagFilename(keyConfig, "yaml", "yml", "json", "toml")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(c.PersistentFlags()); err != nil {
		panic(err) // only fails for a nil flag set
	}
}

// readConfig reads the config file, if specified.
func readConfig(v *viper.Viper) error {
	configFile := v.GetString(keyConfig)
	if configFile == "" {
		return nil
	}

	if _, err := os.Stat(configFile); err != nil {
		return fmt.Errorf("failed to read config file %s: %v", configFile, err)
	}

	v.SetConfigFile(configFile)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %v", configFile, err)
	}
	return nil
}

func loadConfig(v *viper.Viper) (config, error) {
	var c config

	c.DatabaseUrl = v.GetString(keyDatabaseUrl)
	c.EngineId = v.GetString(keyEngineId)
	c.FailOnEvaluationError = v.GetBool(keyFailOnEvaluationError)
	c.ForcedFlows = v.GetStringSlice(keyForcedFlows)
	c.ScriptTimeout = v.GetDuration(keyScriptTimeout)

	switch evaluator := strings.ToLower(v.GetString(keyEvaluator)); evaluator {
	case evaluatorForced, evaluatorJavaScript, evaluatorNone:
		c.Evaluator = evaluator
	default:
		return config{}, fmt.Errorf("invalid evaluator %s: must be one of [%s, %s, %s]", evaluator, evaluatorForced, evaluatorJavaScript, evaluatorNone)
	}

	logLevel, err := zapcore.ParseLevel(v.GetString(keyLogLevel))
	if err != nil {
		return config{}, fmt.Errorf("invalid log level: %v", err)
	}
	c.LogLevel = logLevel

	switch output := strings.ToLower(v.GetString(keyOutput)); output {
	case outputJson, outputTable, outputYaml:
		c.Output = output
	default:
		return config{}, fmt.Errorf("invalid output %s: must be one of [%s, %s, %s]", output, outputJson, outputTable, outputYaml)
	}

	var scheduling schedulingValue
	if err := scheduling.Set(v.GetString(keyScheduling)); err != nil {
		return config{}, err
	}
	c.Scheduling = engine.Scheduling(scheduling)

	if c.Evaluator == evaluatorForced && len(c.ForcedFlows) == 0 {
		return config{}, errors.New("forced evaluator requires at least one forced flow")
	}

	return c, nil
}

// newLogger creates a console logger, writing to stderr.
func newLogger(level zapcore.Level) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(os.Stderr),
		level,
	)

	return zap.New(core, zap.AddCaller()).Named(program)
}

// newEngine creates a mem engine and, if a database URL is configured, a pg recorder.
// The returned function shuts both down.
func newEngine(c config, logger *zap.Logger) (engine.Engine, func(), error) {
	var recorder *pg.Recorder
	if c.DatabaseUrl != "" {
		r, err := pg.New(c.DatabaseUrl, func(o *pg.Options) {
			o.EngineId = c.EngineId
			o.Logger = logger.Named("pg")
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create recorder: %v", err)
		}
		recorder = r
	}

	var (
		evaluator   engine.Evaluator
		taskHandler engine.TaskHandler
	)

	switch c.Evaluator {
	case evaluatorForced:
		evaluator = engine.ForcedEvaluator(c.ForcedFlows...)
	case evaluatorJavaScript:
		scriptEvaluator, err := script.NewEvaluator(func(o *script.Options) {
			o.JavaScriptFallback = true
			o.Logger = logger.Named("script")
			o.Timeout = c.ScriptTimeout
		})
		if err != nil {
			if recorder != nil {
				recorder.Close()
			}
			return nil, nil, fmt.Errorf("failed to create evaluator: %v", err)
		}
		evaluator = scriptEvaluator
		taskHandler = scriptEvaluator.TaskHandler()
	}

	e, err := mem.New(func(o *mem.Options) {
		o.Common.EngineId = c.EngineId
		o.Common.Evaluator = evaluator
		o.Common.FailOnEvaluationError = c.FailOnEvaluationError
		o.Common.Logger = logger.Named("engine")
		o.Common.Scheduling = c.Scheduling
		o.Common.TaskHandler = taskHandler

		if recorder != nil {
			o.Common.Recorder = recorder
			o.Common.OnRecordFailure = func(events []engine.Event, err error) {
				logger.Error("failed to record events", zap.Int("events", len(events)), zap.Error(err))
			}
		}
	})
	if err != nil {
		if recorder != nil {
			recorder.Close()
		}
		return nil, nil, fmt.Errorf("failed to create engine: %v", err)
	}

	shutdown := func() {
		e.Shutdown()
		if recorder != nil {
			recorder.Close()
		}
	}

	return e, shutdown, nil
}
