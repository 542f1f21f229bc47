package script

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/flastex/go-bpmn/engine"
	"github.com/flastex/go-bpmn/model"
	"go.uber.org/zap"
)

// ErrUnsupportedLanguage indicates that no evaluator is registered for the language of a script.
var ErrUnsupportedLanguage = errors.New("unsupported script language")

func NewEvaluator(customizers ...func(*Options)) (*Evaluator, error) {
	options := NewOptions()
	for _, customizer := range customizers {
		customizer(&options)
	}

	if err := options.Validate(); err != nil {
		return nil, err
	}

	javaScript := newJavaScriptEvaluator(options)

	return &Evaluator{
		options: options,
		languages: map[model.ScriptLanguage]languageEvaluator{
			model.ScriptJavaScript: javaScript,
		},
	}, nil
}

func NewOptions() Options {
	return Options{
		CacheExpiration:      time.Hour,
		CacheCleanupInterval: 10 * time.Minute,
		Logger:               zap.NewNop(),
		Timeout:              time.Second,
	}
}

type Options struct {
	CacheExpiration      time.Duration // Time, a compiled program is cached after its last use.
	CacheCleanupInterval time.Duration // Interval, in which expired programs are removed from the cache.
	Logger               *zap.Logger
	Timeout              time.Duration // Time limit of a single script evaluation.

	// If true, scripts of a language without evaluator (e.g. the BPMN default XPath) are evaluated as JavaScript.
	JavaScriptFallback bool
}

func (o Options) Validate() error {
	if o.CacheExpiration <= 0 {
		return errors.New("cache expiration must be greater than 0")
	}
	if o.CacheCleanupInterval <= 0 {
		return errors.New("cache cleanup interval must be greater than 0")
	}
	if o.Logger == nil {
		return errors.New("logger is nil")
	}
	if o.Timeout <= 0 {
		return errors.New("timeout must be greater than 0")
	}
	return nil
}

// languageEvaluator runs the scripts of a specific language.
type languageEvaluator interface {
	// evaluate evaluates an expression to a boolean.
	evaluate(ctx context.Context, source string, variables map[string]string) (bool, error)
	// execute executes a program and returns the changed or new variables.
	execute(ctx context.Context, source string, variables map[string]string) (map[string]string, error)
}

// Evaluator evaluates conditions, dispatching on the script language.
type Evaluator struct {
	options   Options
	languages map[model.ScriptLanguage]languageEvaluator
}

func (e *Evaluator) Evaluate(ctx context.Context, condition engine.Condition) (bool, error) {
	language, err := e.language(condition.Script.Language)
	if err != nil {
		return false, err
	}

	result, err := language.evaluate(ctx, condition.Script.Source, condition.Variables)
	if err != nil {
		return false, err
	}

	e.options.Logger.Debug("condition evaluated",
		zap.String("element", condition.ElementId),
		zap.Stringer("language", condition.Script.Language),
		zap.Bool("result", result),
	)

	return result, nil
}

// TaskHandler returns a task handler, which executes script tasks. Service tasks are completed without any action.
func (e *Evaluator) TaskHandler() engine.TaskHandler {
	return engine.TaskHandlerFunc(e.executeTask)
}

func (e *Evaluator) executeTask(ctx context.Context, task engine.Task) (map[string]string, error) {
	if task.Script == nil {
		return nil, nil
	}

	language, err := e.language(task.Script.Language)
	if err != nil {
		return nil, err
	}

	variables, err := language.execute(ctx, task.Script.Source, task.Variables)
	if err != nil {
		return nil, err
	}

	e.options.Logger.Debug("script task executed",
		zap.String("element", task.BpmnElementId),
		zap.String("token", task.TokenId),
		zap.Int("variables", len(variables)),
	)

	return variables, nil
}

func (e *Evaluator) language(scriptLanguage model.ScriptLanguage) (languageEvaluator, error) {
	if language, ok := e.languages[scriptLanguage]; ok {
		return language, nil
	}
	if e.options.JavaScriptFallback {
		return e.languages[model.ScriptJavaScript], nil
	}
	return nil, fmt.Errorf("%w %s", ErrUnsupportedLanguage, scriptLanguage)
}
