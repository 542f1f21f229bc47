package script

import (
	"context"
	"fmt"
	"time"

	"github.com/dop251/goja"
	"github.com/patrickmn/go-cache"
)

const variablesObject = "variables"

func newJavaScriptEvaluator(options Options) *javaScriptEvaluator {
	return &javaScriptEvaluator{
		programs: cache.New(options.CacheExpiration, options.CacheCleanupInterval),
		timeout:  options.Timeout,
	}
}

// javaScriptEvaluator runs JavaScript, using a new runtime per script, since a [goja.Runtime] is not goroutine-safe.
// Compiled programs are cached by source.
type javaScriptEvaluator struct {
	programs *cache.Cache
	timeout  time.Duration
}

func (e *javaScriptEvaluator) evaluate(ctx context.Context, source string, variables map[string]string) (bool, error) {
	vm, err := e.newRuntime(variables)
	if err != nil {
		return false, err
	}

	result, err := e.run(ctx, vm, source)
	if err != nil {
		return false, err
	}

	return result.ToBoolean(), nil
}

func (e *javaScriptEvaluator) execute(ctx context.Context, source string, variables map[string]string) (map[string]string, error) {
	vm, err := e.newRuntime(variables)
	if err != nil {
		return nil, err
	}

	if _, err := e.run(ctx, vm, source); err != nil {
		return nil, err
	}

	changed := make(map[string]string)

	collect := func(object *goja.Object, name string) {
		value := object.Get(name)
		if value == nil || goja.IsUndefined(value) || goja.IsNull(value) {
			return
		}
		if _, ok := goja.AssertFunction(value); ok {
			return
		}

		s := value.String()
		if old, ok := variables[name]; !ok || old != s {
			changed[name] = s
		}
	}

	global := vm.GlobalObject()
	for _, name := range global.Keys() {
		if name != variablesObject {
			collect(global, name)
		}
	}

	// properties of "variables" take precedence over global variables
	if object := global.Get(variablesObject); object != nil {
		if variablesObj, ok := object.(*goja.Object); ok {
			for _, name := range variablesObj.Keys() {
				collect(variablesObj, name)
			}
		}
	}

	return changed, nil
}

func (e *javaScriptEvaluator) compile(source string) (*goja.Program, error) {
	if program, ok := e.programs.Get(source); ok {
		return program.(*goja.Program), nil
	}

	program, err := goja.Compile("", source, false)
	if err != nil {
		return nil, fmt.Errorf("failed to compile JavaScript: %v", err)
	}

	e.programs.SetDefault(source, program)
	return program, nil
}

func (e *javaScriptEvaluator) newRuntime(variables map[string]string) (*goja.Runtime, error) {
	vm := goja.New()

	variablesObj := vm.NewObject()
	for name, value := range variables {
		if err := vm.Set(name, value); err != nil {
			return nil, fmt.Errorf("failed to set variable %s: %v", name, err)
		}
		if err := variablesObj.Set(name, value); err != nil {
			return nil, fmt.Errorf("failed to set variable %s: %v", name, err)
		}
	}

	if err := vm.Set(variablesObject, variablesObj); err != nil {
		return nil, fmt.Errorf("failed to set variables object: %v", err)
	}

	return vm, nil
}

// run runs a program. The runtime is interrupted, when the context is done or the timeout is exceeded.
func (e *javaScriptEvaluator) run(ctx context.Context, vm *goja.Runtime, source string) (goja.Value, error) {
	program, err := e.compile(source)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	timer := time.AfterFunc(e.timeout, func() {
		vm.Interrupt(fmt.Sprintf("timeout of %s exceeded", e.timeout))
	})
	defer timer.Stop()

	stop := context.AfterFunc(ctx, func() {
		vm.Interrupt(ctx.Err())
	})
	defer stop()

	result, err := vm.RunProgram(program)
	if err != nil {
		return nil, fmt.Errorf("failed to run JavaScript: %v", err)
	}

	return result, nil
}
