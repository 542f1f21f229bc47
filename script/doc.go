// Package script provides an [engine.Evaluator] and an [engine.TaskHandler], which run the scripts of a BPMN process.
/*
Conditions of sequence flows, activation conditions of complex gateways and script tasks are evaluated according to
their script language. JavaScript is supported, using [github.com/dop251/goja]. Scripts of other languages result in
an error, which wraps [ErrUnsupportedLanguage].

Token variables are accessible as global string variables as well as via the object "variables":

	approved === "true" && variables.amount > 100

A script task can set variables by assigning global variables or properties of the object "variables". Changed and
new variables are merged into the token.

Create an Evaluator

	evaluator, err := script.NewEvaluator(func(o *script.Options) {
		o.Timeout = 100 * time.Millisecond
	})
	if err != nil {
		log.Fatalf("failed to create evaluator: %v", err)
	}

	e, err := mem.New(func(o *mem.Options) {
		o.Common.Evaluator = evaluator
		o.Common.TaskHandler = evaluator.TaskHandler()
	})
*/
package script
