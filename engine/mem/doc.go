// Package mem implements an in-memory process engine.
/*
mem provides a full implementation of the [engine.Engine] interface. All commands are serialized: a command, which
mutates a process instance, holds a write lock, while queries share a read lock.

Create an Engine

	e, err := mem.New(func(o *mem.Options) {
		o.Common.EngineId = "my-mem-engine"
		o.Common.Evaluator = engine.ForcedEvaluator("approved")
	})
	if err != nil {
		log.Fatalf("failed to create mem engine: %v", err)
	}

	defer e.Shutdown()

Since the engine state is not persisted, all processes and process instances are lost on shutdown. Execution events
can be persisted by configuring a [engine.Recorder] (see package pg).
*/
package mem
