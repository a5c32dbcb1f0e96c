// Package workerreg maps names to live workers and forgets a name as soon as
// its worker terminates.
//
// A Registry is started under a process-wide identity. Reads never block:
//
//	w, ok := reg.Lookup("cart-42")
//
// Creating is serialized through the registry's coordinator, so concurrent
// callers asking for the same name all receive the same worker:
//
//	reg, err := workerreg.Start("carts")
//	if err != nil {
//	    return err
//	}
//	defer reg.Stop(context.Background())
//
//	w, err := reg.Create(ctx, "cart-42")
//	if err != nil {
//	    return err
//	}
//	_ = w.Put(ctx, "milk", 2)
//
// Workers come from a Supervisor (see package supervisor) that never restarts
// them. When a worker exits, normally or not, the registry removes its name;
// a later Create spawns a fresh worker with empty state.
//
// # Observability
//
// Logging uses slog and is always on. Metrics and tracing are opt-in via
// WithMetrics and WithTracing, and a journal of lifecycle transitions via
// WithJournal.
//
// # Configuration
//
// Settings can be loaded from YAML or JSON with config.Load and turned into
// options with OptionsFromSettings.
package workerreg
