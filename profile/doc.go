// Package profile provides optional runtime profiling backed by
// [github.com/pkg/profile].
//
// Profiling is compiled in only with the "pprof" build tag:
//
//	go build -tags pprof ./cmd/glue
//
// Without the tag, [Settings.Start] always returns a no-op [Stopper] and
// [Modes] is empty.
//
// # Modes
//
//   - allocs:    memory allocation profiling (all allocations)
//   - block:     blocking profiling
//   - clock:     wall-clock profiling
//   - cpu:       CPU profiling
//   - goroutine: goroutine profiling
//   - heap:      live heap profiling
//   - mem:       general memory profiling
//   - mutex:     mutex contention profiling
//   - thread:    thread creation profiling
//   - trace:     execution tracing
//
// Profiles are written to [Settings.Dir] with names matching the mode, for
// example cpu.pprof, and analyzed with go tool pprof:
//
//	go tool pprof -http=: ~/.cache/glue/pprof/cpu.pprof
//
// The pprof build also registers the [net/http/pprof] handlers on the
// default HTTP mux.
package profile
