// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of bgptable

package bgptable

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cilium/hive/cell"
	"github.com/cilium/hive/job"
	"github.com/cilium/stream"
	"golang.org/x/time/rate"
)

// Cell provides a *Registry for creating and tracking route tables.
// On stop it verifies that every registered table has been released and
// then tears down the process-wide node arena, which is only safe at
// that point.
var Cell = cell.Module(
	"bgptable",
	"Reference-counted BGP prefix tables",

	cell.Provide(newRegistry),
	cell.ProvidePrivate(func(r job.Registry, h cell.Health, lc cell.Lifecycle) job.Group {
		return r.NewGroup(h, lc)
	}),
)

type registryParams struct {
	cell.In

	Logger    *slog.Logger
	Lifecycle cell.Lifecycle
	Jobs      job.Group
	Metrics   Metrics `optional:"true"`
}

func newRegistry(p registryParams) *Registry {
	r := NewRegistry(p.Logger, p.Metrics)
	p.Jobs.Add(job.OneShot("table-metrics", r.metricsLoop))
	p.Lifecycle.Append(cell.Hook{
		OnStop: func(cell.HookContext) error {
			return r.Stop()
		},
	})
	return r
}

// EventKind tells what happened to a registered table.
type EventKind string

const (
	EventTableCreated  EventKind = "created"
	EventTableReleased EventKind = "released"
)

// Event describes a lifecycle change of a registered table.
type Event struct {
	Kind  EventKind
	Table string
}

// Registry creates named tables and tracks them until their last hold
// is released. It is the embedding application's handle for the arena
// teardown contract.
type Registry struct {
	log     *slog.Logger
	metrics Metrics

	mu     sync.Mutex
	tables map[string]*Table

	events   stream.Observable[Event]
	emit     func(Event)
	complete func(error)
}

// ErrDuplicateTable is returned when a table name is already in use.
var ErrDuplicateTable = errors.New("table name already registered")

func NewRegistry(log *slog.Logger, metrics Metrics) *Registry {
	if metrics == nil {
		metrics = NewExpVarMetrics(false)
	}
	r := &Registry{
		log:     log,
		metrics: metrics,
		tables:  map[string]*Table{},
	}
	r.events, r.emit, r.complete = stream.Multicast[Event]()
	return r
}

// NewTable creates a named table. The caller owns the returned hold;
// the registry only observes the table's lifetime.
func (r *Registry) NewTable(name string, afi AFI, safi SAFI) (*Table, error) {
	r.mu.Lock()
	if _, ok := r.tables[name]; ok {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %q", ErrDuplicateTable, name)
	}
	t := New(afi, safi)
	t.name = name
	t.onFree = r.tableFreed
	r.tables[name] = t
	r.mu.Unlock()

	r.emit(Event{Kind: EventTableCreated, Table: name})
	return t, nil
}

func (r *Registry) tableFreed(t *Table) {
	r.mu.Lock()
	delete(r.tables, t.name)
	r.mu.Unlock()
	r.emit(Event{Kind: EventTableReleased, Table: t.name})
}

// Events returns the stream of table lifecycle events. The stream
// completes when the registry stops.
func (r *Registry) Events() stream.Observable[Event] {
	return r.events
}

// UpdateMetrics refreshes the table, node and arena gauges.
func (r *Registry) UpdateMetrics() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metrics.TableCount(len(r.tables))
	for name, t := range r.tables {
		r.metrics.NodeCount(name, t.Len())
	}
	r.metrics.ArenaBlockCount(ArenaBlocks())
	r.metrics.PruneCount(int(PruneCount()))
}

// Stop completes the event stream and discards the node arena. Every
// registered table must have been released by now; a surviving table
// means some caller still holds into storage we are about to discard.
func (r *Registry) Stop() error {
	r.mu.Lock()
	remaining := len(r.tables)
	r.mu.Unlock()
	if remaining != 0 {
		panic("BUG: registry stopped with tables still held")
	}
	r.complete(nil)
	ReleaseAll()
	return nil
}

// metricsLoop refreshes the gauges whenever a table comes or goes,
// rate-limited so bursts of short-lived tables do not thrash expvar.
func (r *Registry) metricsLoop(ctx context.Context, health cell.Health) error {
	limiter := rate.NewLimiter(10.0, 1)
	events := stream.ToChannel(ctx, r.events)
	r.UpdateMetrics()
	health.OK("watching table events")
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := limiter.Wait(ctx); err != nil {
				return nil
			}
			r.log.Debug("table event", "kind", ev.Kind, "table", ev.Table)
			r.UpdateMetrics()
		}
	}
}
