// Package monitor runs the background poll loop that finds the windows of
// freshly launched startup programs and hides or closes them according to
// the user's policy.
//
// Each item is acted upon at most once per session. The loop stops by
// itself when nothing is left to do and, when the host was launched at logon
// with auto-exit enabled, terminates the host once its work is complete.
package monitor

import (
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/Guliveer/umstartup/internal/models"
	"github.com/Guliveer/umstartup/internal/platform"
)

// DefaultInterval is the poll cadence.
const DefaultInterval = time.Second

// Policy is the slice of the settings store the monitor depends on.
type Policy interface {
	Get() models.AppSettings
	WasMinimizedThisSession(processName string) bool
	MarkAsMinimized(processName string)
	RecordMinimizeTime(itemID string)
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithClock sets the clock driving the poll ticker and delay deadlines.
func WithClock(c clockwork.Clock) Option {
	return func(m *Monitor) { m.clock = c }
}

// WithInterval sets the poll cadence.
func WithInterval(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithExit replaces the function that terminates the host process.
func WithExit(fn func()) Option {
	return func(m *Monitor) { m.exit = fn }
}

type delayedTask struct {
	itemID   string
	deadline time.Time
}

// target is one active item resolved to its effective process name.
type target struct {
	process string
	itemID  string
	delay   uint32
}

// Monitor matches live windows against the registered startup items.
type Monitor struct {
	policy   Policy
	windows  platform.WindowSystem
	clock    clockwork.Clock
	interval time.Duration
	exit     func()
	logger   *zap.Logger

	running   atomic.Bool
	autostart atomic.Bool

	// mu guards the maps and the loop bookkeeping. It is never held while
	// querying windows or calling into the policy store.
	mu         sync.Mutex
	generation uint64
	done       chan struct{}
	items      map[string]string
	delayed    map[string]delayedTask
}

// New creates a stopped Monitor.
func New(policy Policy, windows platform.WindowSystem, logger *zap.Logger, opts ...Option) *Monitor {
	m := &Monitor{
		policy:   policy,
		windows:  windows,
		clock:    clockwork.NewRealClock(),
		interval: DefaultInterval,
		exit:     func() { os.Exit(0) },
		logger:   logger.Named("monitor"),
		items:    make(map[string]string),
		delayed:  make(map[string]delayedTask),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DefaultProcessName derives the process name expected for an executable:
// its base file name without extension, lower-cased. Both path separators
// are accepted.
func DefaultProcessName(exePath string) string {
	base := exePath
	if i := strings.LastIndexAny(base, `\/`); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return strings.ToLower(strings.TrimSpace(base))
}

// Register adds or replaces the default process name for an item.
func (m *Monitor) Register(itemID, exePath string) {
	name := DefaultProcessName(exePath)
	if name == "" {
		return
	}
	m.mu.Lock()
	m.items[itemID] = name
	m.mu.Unlock()
}

// Unregister removes an item from the monitored set.
func (m *Monitor) Unregister(itemID string) {
	m.mu.Lock()
	delete(m.items, itemID)
	m.mu.Unlock()
}

// Start launches the poll loop. It returns false when a loop is already
// running. autostart records whether the host was launched at logon.
func (m *Monitor) Start(autostart bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running.Swap(true) {
		return false
	}
	m.autostart.Store(autostart)
	m.generation++
	m.done = make(chan struct{})
	m.delayed = make(map[string]delayedTask)

	log := m.logger.With(zap.String("run_id", uuid.NewString()))
	log.Info("Monitor started",
		zap.Bool("autostart", autostart),
		zap.Duration("interval", m.interval))
	go m.run(m.generation, m.done, log)
	return true
}

// Stop clears the running flag. The loop exits at the top of its next
// iteration; pending delayed tasks are abandoned.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running.Swap(false) {
		m.delayed = make(map[string]delayedTask)
		m.logger.Info("Monitor stop requested")
	}
}

// Done returns a channel closed when the most recently started loop exits.
func (m *Monitor) Done() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return m.done
}

// Status reports whether the loop is running and how many registered items
// are currently opted in.
func (m *Monitor) Status() (bool, int) {
	settings := m.policy.Get()
	m.mu.Lock()
	defer m.mu.Unlock()

	active := 0
	for id := range m.items {
		if settings.AutoMinimizeItems.Has(id) {
			active++
		}
	}
	return m.running.Load(), active
}

func (m *Monitor) run(gen uint64, done chan struct{}, log *zap.Logger) {
	defer close(done)

	ticker := m.clock.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		if !m.current(gen) {
			log.Info("Monitor stopped")
			return
		}
		if m.tick(log) {
			m.finish(gen)
			log.Info("Monitor finished, nothing left to do")
			return
		}
		<-ticker.Chan()
	}
}

// current reports whether the loop of generation gen should keep going.
func (m *Monitor) current(gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running.Load() && m.generation == gen
}

// finish clears the running flag unless a newer loop has taken over.
func (m *Monitor) finish(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generation == gen {
		m.running.Store(false)
		m.delayed = make(map[string]delayedTask)
	}
}

// tick runs one poll iteration and reports whether the loop should stop.
func (m *Monitor) tick(log *zap.Logger) bool {
	now := m.clock.Now()
	settings := m.policy.Get()
	acted := 0

	if due := m.takeDue(now, settings); len(due) > 0 {
		acted += m.execute(due, settings, log)
	}

	var immediate []target
	for _, t := range m.pendingCandidates(settings) {
		if t.delay == 0 {
			immediate = append(immediate, t)
			continue
		}
		if m.schedule(t, now) {
			log.Debug("Action scheduled",
				zap.String("process", t.process),
				zap.String("item_id", t.itemID),
				zap.Uint32("delay_seconds", t.delay))
		}
	}
	if len(immediate) > 0 {
		acted += m.execute(immediate, settings, log)
	}

	settings = m.policy.Get()
	remaining := 0
	for _, t := range m.activeTargets(settings) {
		if !m.policy.WasMinimizedThisSession(t.process) {
			remaining++
		}
	}
	pending := m.pendingCount()
	if remaining > 0 || pending > 0 {
		return false
	}

	if acted > 0 && settings.AutoExitAfterMinimize && m.autostart.Load() {
		log.Info("All startup windows handled, exiting")
		m.exit()
	}
	return true
}

// activeTargets resolves the registered, opted-in items to their effective
// process names. Items sharing a process name collapse onto the one with the
// lowest id.
func (m *Monitor) activeTargets(settings models.AppSettings) []target {
	m.mu.Lock()
	ids := make([]string, 0, len(m.items))
	for id := range m.items {
		if settings.AutoMinimizeItems.Has(id) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	targets := make([]target, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		name := m.items[id]
		if override, ok := settings.ProcessNameMappings[id]; ok && override != "" {
			name = override
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		targets = append(targets, target{process: name, itemID: id, delay: settings.DelayFor(id)})
	}
	m.mu.Unlock()
	return targets
}

// pendingCandidates is the active set minus processes already handled this
// session or already waiting on a delayed task.
func (m *Monitor) pendingCandidates(settings models.AppSettings) []target {
	var out []target
	for _, t := range m.activeTargets(settings) {
		if m.policy.WasMinimizedThisSession(t.process) {
			continue
		}
		m.mu.Lock()
		_, waiting := m.delayed[t.process]
		m.mu.Unlock()
		if waiting {
			continue
		}
		out = append(out, t)
	}
	return out
}

// schedule inserts a delayed task unless one is already pending for the
// process.
func (m *Monitor) schedule(t target, now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.delayed[t.process]; ok {
		return false
	}
	m.delayed[t.process] = delayedTask{
		itemID:   t.itemID,
		deadline: now.Add(time.Duration(t.delay) * time.Second),
	}
	return true
}

// takeDue removes and returns the delayed tasks whose deadline has passed.
// Tasks whose item was unregistered or opted out meanwhile are dropped.
func (m *Monitor) takeDue(now time.Time, settings models.AppSettings) []target {
	m.mu.Lock()
	defer m.mu.Unlock()

	var due []target
	for process, task := range m.delayed {
		if now.Before(task.deadline) {
			continue
		}
		delete(m.delayed, process)
		if _, registered := m.items[task.itemID]; !registered || !settings.AutoMinimizeItems.Has(task.itemID) {
			continue
		}
		due = append(due, target{process: process, itemID: task.itemID})
	}
	sort.Slice(due, func(i, j int) bool { return due[i].process < due[j].process })
	return due
}

func (m *Monitor) pendingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.delayed)
}

// execute applies the configured behavior to the first visible window of
// each target process and returns how many processes were acted upon.
func (m *Monitor) execute(targets []target, settings models.AppSettings, log *zap.Logger) int {
	wanted := make(map[string]target, len(targets))
	for _, t := range targets {
		wanted[t.process] = t
	}

	windows, err := m.windows.VisibleWindows()
	if err != nil {
		log.Warn("Failed to enumerate windows", zap.Error(err))
		return 0
	}

	handled := make(map[string]bool, len(targets))
	for _, w := range windows {
		name, err := m.windows.ProcessName(w.PID)
		if err != nil {
			log.Debug("Process name unavailable", zap.Uint32("pid", w.PID), zap.Error(err))
			continue
		}
		name = platform.NormalizeProcessName(name)
		t, ok := wanted[name]
		if !ok || handled[name] {
			continue
		}

		behavior := settings.BehaviorFor(t.itemID)
		if behavior == models.BehaviorClose {
			err = m.windows.RequestClose(w.Handle)
		} else {
			err = m.windows.Hide(w.Handle)
		}
		if err != nil {
			log.Warn("Window action failed",
				zap.String("process", name),
				zap.String("behavior", string(behavior)),
				zap.Error(err))
			continue
		}

		handled[name] = true
		m.policy.MarkAsMinimized(name)
		m.policy.RecordMinimizeTime(t.itemID)
		m.Unregister(t.itemID)
		log.Info("Startup window handled",
			zap.String("process", name),
			zap.String("item_id", t.itemID),
			zap.String("behavior", string(behavior)),
			zap.Uint32("pid", w.PID))
	}
	return len(handled)
}
