package diag

// DelayedKind classifies diagnostics that are buffered instead of emitted
// immediately. They become real diagnostics only when the enclosing
// declaration parses successfully; abandoned declarations discard them.
type DelayedKind uint8

const (
	DelayedDeprecation DelayedKind = iota
	DelayedUnavailable
	DelayedAccess
	DelayedForbiddenType
)

// Delayed is a buffered diagnostic plus bookkeeping.
type Delayed struct {
	Kind DelayedKind
	Diag Diagnostic
	// Triggered marks an entry superseded by a more specific check that
	// already fired; drained pools skip such entries.
	Triggered bool
}

// DelayedPool buffers delayed diagnostics for one nested declarator parse.
// Pools chain: a child pool is pushed per declarator, its parent is the pool
// of the enclosing declaration specifier. The DeclSpec flag marks the
// outermost pool of one declaration, where ancestor draining stops.
type DelayedPool struct {
	parent   *DelayedPool
	declSpec bool
	items    []Delayed
}

// NewDelayedPool creates a pool chained to parent (nil for a root pool).
// declSpec marks the pool opened for the declaration specifier itself.
func NewDelayedPool(parent *DelayedPool, declSpec bool) *DelayedPool {
	return &DelayedPool{parent: parent, declSpec: declSpec}
}

func (p *DelayedPool) Parent() *DelayedPool {
	if p == nil {
		return nil
	}
	return p.parent
}

// Add buffers a delayed diagnostic.
func (p *DelayedPool) Add(kind DelayedKind, d Diagnostic) {
	if p == nil {
		return
	}
	p.items = append(p.items, Delayed{Kind: kind, Diag: d})
}

func (p *DelayedPool) Len() int {
	if p == nil {
		return 0
	}
	return len(p.items)
}

// MarkTriggered suppresses every buffered entry matching the given kind and
// code. Used when attribute attachment performed a more specific check and
// already reported.
func (p *DelayedPool) MarkTriggered(kind DelayedKind, code Code) {
	for q := p; q != nil; q = q.parent {
		for i := range q.items {
			if q.items[i].Kind == kind && q.items[i].Diag.Code == code {
				q.items[i].Triggered = true
			}
		}
		if q.declSpec {
			return
		}
	}
}

// Drain emits every untriggered entry of this pool and of its ancestors up
// to and including the nearest decl-spec pool, clearing them. Called when
// the enclosing declaration commits.
func (p *DelayedPool) Drain(r Reporter) int {
	emitted := 0
	for q := p; q != nil; q = q.parent {
		for i := range q.items {
			if q.items[i].Triggered {
				continue
			}
			d := q.items[i].Diag
			if r != nil {
				r.Report(d.Code, d.Severity, d.Primary, d.Message, d.Notes, d.Fixes)
			}
			emitted++
		}
		q.items = q.items[:0]
		if q.declSpec {
			break
		}
	}
	return emitted
}

// Discard drops the buffered entries of this pool without emitting.
// Called when the declaration's parse is abandoned; delayed diagnostics must
// never leak for declarations that never came into being.
func (p *DelayedPool) Discard() {
	if p == nil {
		return
	}
	p.items = p.items[:0]
}
