// Package importer implements the simulated spreadsheet import: it inspects
// a user-selected file, decides a synthetic row count from its content or
// size, and fabricates that many pending transactions, reporting coarse
// progress along the way. No spreadsheet structure is ever parsed.
package importer

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"vexpenses/internal/core"
	"vexpenses/internal/store"
)

const (
	// Row-count policy constants. Fixed: changing them changes how many rows
	// a given file yields, and audits of old batches assume stable counts.
	bytesPerRow      = 400
	minSyntheticRows = 5
	maxRows          = 500

	// dateJitterMs bounds how far into the past a generated expense date may
	// fall (roughly the last 11.5 days).
	dateJitterMs = 1_000_000_000

	progressReading  = 10
	progressCounted  = 50
	progressAppended = 100
)

var (
	ErrBusy            = errors.New("an import is already in progress")
	ErrNoCollaborators = errors.New("no collaborators to attribute imported rows to")
)

// File is the boundary the pipeline consumes: a name, a byte size, and the
// decoded text content. Text may fail for undecodable inputs.
type File interface {
	Name() string
	Size() int64
	Text() (string, error)
}

// Options tune the pipeline. The clock and random source are injectable so
// generated batches are reproducible under test.
type Options struct {
	Clock        func() time.Time
	Rand         *rand.Rand
	InspectDelay time.Duration // between the row count and generation
	SettleDelay  time.Duration // after the append, before the reset
}

// Lists are the reference option lists rows are drawn from. The first entry
// of CostCenters and Units is a sentinel and is never picked.
type Lists struct {
	CostCenters    []string
	Units          []string
	Categories     []string
	PaymentMethods []string
}

type Pipeline struct {
	store *store.Store
	lists Lists

	clock        func() time.Time
	inspectDelay time.Duration
	settleDelay  time.Duration

	mu       sync.Mutex
	rng      *rand.Rand
	active   bool
	progress int
}

func New(st *store.Store, lists Lists, opts Options) *Pipeline {
	p := &Pipeline{
		store:        st,
		lists:        lists,
		clock:        opts.Clock,
		rng:          opts.Rand,
		inspectDelay: opts.InspectDelay,
		settleDelay:  opts.SettleDelay,
	}
	if p.clock == nil {
		p.clock = time.Now
	}
	if p.rng == nil {
		p.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if p.inspectDelay == 0 {
		p.inspectDelay = time.Second
	}
	if p.settleDelay == 0 {
		p.settleDelay = 500 * time.Millisecond
	}
	return p
}

// Progress returns the current progress mark: 0 when idle, then 10, 50 and
// 100 as the import advances. Advisory only.
func (p *Pipeline) Progress() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.progress
}

// Active reports whether an import is in flight.
func (p *Pipeline) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// Run executes one import and returns the number of appended rows. Only one
// import may be in flight: concurrent calls fail with ErrBusy. On any
// failure the pipeline resets to idle and the store is left untouched; the
// generated batch becomes visible in a single atomic append or not at all.
func (p *Pipeline) Run(ctx context.Context, f File) (int, error) {
	if err := p.begin(); err != nil {
		return 0, err
	}

	content, err := f.Text()
	if err != nil {
		p.reset()
		return 0, fmt.Errorf("decode %s: %w", f.Name(), err)
	}

	rows := rowCount(f.Name(), content, f.Size())
	p.setProgress(progressCounted)

	if err := p.wait(ctx, p.inspectDelay); err != nil {
		p.reset()
		return 0, err
	}

	batch, err := p.generate(rows, f.Name())
	if err != nil {
		p.reset()
		return 0, err
	}
	if err := p.store.AppendImportedBatch(batch); err != nil {
		p.reset()
		return 0, fmt.Errorf("append imported batch: %w", err)
	}
	p.setProgress(progressAppended)

	// Settle delay keeps the 100% mark observable before the reset. Context
	// expiry here must not undo the append, so the wait error is ignored.
	_ = p.wait(ctx, p.settleDelay)
	p.reset()
	return len(batch), nil
}

// rowCount applies the synthetic row-count policy: CSV files with at least
// one newline contribute their non-empty line count minus a header line, all
// other files scale with byte size, and everything is capped.
func rowCount(name, content string, size int64) int {
	rows := 0
	isCSV := strings.HasSuffix(strings.ToLower(name), ".csv")
	if isCSV && strings.Contains(content, "\n") {
		for _, line := range strings.Split(content, "\n") {
			if strings.TrimSpace(line) != "" {
				rows++
			}
		}
		rows--
	} else {
		rows = int(size / bytesPerRow)
		if rows < minSyntheticRows {
			rows = minSyntheticRows
		}
	}
	if rows > maxRows {
		rows = maxRows
	}
	if rows < 0 {
		rows = 0
	}
	return rows
}

func (p *Pipeline) generate(rows int, sourceFile string) ([]core.Transaction, error) {
	collabs := p.store.Collaborators()
	if len(collabs) == 0 {
		return nil, ErrNoCollaborators
	}
	ids := p.store.ReserveImportIDs(rows)
	now := p.clock()
	importDate := now.Format(core.DateLayout)

	p.mu.Lock()
	defer p.mu.Unlock()
	batch := make([]core.Transaction, 0, rows)
	for i := 0; i < rows; i++ {
		date := now.Add(-time.Duration(p.rng.Int63n(dateJitterMs)) * time.Millisecond)
		value := decimal.NewFromFloat(50 + p.rng.Float64()*2500).Round(2)
		batch = append(batch, core.Transaction{
			ID:            ids[i],
			Date:          date.Format(core.DateLayout),
			ImportDate:    importDate,
			SourceFile:    sourceFile,
			Collaborator:  collabs[p.rng.Intn(len(collabs))],
			CostCenter:    pickNonSentinel(p.rng, p.lists.CostCenters),
			Category:      pick(p.rng, p.lists.Categories),
			Value:         value,
			Status:        core.StatusPending,
			PaymentMethod: pick(p.rng, p.lists.PaymentMethods),
			Unit:          pickNonSentinel(p.rng, p.lists.Units),
			SLA:           core.SLA{Text: "Importado Full", State: core.SLAToday},
		})
	}
	return batch, nil
}

func pick(rng *rand.Rand, options []string) string {
	return options[rng.Intn(len(options))]
}

func pickNonSentinel(rng *rand.Rand, options []string) string {
	return options[1+rng.Intn(len(options)-1)]
}

func (p *Pipeline) begin() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active {
		return ErrBusy
	}
	p.active = true
	p.progress = progressReading
	return nil
}

func (p *Pipeline) setProgress(v int) {
	p.mu.Lock()
	p.progress = v
	p.mu.Unlock()
}

func (p *Pipeline) reset() {
	p.mu.Lock()
	p.active = false
	p.progress = 0
	p.mu.Unlock()
}

func (p *Pipeline) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
