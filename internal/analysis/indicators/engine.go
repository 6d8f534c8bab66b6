// Package indicators provides technical indicator calculations with parallel processing.
package indicators

import (
	"context"
	"fmt"
	"sync"

	"marketdesk/internal/models"
)

// Indicator is a single-series technical indicator.
type Indicator interface {
	Name() string
	Calculate(candles []models.Candle) ([]float64, error)
	Period() int
}

// MultiValueIndicator is an indicator that produces several named series.
type MultiValueIndicator interface {
	Name() string
	Calculate(candles []models.Candle) (map[string][]float64, error)
	Period() int
}

// Snapshot holds the latest value of every computed series for one symbol.
type Snapshot struct {
	Single map[string]float64
	Multi  map[string]map[string]float64
}

// Engine runs registered indicators over candle series using a worker pool.
type Engine struct {
	workers     int
	indicators  map[string]Indicator
	multiIndics map[string]MultiValueIndicator
	mu          sync.RWMutex
}

// NewEngine creates an engine with the given number of workers.
func NewEngine(workers int) *Engine {
	if workers <= 0 {
		workers = 4
	}
	return &Engine{
		workers:     workers,
		indicators:  make(map[string]Indicator),
		multiIndics: make(map[string]MultiValueIndicator),
	}
}

// NewDefaultEngine creates an engine preloaded with the standard indicator set.
func NewDefaultEngine(workers int) *Engine {
	e := NewEngine(workers)
	e.Register(NewSMA(20))
	e.Register(NewSMA(50))
	e.Register(NewEMA(9))
	e.Register(NewEMA(21))
	e.Register(NewRSI(14))
	e.Register(NewROC(10))
	e.Register(NewATR(14))
	e.Register(NewOBV())
	e.Register(NewVWAP())
	e.Register(NewHistoricalVolatility(20, 252))
	e.RegisterMulti(NewMACD(12, 26, 9))
	e.RegisterMulti(NewBollingerBands(20, 2.0))
	e.RegisterMulti(NewADX(14))
	e.RegisterMulti(NewStochastic(14, 3, 3))
	return e
}

// Register registers a single-series indicator.
func (e *Engine) Register(ind Indicator) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.indicators[ind.Name()] = ind
}

// RegisterMulti registers a multi-series indicator.
func (e *Engine) RegisterMulti(ind MultiValueIndicator) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.multiIndics[ind.Name()] = ind
}

// CalculateAll runs every registered indicator in parallel. Indicators that
// fail (typically on short series) are omitted from the results.
func (e *Engine) CalculateAll(ctx context.Context, candles []models.Candle) (map[string][]float64, map[string]map[string][]float64, error) {
	e.mu.RLock()
	single := make([]Indicator, 0, len(e.indicators))
	for _, ind := range e.indicators {
		single = append(single, ind)
	}
	multi := make([]MultiValueIndicator, 0, len(e.multiIndics))
	for _, ind := range e.multiIndics {
		multi = append(multi, ind)
	}
	e.mu.RUnlock()

	singleResults := make(map[string][]float64)
	multiResults := make(map[string]map[string][]float64)
	var mu sync.Mutex
	var wg sync.WaitGroup

	type job struct {
		single Indicator
		multi  MultiValueIndicator
	}
	work := make(chan job, len(single)+len(multi))

	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range work {
				select {
				case <-ctx.Done():
					return
				default:
				}
				if j.single != nil {
					if values, err := j.single.Calculate(candles); err == nil {
						mu.Lock()
						singleResults[j.single.Name()] = values
						mu.Unlock()
					}
				} else {
					if values, err := j.multi.Calculate(candles); err == nil {
						mu.Lock()
						multiResults[j.multi.Name()] = values
						mu.Unlock()
					}
				}
			}
		}()
	}

	for _, ind := range single {
		work <- job{single: ind}
	}
	for _, ind := range multi {
		work <- job{multi: ind}
	}
	close(work)
	wg.Wait()

	return singleResults, multiResults, nil
}

// Latest runs every registered indicator and returns only the final value of
// each series, which is what scoring and reporting consume.
func (e *Engine) Latest(ctx context.Context, candles []models.Candle) (*Snapshot, error) {
	singleSeries, multiSeries, err := e.CalculateAll(ctx, candles)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Single: make(map[string]float64, len(singleSeries)),
		Multi:  make(map[string]map[string]float64, len(multiSeries)),
	}
	for name, values := range singleSeries {
		if len(values) > 0 {
			snap.Single[name] = values[len(values)-1]
		}
	}
	for name, series := range multiSeries {
		last := make(map[string]float64, len(series))
		for key, values := range series {
			if len(values) > 0 {
				last[key] = values[len(values)-1]
			}
		}
		snap.Multi[name] = last
	}
	return snap, nil
}

// Calculate runs one single-series indicator by name.
func (e *Engine) Calculate(ctx context.Context, name string, candles []models.Candle) ([]float64, error) {
	e.mu.RLock()
	ind, ok := e.indicators[name]
	e.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("indicator %s not found", name)
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		return ind.Calculate(candles)
	}
}

// CalculateMulti runs one multi-series indicator by name.
func (e *Engine) CalculateMulti(ctx context.Context, name string, candles []models.Candle) (map[string][]float64, error) {
	e.mu.RLock()
	ind, ok := e.multiIndics[name]
	e.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("multi-value indicator %s not found", name)
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		return ind.Calculate(candles)
	}
}

// List returns the names of all registered indicators, single then multi.
func (e *Engine) List() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.indicators)+len(e.multiIndics))
	for name := range e.indicators {
		names = append(names, name)
	}
	for name := range e.multiIndics {
		names = append(names, name)
	}
	return names
}
