package calculator

import (
	"crypto/rand"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Registry holds the calculators by name.
type Registry struct {
	calculators map[string]Calculator
	mu          sync.RWMutex
}

// NewRegistry returns a registry with every built-in calculator registered.
// A nil settings.Random falls back to crypto/rand.
func NewRegistry(settings Settings) *Registry {
	if settings.Random == nil {
		settings.Random = rand.Reader
	}
	r := &Registry{calculators: make(map[string]Calculator)}
	for _, c := range builtins(settings) {
		r.Register(c)
	}

	return r
}

func builtins(s Settings) []Calculator {
	return []Calculator{
		newCipherCalculator(s),
		newKCVCalculator(s),
		newPinBlockCalculator(s),
		newOffsetCalculator(s),
		newPVVCalculator(s),
		newCVVCalculator(s),
		newEMVCalculator(s),
		newMACCalculator(s),
		newMDCCalculator(s),
		newBitmapCalculator(s),
	}
}

// Register adds or replaces a calculator.
func (r *Registry) Register(c Calculator) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calculators[strings.ToLower(c.Name())] = c
}

// Get retrieves a calculator by name, case insensitive.
func (r *Registry) Get(name string) (Calculator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.calculators[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// List returns the registered calculators sorted by name.
func (r *Registry) List() []Calculator {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Calculator, 0, len(r.calculators))
	for _, c := range r.calculators {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })

	return out
}

// Execute looks up the calculator and runs op. Lookup failures are returned as failed
// results like any other error.
func (r *Registry) Execute(name string, op Operation, params Params, logger zerolog.Logger) Result {
	c, ok := r.Get(name)
	if !ok {
		auditID := uuid.NewString()
		logger.Warn().
			Str("event", "calculation").
			Str("calculator", name).
			Str("audit_id", auditID).
			Msg("unknown calculator")

		return failure(auditID, fmt.Errorf("%w: %q", ErrUnknownCalculator, name))
	}

	return c.Execute(op, params, logger)
}
