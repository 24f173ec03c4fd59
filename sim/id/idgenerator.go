// Package id generates identifiers for events, simulation runs, and traces.
package id

import (
	"log"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"
)

// IDGenerator can generate IDs.
type IDGenerator interface {
	Generate() string
}

var (
	generatorLock sync.Mutex
	generator     IDGenerator
)

// UseSequentialIDGenerator makes Generate return increasing decimal numbers.
// It must be called before the first call to Generate.
func UseSequentialIDGenerator() {
	use(NewIDGenerator())
}

// UseParallelIDGenerator makes Generate return globally unique xids. The IDs
// are no longer deterministic across runs.
func UseParallelIDGenerator() {
	use(parallelIDGenerator{})
}

func use(g IDGenerator) {
	generatorLock.Lock()
	defer generatorLock.Unlock()

	if generator != nil {
		log.Panic("cannot change id generator type after using it")
	}

	generator = g
}

// Generate returns a new ID from the process-wide generator. The sequential
// generator is selected if none was chosen.
func Generate() string {
	generatorLock.Lock()
	if generator == nil {
		generator = NewIDGenerator()
	}
	g := generator
	generatorLock.Unlock()

	return g.Generate()
}

// NewIDGenerator returns a standalone sequential ID generator.
func NewIDGenerator() IDGenerator {
	return &sequentialIDGenerator{}
}

// NewRunID returns a globally unique ID suitable for naming output files.
func NewRunID() string {
	return xid.New().String()
}

type sequentialIDGenerator struct {
	nextID uint64
}

func (g *sequentialIDGenerator) Generate() string {
	idNumber := atomic.AddUint64(&g.nextID, 1)
	id := strconv.FormatUint(idNumber, 10)

	return id
}

type parallelIDGenerator struct {
}

func (g parallelIDGenerator) Generate() string {
	return xid.New().String()
}
