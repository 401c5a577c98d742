// Package wire provides dependency injection for the dossier application.
// It creates singleton services with lazy initialization.
package wire

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	cliadapter "github.com/example/dossier/internal/adapters/cli"
	"github.com/example/dossier/internal/adapters/render"
	"github.com/example/dossier/internal/adapters/sqlite"
	"github.com/example/dossier/internal/app"
	"github.com/example/dossier/internal/config"
	"github.com/example/dossier/internal/core/continuity"
	"github.com/example/dossier/internal/db"
	"github.com/example/dossier/internal/logging"
	"github.com/example/dossier/internal/ports/primary"
	"github.com/example/dossier/internal/ports/secondary"
	"github.com/example/dossier/internal/signal"
)

var (
	caseService     primary.CaseService
	sectionService  primary.SectionService
	assemblyService primary.AssemblyService
	findingService  primary.FindingService
	signalLogRepo   secondary.SignalLogRepository
	bus             *signal.Bus
	once            sync.Once
)

// CaseService returns the singleton CaseService instance.
func CaseService() primary.CaseService {
	once.Do(initServices)
	return caseService
}

// SectionService returns the singleton SectionService instance.
func SectionService() primary.SectionService {
	once.Do(initServices)
	return sectionService
}

// AssemblyService returns the singleton AssemblyService instance.
func AssemblyService() primary.AssemblyService {
	once.Do(initServices)
	return assemblyService
}

// FindingService returns the singleton FindingService instance.
func FindingService() primary.FindingService {
	once.Do(initServices)
	return findingService
}

// SignalLog returns the singleton signal log repository.
func SignalLog() secondary.SignalLogRepository {
	once.Do(initServices)
	return signalLogRepo
}

// DrainSignals blocks until every signal enqueued by this process has been
// delivered or has exhausted its retry budget. The CLI calls it before exit
// so the audit log is complete.
func DrainSignals() {
	once.Do(initServices)
	bus.Wait()
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	logger := logging.Default()

	database, err := db.GetDB()
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	home, err := config.HomeDir()
	if err != nil {
		log.Fatalf("failed to resolve home directory: %v", err)
	}
	registry, err := config.LoadRegistry(home)
	if err != nil {
		log.Fatalf("failed to load report-type registry: %v", err)
	}

	// Repository adapters (secondary ports)
	caseRepo := sqlite.NewCaseRepository(database)
	sectionRepo := sqlite.NewSectionRepository(database)
	factRepo := sqlite.NewFactRepository(database)
	findingRepo := sqlite.NewFindingRepository(database)
	signalLogRepo = sqlite.NewSignalLogRepository(database)

	// Signal bus with the audit subscriber; every delivery outcome lands in
	// the signal log.
	bus = signal.NewBus(logger, signal.WithResultHook(recordDelivery(logger)))
	if err := bus.Subscribe("audit", func(signal.Event) error { return nil },
		signal.CodeSectionDrafted,
		signal.CodeSectionRevisionRequested,
		signal.CodeSectionApproved,
		signal.CodeContinuityFail,
		signal.CodeContinuityResolved,
		signal.CodeAssemblyReady,
		signal.CodeCaseArchived,
	); err != nil {
		log.Fatalf("failed to subscribe audit log: %v", err)
	}

	// External capabilities
	sectionRenderer := render.NewBundleRenderer(filepath.Join(home, "renders"))
	qualityGate := render.NewHeuristicQualityGate()
	docRenderer := render.NewMarkdownComposer()

	engine := continuity.NewEngine(continuity.Config{
		SimilarityThreshold: continuity.DefaultSimilarityThreshold,
		TravelWindow:        time.Hour,
	})
	locks := app.NewCaseLocks()

	// Services (primary ports implementation)
	caseService = app.NewCaseService(caseRepo, sectionRepo, registry, locks, logger)
	sectionService = app.NewSectionService(caseRepo, sectionRepo, factRepo, findingRepo,
		sectionRenderer, qualityGate, engine, registry, bus, locks, logger)
	assemblyService = app.NewAssemblyService(caseRepo, sectionRepo, findingRepo,
		docRenderer, bus, locks, logger)
	findingService = app.NewFindingService(findingRepo, locks, logger)
}

// recordDelivery persists each signal delivery outcome to the audit log.
func recordDelivery(logger zerolog.Logger) func(signal.DeliveryResult) {
	return func(r signal.DeliveryResult) {
		payload, err := json.Marshal(r.Event.Payload)
		if err != nil {
			payload = []byte("{}")
		}
		entry := &secondary.SignalLogRecord{
			ID:         uuid.NewString(),
			CaseID:     r.Event.CaseID,
			Code:       int(r.Event.Code),
			Source:     string(r.Event.Source),
			Subscriber: r.Subscriber,
			Payload:    string(payload),
			Delivered:  r.Delivered,
			Attempts:   r.Attempts,
			EmittedAt:  r.Event.EmittedAt.Format(time.RFC3339),
		}
		if err := signalLogRepo.Record(context.Background(), entry); err != nil {
			logger.Error().Err(err).Str("case_id", entry.CaseID).Msg("failed to record signal delivery")
		}
	}
}

// CaseAdapter returns a new CaseAdapter writing to stdout.
func CaseAdapter() *cliadapter.CaseAdapter {
	return CaseAdapterWithOutput(os.Stdout)
}

// CaseAdapterWithOutput returns a new CaseAdapter writing to the given output.
func CaseAdapterWithOutput(out io.Writer) *cliadapter.CaseAdapter {
	once.Do(initServices)
	return cliadapter.NewCaseAdapter(caseService, out)
}

// SectionAdapter returns a new SectionAdapter writing to stdout.
func SectionAdapter() *cliadapter.SectionAdapter {
	return SectionAdapterWithOutput(os.Stdout)
}

// SectionAdapterWithOutput returns a new SectionAdapter writing to the given output.
func SectionAdapterWithOutput(out io.Writer) *cliadapter.SectionAdapter {
	once.Do(initServices)
	return cliadapter.NewSectionAdapter(sectionService, out)
}

// AssemblyAdapter returns a new AssemblyAdapter writing to stdout.
func AssemblyAdapter() *cliadapter.AssemblyAdapter {
	return AssemblyAdapterWithOutput(os.Stdout)
}

// AssemblyAdapterWithOutput returns a new AssemblyAdapter writing to the given output.
func AssemblyAdapterWithOutput(out io.Writer) *cliadapter.AssemblyAdapter {
	once.Do(initServices)
	return cliadapter.NewAssemblyAdapter(assemblyService, out)
}

// FindingAdapter returns a new FindingAdapter writing to stdout.
func FindingAdapter() *cliadapter.FindingAdapter {
	return FindingAdapterWithOutput(os.Stdout)
}

// FindingAdapterWithOutput returns a new FindingAdapter writing to the given output.
func FindingAdapterWithOutput(out io.Writer) *cliadapter.FindingAdapter {
	once.Do(initServices)
	return cliadapter.NewFindingAdapter(findingService, out)
}

// SignalAdapter returns a new SignalAdapter writing to stdout.
func SignalAdapter() *cliadapter.SignalAdapter {
	once.Do(initServices)
	return cliadapter.NewSignalAdapter(signalLogRepo, os.Stdout)
}
