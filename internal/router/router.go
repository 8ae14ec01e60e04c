package router

import (
	"database/sql"
	"net/http"
	"os"

	mem "vet-vaccination-tracker/internal/adapters/storage/memory"
	pg "vet-vaccination-tracker/internal/adapters/storage/postgres"
	"vet-vaccination-tracker/internal/domain/compliance"
	"vet-vaccination-tracker/internal/domain/doses"
	"vet-vaccination-tracker/internal/domain/patients"
	"vet-vaccination-tracker/internal/domain/protocol"
	"vet-vaccination-tracker/internal/domain/reminders"
	"vet-vaccination-tracker/internal/middleware"
	"vet-vaccination-tracker/internal/platform/logger"
	"vet-vaccination-tracker/internal/ports/auth"
	"vet-vaccination-tracker/internal/ports/notify"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "vet-vaccination-tracker/docs"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Opcional: notificador saliente. nil = despacho deshabilitado.
	Notifier notify.Notifier

	// Opcional: catálogo alterno (tests). nil = catálogo estándar.
	Catalog *protocol.Catalog

	Log logger.Logger
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	log := opts.Log
	if log == nil {
		log = logger.NewFromEnv()
	}

	catalog := opts.Catalog
	if catalog == nil {
		catalog = protocol.Default()
	}

	var (
		patientRepo  patients.Repository
		doseRepo     doses.Repository
		reminderRepo reminders.Repository
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			} else {
				log.Warn("could not open postgres, falling back to memory", map[string]any{
					"error": err.Error(),
				})
			}
		}
	}

	if db != nil {
		patientRepo = pg.NewPatientsRepo(db)
		doseRepo = pg.NewDosesRepo(db)
		reminderRepo = pg.NewRemindersRepo(db)
	} else {
		patientRepo = mem.NewPatientRepo()
		doseRepo = mem.NewDoseRepo()
		reminderRepo = mem.NewReminderRepo()
	}

	// Motor: evaluator y scheduler comparten el catálogo inyectado.
	eval := compliance.NewEvaluator(catalog)
	sched := reminders.NewScheduler(catalog, eval, log)

	// Services por módulo
	patientsSvc := patients.NewService(patientRepo)
	dosesSvc := doses.NewService(doseRepo)
	remindersSvc := reminders.NewService(reminderRepo, sched, opts.Notifier, log)

	// Rutas por módulo
	protocol.RegisterRoutes(r, catalog)
	patients.RegisterRoutes(r, patientsSvc)
	doses.RegisterRoutes(r, dosesSvc, patientsSvc, eval, remindersSvc, catalog)
	reminders.RegisterRoutes(r, remindersSvc, patientsSvc)

	return r
}
