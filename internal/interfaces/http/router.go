package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/ulule/limiter/v3"

	"github.com/jhoicas/estoque-api/internal/application/inventory"
	"github.com/jhoicas/estoque-api/internal/application/reconciliation"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger         *inventory.LedgerUseCase
	Catalog        *inventory.CatalogUseCase
	Reconciliation *reconciliation.UseCase
	Actors         ActorResolver
	Limiter        *limiter.Limiter // nil desactiva el límite
	JWTSecret      string
	Log            *logger.Logger
}

// Router registra las rutas de la API. Todas requieren Bearer Token. Las lecturas exigen
// la capacidad en el middleware; las escrituras la verifican en el caso de uso, después de
// validar el cuerpo.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	view := RequireCapability(entity.CapabilityView, log)

	api := app.Group("/api", AuthMiddleware(deps.JWTSecret, deps.Actors, log))

	write := func(c *fiber.Ctx) error { return c.Next() }
	if deps.Limiter != nil {
		write = RateLimit(deps.Limiter, log)
	}

	// Movimientos (tipo decide entrada/saída en el caso de uso)
	movementHandler := NewMovementHandler(deps.Ledger, log)
	movements := api.Group("/movements")
	movements.Get("/", view, movementHandler.List)
	movements.Post("/", write, movementHandler.Record)
	movements.Post("/new-item", write, movementHandler.RegisterItem)

	// Catálogo
	itemHandler := NewItemHandler(deps.Catalog, deps.Ledger, log)
	items := api.Group("/items")
	items.Get("/", view, itemHandler.List)
	items.Get("/low-stock", view, itemHandler.LowStock)
	items.Post("/", write, itemHandler.Create)
	items.Get("/:id", view, itemHandler.GetByID)
	items.Get("/:id/consistency", view, itemHandler.Consistency)

	// Revisiones
	recHandler := NewReconciliationHandler(deps.Reconciliation, log)
	recs := api.Group("/reconciliations", view)
	recs.Get("/", recHandler.List)
	recs.Post("/", write, recHandler.Submit)
	recs.Post("/sessions", write, recHandler.StartSession)
	recs.Get("/sessions/:id", recHandler.GetSession)
	recs.Put("/sessions/:id/entries/:index", write, recHandler.SubmitCount)
	recs.Post("/sessions/:id/advance", recHandler.Advance)
	recs.Post("/sessions/:id/retreat", recHandler.Retreat)
	recs.Post("/sessions/:id/finalize", write, recHandler.Finalize)
	recs.Get("/:id", recHandler.GetByID)
}
