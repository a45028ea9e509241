// seed herramienta de operación: crea o actualiza usuarios con su permiso y da de alta
// ítems desde un CSV mediante una entrada inicial en el libro.
//
// Uso:
//
//	go run ./cmd/seed user  -username ana -name "Ana Souza" -login -edit-stock [-admin] [-no-outflow] [-token]
//	go run ./cmd/seed items -user-id <uuid> -file itens.csv [-latin1]
//
// El CSV lleva cabecera: name,category,unit,quantity,minimum_quantity,description,supplier,price,location
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/estoque-api/internal/application/auth"
	"github.com/jhoicas/estoque-api/internal/application/inventory"
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	infrakafka "github.com/jhoicas/estoque-api/internal/infrastructure/kafka"
	"github.com/jhoicas/estoque-api/internal/infrastructure/postgres"
	"github.com/jhoicas/estoque-api/pkg/config"
	"github.com/jhoicas/estoque-api/pkg/jwt"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "uso: seed <user|items> [flags]")
		os.Exit(2)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.NewWithWriter(os.Stderr, cfg.App.LogLevel)

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Conectar a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "Migrar esquema: %v\n", err)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "user":
		err = seedUser(ctx, cfg, postgres.NewUserRepository(pool), os.Args[2:])
	case "items":
		publisher := infrakafka.NewPublisher(cfg.Kafka, log)
		defer publisher.Close()
		ledger := inventory.NewLedgerUseCase(
			postgres.NewStockItemRepository(pool),
			postgres.NewMovementRepository(pool),
			postgres.NewTxRunner(pool),
			publisher, publisher, log,
			inventory.WithMaxRetries(cfg.Inventory.MovementMaxRetries),
		)
		err = seedItems(ctx, auth.NewGate(postgres.NewUserRepository(pool)), ledger, os.Args[2:])
	default:
		err = fmt.Errorf("subcomando desconocido %q", os.Args[1])
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

type userUpserter interface {
	Upsert(ctx context.Context, user *entity.User) error
}

func seedUser(ctx context.Context, cfg *config.Config, users userUpserter, args []string) error {
	fs := flag.NewFlagSet("user", flag.ContinueOnError)
	username := fs.String("username", "", "nombre de usuario (obligatorio)")
	name := fs.String("name", "", "nombre visible")
	login := fs.Bool("login", true, "puede iniciar sesión")
	editStock := fs.Bool("edit-stock", false, "puede registrar entradas y crear ítems")
	noOutflow := fs.Bool("no-outflow", false, "deshabilita el registro de salidas")
	admin := fs.Bool("admin", false, "concede todas las capacidades")
	token := fs.Bool("token", false, "imprime un JWT para el usuario")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" {
		return errors.New("-username es obligatorio")
	}

	perm := entity.Permission{Login: *login, EditStock: *editStock, IsAdmin: *admin}
	if *noOutflow {
		off := false
		perm.Outflow = &off
	}
	now := time.Now()
	u := &entity.User{
		ID:          uuid.New().String(),
		Username:    *username,
		DisplayName: *name,
		Permission:  perm,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := users.Upsert(ctx, u); err != nil {
		return err
	}
	caps := perm.Capabilities()
	fmt.Printf("Usuario %s (%s): visualizar=%t registrarSaida=%t editarEstoque=%t\n",
		u.Username, u.ID, caps.View, caps.Outflow, caps.Inflow)

	if *token {
		tok, err := jwt.Generate(cfg.JWT.Secret, u.ID, u.Username, cfg.JWT.Issuer, cfg.JWT.Expiration)
		if err != nil {
			return fmt.Errorf("generar token: %w", err)
		}
		fmt.Println(tok)
	}
	return nil
}

type itemRegistrar interface {
	RegisterNewItem(ctx context.Context, actor entity.Actor, item *entity.StockItem, meta inventory.MovementMetadata) (*entity.StockItem, *entity.Movement, error)
}

type actorResolver interface {
	Resolve(ctx context.Context, userID string) (entity.Actor, error)
}

func seedItems(ctx context.Context, actors actorResolver, ledger itemRegistrar, args []string) error {
	fs := flag.NewFlagSet("items", flag.ContinueOnError)
	userID := fs.String("user-id", "", "usuario que registra las entradas (obligatorio)")
	file := fs.String("file", "", "CSV de ítems (obligatorio)")
	latin1 := fs.Bool("latin1", false, "el CSV está en ISO-8859-1")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *userID == "" || *file == "" {
		return errors.New("-user-id y -file son obligatorios")
	}
	actor, err := actors.Resolve(ctx, *userID)
	if err != nil {
		return fmt.Errorf("resolver usuario: %w", err)
	}

	f, err := os.Open(*file)
	if err != nil {
		return fmt.Errorf("abrir CSV: %w", err)
	}
	defer f.Close()
	items, err := parseItemsCSV(f, *latin1)
	if err != nil {
		return err
	}

	res := importItems(ctx, ledger, actor, items)
	fmt.Printf("Importados %d ítems, %d ya existían, %d con error\n", res.created, res.skipped, len(res.failed))
	for _, fl := range res.failed {
		fmt.Fprintf(os.Stderr, "  línea %d (%s): %v\n", fl.line, fl.name, fl.err)
	}
	return nil
}

type importResult struct {
	created int
	skipped int
	failed  []importFailure
}

type importFailure struct {
	line int
	name string
	err  error
}

// importItems registra cada ítem con su entrada inicial. Los nombres ya existentes se
// omiten; los demás errores se acumulan y la carga continúa.
func importItems(ctx context.Context, ledger itemRegistrar, actor entity.Actor, rows []csvItem) importResult {
	var res importResult
	note := "carga inicial"
	for _, row := range rows {
		_, _, err := ledger.RegisterNewItem(ctx, actor, row.item, inventory.MovementMetadata{Notes: &note})
		switch {
		case err == nil:
			res.created++
		case errors.Is(err, domain.ErrDuplicate):
			res.skipped++
		default:
			res.failed = append(res.failed, importFailure{line: row.line, name: row.item.Name, err: err})
		}
	}
	return res
}
