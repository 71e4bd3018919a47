package genealogy

import (
	"embed"

	"github.com/arborfam/arbor/modules/genealogy/infrastructure/persistence"
	"github.com/arborfam/arbor/modules/genealogy/presentation/controllers"
	"github.com/arborfam/arbor/modules/genealogy/services"
	"github.com/arborfam/arbor/pkg/application"
)

//go:embed infrastructure/persistence/schema/genealogy-schema.sql
var migrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Register(app application.Application) error {
	app.RegisterSchema(&migrationFiles)

	persons := persistence.NewPersonRepository()
	rels := persistence.NewRelationshipRepository()
	profiles := persistence.NewOwnerProfileRepository()
	locks := services.NewOwnerLocks()
	recovery := services.NewRecoveryState()

	app.RegisterServices(
		services.NewPersonService(persons, profiles),
		services.NewDuplicateService(persons, rels),
		services.NewImportService(persons, rels, app.EventPublisher(), locks, recovery),
		services.NewMergeService(persons, rels, profiles, app.EventPublisher(), locks, recovery),
	)

	app.RegisterControllers(
		controllers.NewGenealogyAPIController(app),
	)

	return nil
}

func (m *Module) Name() string {
	return "genealogy"
}
