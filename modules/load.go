package modules

import (
	"github.com/arborfam/arbor/modules/genealogy"
	"github.com/arborfam/arbor/pkg/application"
)

var BuiltInModules = []application.Module{
	genealogy.NewModule(),
}

func Load(app application.Application, externalModules ...application.Module) error {
	for _, module := range externalModules {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
