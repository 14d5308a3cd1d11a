package app

import (
	"go.uber.org/fx"

	"github.com/willsigmon/boppa/internal/service/contact"
	"github.com/willsigmon/boppa/internal/service/user"
	"github.com/willsigmon/boppa/internal/storage"
	"github.com/willsigmon/boppa/pkg/events"
	"github.com/willsigmon/boppa/pkg/util/password"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvideContactService,
		ProvideUserService,
	),
)

func ProvideContactService(store storage.Storage, publisher events.Publisher) contact.Service {
	return contact.New(store, publisher)
}

func ProvideUserService(store storage.Storage, hasher *password.Hasher) user.Service {
	return user.New(store, hasher)
}
