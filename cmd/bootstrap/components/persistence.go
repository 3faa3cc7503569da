package components

import (
	"skillmarket/internal/infra/db"
	"skillmarket/internal/infra/notifier"
	"skillmarket/internal/infra/readstore"
	"skillmarket/internal/infra/uow"
	"skillmarket/internal/usecase/commands"
	"skillmarket/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		NewDBTX,
		uow.NewPostgresUoW,
		fx.Annotate(
			readstore.NewBookingReadStore,
			fx.As(new(queries.BookingReadStore)),
		),
		fx.Annotate(
			readstore.NewEscrowReadStore,
			fx.As(new(queries.EscrowReadStore)),
		),
		fx.Annotate(
			readstore.NewUserReadStore,
			fx.As(new(queries.UserReadStore)),
		),
		fx.Annotate(
			notifier.NewJobNotifier,
			fx.As(new(commands.Notifier)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}
