package handler

import (
	"net/http"

	"lagoon/core"
	"lagoon/handler/request"
	"lagoon/handler/rest"

	"github.com/go-chi/chi"
)

// Server server
type Server struct {
	system    *core.System
	pools     core.IPoolStore
	tokens    core.ITokenStore
	positions core.IPositionStore
	events    core.IEventStore
	prices    core.IPriceStore
	keepers   core.IKeeperStore
	lending   core.ILendingService
	risk      core.IRiskService
	keeper    core.IKeeperService
	oracle    core.IPriceOracleService
}

// New new server function
func New(
	system *core.System,
	pools core.IPoolStore,
	tokens core.ITokenStore,
	positions core.IPositionStore,
	events core.IEventStore,
	prices core.IPriceStore,
	keepers core.IKeeperStore,
	lending core.ILendingService,
	risk core.IRiskService,
	keeper core.IKeeperService,
	oracle core.IPriceOracleService,
) Server {
	return Server{
		system:    system,
		pools:     pools,
		tokens:    tokens,
		positions: positions,
		events:    events,
		prices:    prices,
		keepers:   keepers,
		lending:   lending,
		risk:      risk,
		keeper:    keeper,
		oracle:    oracle,
	}
}

// HandleRestAPI handle restful apis
func (s Server) HandleRestAPI() http.Handler {
	r := chi.NewRouter()
	r.Use(request.ParseUser())

	r.Mount("/", rest.Handle(
		s.system,
		s.pools,
		s.tokens,
		s.positions,
		s.events,
		s.prices,
		s.keepers,
		s.lending,
		s.risk,
		s.keeper,
		s.oracle,
	))

	return r
}
