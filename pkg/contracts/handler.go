package contracts

import "github.com/julienschmidt/httprouter"

// Handler mounts its routes on a router owned by the application. The event
// and health handlers implement it so app.Application can wrap each router in
// its own middleware stack.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}
