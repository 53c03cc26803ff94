package bootstrap

import "github.com/sehee-xx/DO-DREAM-sub000/handlers"

type Handlers struct {
	FileHandler *handlers.FileHandler
	WSHandler   *handlers.WSHandler
}

func NewHandlers(services *Services, infra *Infrastructure) *Handlers {
	res := &Handlers{}
	f := handlers.NewFileHandler(services.FileService)
	res.FileHandler = f
	w := handlers.NewWSHandler(infra.EventPublisher)
	res.WSHandler = w
	return res
}
