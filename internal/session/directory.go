package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"innersignature/internal/domain"
)

// Directory mantiene la lista de companias a las que pertenece la sesion
// actual. Es un cache sin invalidacion explicita mas alla de la expiracion
// de la clave persistida o de una recarga tras un switch.
type Directory struct {
	mu       sync.Mutex
	inFlight bool
	cached   []domain.CompanyMembership

	ctrl   *Controller
	api    API
	logger *zap.Logger
}

func NewDirectory(ctrl *Controller, api API, logger *zap.Logger) *Directory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Directory{
		ctrl:   ctrl,
		api:    api,
		logger: logger,
	}
}

// FetchMemberCompanies trae el directorio del backend. Una segunda llamada
// mientras hay una en vuelo es un no-op que devuelve lo cacheado: como
// mucho una llamada de red a la vez.
func (d *Directory) FetchMemberCompanies(ctx context.Context) ([]domain.CompanyMembership, error) {
	d.mu.Lock()
	if d.inFlight {
		cached := d.cached
		d.mu.Unlock()
		return cached, nil
	}
	d.inFlight = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.inFlight = false
		d.mu.Unlock()
	}()

	current := d.ctrl.Current()
	if current.Token == "" {
		return nil, ErrNotAuthenticated
	}

	memberships, err := d.api.FetchCompanies(ctx, current.Token)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.cached = memberships
	d.mu.Unlock()

	// La persistencia pasa por el controller, unico escritor del store.
	d.ctrl.StoreCompanies(memberships)
	return memberships, nil
}

// Companies devuelve la ultima lista conocida: el cache en memoria o, tras
// un reinicio, lo persistido que siga vigente.
func (d *Directory) Companies() []domain.CompanyMembership {
	d.mu.Lock()
	cached := d.cached
	d.mu.Unlock()
	if cached != nil {
		return cached
	}
	return d.ctrl.Companies()
}

// Selected devuelve la membresia que corresponde a la compania activa de la
// sesion, si esta en la lista conocida.
func (d *Directory) Selected() (domain.CompanyMembership, bool) {
	current := d.ctrl.Current()
	if current.User == nil {
		return domain.CompanyMembership{}, false
	}
	for _, m := range d.Companies() {
		if m.CompanyID == current.User.CompanyID {
			return m, true
		}
	}
	return domain.CompanyMembership{}, false
}
