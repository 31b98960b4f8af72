package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"

	"innersignature/internal/domain"
)

// State distingue los dos unicos estados de la sesion local. Toda vista
// autenticada se construye unicamente en StateAuthenticated.
type State int

const (
	StateAnonymous State = iota
	StateAuthenticated
)

// Session es el snapshot inmutable del estado de sesion local.
type Session struct {
	User         *domain.Identity
	Token        string
	RefreshToken string
}

var ErrNotAuthenticated = errors.New("not authenticated")

// Controller es la unica fuente de verdad de "quien esta logueado, en que
// compania y con que credenciales", y el unico componente que escribe las
// claves de sesion del Store. Todas las mutaciones pasan por un mismo lock,
// de modo que llamadas solapadas quedan estrictamente ordenadas en lugar de
// competir sobre el almacenamiento compartido.
type Controller struct {
	mu     sync.Mutex
	store  Store
	api    API
	logger *zap.Logger
}

func NewController(store Store, api API, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		store:  store,
		api:    api,
		logger: logger,
	}
}

// Login sobreescribe incondicionalmente el snapshot de usuario y el access
// token con expiracion fresca. El refresh token solo se sobreescribe si
// viene uno: un login que no trae refresh no borra el que ya habia.
func (c *Controller) Login(identity domain.Identity, token, refreshToken string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeSessionLocked(identity, token, refreshToken)
}

// LoginWithPassword autentica contra el backend y persiste el triple
// resultante. El error de red o credenciales se propaga al llamador.
func (c *Controller) LoginWithPassword(ctx context.Context, email, password string) (SessionData, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := c.api.Login(ctx, email, password)
	if err != nil {
		return SessionData{}, err
	}
	c.writeSessionLocked(data.User, data.Token, data.RefreshToken)
	return data, nil
}

// SwitchCompany pide al backend credenciales re-alcanzadas a la compania
// destino. Sin token vigente falla con ErrNotAuthenticated. En caso de error
// el store queda intacto: las credenciales viejas siguen siendo validas
// hasta que las nuevas estan confirmadas. En exito las tres claves se
// sobreescriben bajo el mismo lock, sin estado intermedio observable.
func (c *Controller) SwitchCompany(ctx context.Context, companyID string) (SessionData, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	token, ok := c.store.Get(KeyToken)
	if !ok || token == "" {
		return SessionData{}, ErrNotAuthenticated
	}
	refreshToken, _ := c.store.Get(KeyRefreshToken)

	data, err := c.api.SwitchCompany(ctx, token, refreshToken, companyID)
	if err != nil {
		return SessionData{}, err
	}
	c.writeSessionLocked(data.User, data.Token, data.RefreshToken)
	return data, nil
}

// Logout deja la sesion local vacia pase lo que pase. La notificacion al
// backend es best-effort: su fallo se loguea y se traga, porque el contrato
// primario es limpiar este cliente, no garantizar la revocacion remota.
// Sin token no se intenta ninguna llamada de red.
func (c *Controller) Logout(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.store.Clear()

	token, ok := c.store.Get(KeyToken)
	if !ok || token == "" {
		return
	}
	refreshToken, _ := c.store.Get(KeyRefreshToken)

	if err := c.api.Logout(ctx, token, refreshToken); err != nil {
		c.logger.Warn("logout notification failed", zap.Error(err))
	}
}

// Current devuelve el snapshot actual de la sesion persistida.
func (c *Controller) Current() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentLocked()
}

// State reduce la sesion a Anonymous/Authenticated. Ambos tokens presentes y
// snapshot de usuario legible, o la sesion cuenta como anonima.
func (c *Controller) State() State {
	s := c.Current()
	if s.User == nil || s.Token == "" || s.RefreshToken == "" {
		return StateAnonymous
	}
	return StateAuthenticated
}

// StoreCompanies persiste el directorio de companias con la misma vida util
// que el access token: la lista caduca junto con el token que la obtuvo.
func (c *Controller) StoreCompanies(memberships []domain.CompanyMembership) {
	raw, err := json.Marshal(memberships)
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Set(KeyCompanies, string(raw), SessionTTL)
}

// Companies lee el directorio persistido, si sigue vigente.
func (c *Controller) Companies() []domain.CompanyMembership {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.store.Get(KeyCompanies)
	if !ok {
		return nil
	}
	var memberships []domain.CompanyMembership
	if err := json.Unmarshal([]byte(raw), &memberships); err != nil {
		return nil
	}
	return memberships
}

func (c *Controller) currentLocked() Session {
	var s Session
	if raw, ok := c.store.Get(KeyUser); ok {
		var identity domain.Identity
		if err := json.Unmarshal([]byte(raw), &identity); err == nil {
			s.User = &identity
		}
	}
	s.Token, _ = c.store.Get(KeyToken)
	s.RefreshToken, _ = c.store.Get(KeyRefreshToken)
	return s
}

func (c *Controller) writeSessionLocked(identity domain.Identity, token, refreshToken string) {
	raw, err := json.Marshal(identity)
	if err != nil {
		c.logger.Error("marshal identity failed", zap.Error(err))
		return
	}
	c.store.Set(KeyUser, string(raw), SessionTTL)
	c.store.Set(KeyToken, token, SessionTTL)
	if refreshToken != "" {
		c.store.Set(KeyRefreshToken, refreshToken, RefreshTTL)
	}
}
