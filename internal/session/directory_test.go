package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"innersignature/internal/domain"
)

func twoCompanies() []domain.CompanyMembership {
	return []domain.CompanyMembership{
		{CompanyID: "c10", CompanyName: "Han Trading"},
		{CompanyID: "c20", CompanyName: "Han Logistics"},
	}
}

func TestDirectory_FetchPersistsCompanies(t *testing.T) {
	store := NewMemoryStore()
	api := &fakeAPI{fetchData: twoCompanies()}
	ctrl := NewController(store, api, zap.NewNop())
	directory := NewDirectory(ctrl, api, zap.NewNop())

	ctrl.Login(identityFor("c10"), "tok-1", "ref-1")

	memberships, err := directory.FetchMemberCompanies(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(memberships) != 2 {
		t.Fatalf("expected 2 memberships, got %d", len(memberships))
	}

	if _, ok := store.Get(KeyCompanies); !ok {
		t.Fatalf("companies must be persisted alongside the token")
	}
	if got := ctrl.Companies(); len(got) != 2 {
		t.Fatalf("expected persisted companies readable, got %v", got)
	}
}

func TestDirectory_FetchRequiresToken(t *testing.T) {
	store := NewMemoryStore()
	api := &fakeAPI{fetchData: twoCompanies()}
	ctrl := NewController(store, api, zap.NewNop())
	directory := NewDirectory(ctrl, api, zap.NewNop())

	if _, err := directory.FetchMemberCompanies(context.Background()); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if got := api.fetchCalls.Load(); got != 0 {
		t.Fatalf("no network call without token, got %d", got)
	}
}

func TestDirectory_ConcurrentFetchIsSingleCall(t *testing.T) {
	store := NewMemoryStore()
	api := &fakeAPI{
		fetchData:    twoCompanies(),
		fetchStarted: make(chan struct{}, 1),
		fetchGate:    make(chan struct{}),
	}
	ctrl := NewController(store, api, zap.NewNop())
	directory := NewDirectory(ctrl, api, zap.NewNop())

	ctrl.Login(identityFor("c10"), "tok-1", "ref-1")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = directory.FetchMemberCompanies(context.Background())
	}()

	// Con la primera llamada bloqueada en red, la segunda es un no-op.
	<-api.fetchStarted
	if _, err := directory.FetchMemberCompanies(context.Background()); err != nil {
		t.Fatalf("in-flight fetch should no-op, got %v", err)
	}

	close(api.fetchGate)
	wg.Wait()

	if got := api.fetchCalls.Load(); got != 1 {
		t.Fatalf("expected exactly one network call, got %d", got)
	}
}

func TestDirectory_FetchErrorKeepsNothing(t *testing.T) {
	store := NewMemoryStore()
	api := &fakeAPI{fetchErr: errors.New("backend down")}
	ctrl := NewController(store, api, zap.NewNop())
	directory := NewDirectory(ctrl, api, zap.NewNop())

	ctrl.Login(identityFor("c10"), "tok-1", "ref-1")

	if _, err := directory.FetchMemberCompanies(context.Background()); err == nil {
		t.Fatalf("expected fetch error")
	}
	if _, ok := store.Get(KeyCompanies); ok {
		t.Fatalf("failed fetch must not persist companies")
	}

	// El flag en vuelo quedo liberado: un reintento vuelve a llamar.
	api.fetchErr = nil
	api.fetchData = twoCompanies()
	if _, err := directory.FetchMemberCompanies(context.Background()); err != nil {
		t.Fatalf("retry after error: %v", err)
	}
	if got := api.fetchCalls.Load(); got != 2 {
		t.Fatalf("expected retry to reach the network, got %d calls", got)
	}
}

func TestDirectory_SelectorFollowsActiveCompany(t *testing.T) {
	store := NewMemoryStore()
	api := &fakeAPI{
		fetchData: twoCompanies(),
		switchData: SessionData{
			User:         identityFor("c20"),
			Token:        "tok-2",
			RefreshToken: "ref-2",
		},
	}
	ctrl := NewController(store, api, zap.NewNop())
	directory := NewDirectory(ctrl, api, zap.NewNop())

	ctrl.Login(identityFor("c10"), "tok-1", "ref-1")
	memberships, err := directory.FetchMemberCompanies(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(memberships) != 2 {
		t.Fatalf("expected a selector with 2 entries, got %d", len(memberships))
	}

	selected, ok := directory.Selected()
	if !ok || selected.CompanyID != "c10" {
		t.Fatalf("expected c10 selected, got %+v,%v", selected, ok)
	}

	if _, err := ctrl.SwitchCompany(context.Background(), "c20"); err != nil {
		t.Fatalf("switch: %v", err)
	}
	if got := ctrl.Current().User.CompanyID; got != "c20" {
		t.Fatalf("expected active company c20, got %q", got)
	}

	selected, ok = directory.Selected()
	if !ok || selected.CompanyID != "c20" {
		t.Fatalf("selected marker should follow the switch, got %+v,%v", selected, ok)
	}
}

func TestDirectory_SelectedWithoutSession(t *testing.T) {
	store := NewMemoryStore()
	api := &fakeAPI{}
	ctrl := NewController(store, api, zap.NewNop())
	directory := NewDirectory(ctrl, api, zap.NewNop())

	if _, ok := directory.Selected(); ok {
		t.Fatalf("no selection without a session")
	}
}
