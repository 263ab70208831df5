package form

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/marketplace-listings/internal/credential"
	"github.com/ignatzorin/marketplace-listings/internal/logger"
	"github.com/ignatzorin/marketplace-listings/internal/pkg/apperror"
)

// DefaultIdleTTL - через сколько без активности форма закрывается.
const DefaultIdleTTL = 30 * time.Minute

// CredentialEventPayload - данные события кода для клиента. Сам код не передаётся.
type CredentialEventPayload struct {
	FormID           uuid.UUID `json:"form_id"`
	ProductID        uuid.UUID `json:"product_id"`
	RemainingSeconds int       `json:"remaining_seconds"`
}

// Manager хранит открытые формы продавцов и маршрутизирует им события эмитента.
type Manager struct {
	mu        sync.RWMutex
	forms     map[uuid.UUID]*Form
	byProduct map[uuid.UUID]*Form

	deps        Deps
	idleTTL     time.Duration
	notifier    Notifier
	unsubscribe func()
}

func NewManager(deps Deps, idleTTL time.Duration, notifier Notifier) *Manager {
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	m := &Manager{
		forms:     make(map[uuid.UUID]*Form),
		byProduct: make(map[uuid.UUID]*Form),
		deps:      deps,
		idleTTL:   idleTTL,
		notifier:  notifier,
	}
	m.unsubscribe = deps.Issuer.Subscribe(m.handleEvent)
	return m
}

// Open создаёт новую форму продавца со своим productID.
func (m *Manager) Open(sellerID uuid.UUID) (*Form, error) {
	if sellerID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}

	f := newForm(sellerID, m.deps)
	f.rebind = m.rebind

	m.mu.Lock()
	m.forms[f.id] = f
	m.byProduct[f.productID] = f
	m.mu.Unlock()

	logger.L().WithFields(logrus.Fields{
		"form_id":    f.id,
		"seller_id":  sellerID,
		"product_id": f.productID,
	}).Debug("form: форма открыта")
	return f, nil
}

// Get возвращает форму, если она принадлежит продавцу.
func (m *Manager) Get(formID, sellerID uuid.UUID) (*Form, error) {
	m.mu.RLock()
	f, ok := m.forms[formID]
	m.mu.RUnlock()

	if !ok {
		return nil, apperror.ErrFormNotFound
	}
	if f.sellerID != sellerID {
		return nil, apperror.ErrForbidden
	}
	return f, nil
}

// Close закрывает форму продавца.
func (m *Manager) Close(formID, sellerID uuid.UUID) error {
	f, err := m.Get(formID, sellerID)
	if err != nil {
		return err
	}
	m.remove(f)
	return nil
}

// Count - число открытых форм.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.forms)
}

// Run закрывает простаивающие формы, пока ctx не завершён.
func (m *Manager) Run(ctx context.Context) {
	interval := m.idleTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := m.deps.Clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			m.CloseIdle()
		}
	}
}

// CloseIdle закрывает формы без активности дольше idleTTL и возвращает их число.
func (m *Manager) CloseIdle() int {
	cutoff := m.deps.Clock.Now().Add(-m.idleTTL)

	m.mu.RLock()
	var idle []*Form
	for _, f := range m.forms {
		if f.idleSince().Before(cutoff) {
			idle = append(idle, f)
		}
	}
	m.mu.RUnlock()

	for _, f := range idle {
		m.remove(f)
	}
	if len(idle) > 0 {
		logger.L().WithField("count", len(idle)).Info("form: закрыты неактивные формы")
	}
	return len(idle)
}

// Shutdown закрывает все формы и отписывается от эмитента.
func (m *Manager) Shutdown() {
	m.mu.RLock()
	all := make([]*Form, 0, len(m.forms))
	for _, f := range m.forms {
		all = append(all, f)
	}
	m.mu.RUnlock()

	for _, f := range all {
		m.remove(f)
	}
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

func (m *Manager) remove(f *Form) {
	m.mu.Lock()
	delete(m.forms, f.id)
	for productID, owner := range m.byProduct {
		if owner == f {
			delete(m.byProduct, productID)
		}
	}
	m.mu.Unlock()

	f.Close()
}

func (m *Manager) rebind(f *Form, oldProductID, newProductID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.byProduct[oldProductID] == f {
		delete(m.byProduct, oldProductID)
	}
	if _, open := m.forms[f.id]; open {
		m.byProduct[newProductID] = f
	}
}

func (m *Manager) handleEvent(ev credential.Event) {
	m.mu.RLock()
	f, ok := m.byProduct[ev.ProductID]
	m.mu.RUnlock()
	if !ok {
		return
	}

	f.onCredentialEvent(ev)

	if m.notifier != nil {
		m.notifier.PublishToSeller(f.sellerID, string(ev.Type), CredentialEventPayload{
			FormID:           f.id,
			ProductID:        ev.ProductID,
			RemainingSeconds: ev.RemainingSeconds,
		})
	}
}
