package credential

import (
	"context"
	"crypto/subtle"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/marketplace-listings/internal/domain/entity"
	"github.com/ignatzorin/marketplace-listings/internal/domain/repository"
	"github.com/ignatzorin/marketplace-listings/internal/goroutine"
	"github.com/ignatzorin/marketplace-listings/internal/logger"
	"github.com/ignatzorin/marketplace-listings/internal/pkg/clock"
)

type EventType string

const (
	EventIssued   EventType = "credential.issued"
	EventTick     EventType = "credential.tick"
	EventExpired  EventType = "credential.expired"
	EventConsumed EventType = "credential.consumed"
	EventReleased EventType = "credential.released"
)

// Event - уведомление подписчикам. Код в событие не попадает.
type Event struct {
	Type             EventType
	ProductID        uuid.UUID
	RemainingSeconds int
	At               time.Time
}

// Listener вызывается синхронно из горутины таймера или вызывающего кода
// и не должен блокироваться.
type Listener func(Event)

// Display - то, что показывается продавцу: код и остаток времени.
type Display struct {
	Code             string    `json:"code"`
	RemainingSeconds int       `json:"remaining_seconds"`
	ExpiresAt        time.Time `json:"expires_at"`
}

type slot struct {
	cred      *entity.VerificationCredential
	owner     uuid.UUID
	countdown *Countdown
}

// Issuer выдаёт и гасит коды подтверждения. На каждый товар хранится
// не более одного кода; новая выдача заменяет предыдущий.
type Issuer struct {
	mu       sync.Mutex
	clock    clock.Clock
	generate CodeGenerator
	ttl      time.Duration
	interval time.Duration
	journal  repository.CredentialJournal
	live     map[uuid.UUID]*slot

	listenersMu    sync.RWMutex
	listeners      map[int]Listener
	nextListenerID int
}

type Option func(*Issuer)

func WithClock(c clock.Clock) Option {
	return func(i *Issuer) { i.clock = c }
}

func WithCodeGenerator(g CodeGenerator) Option {
	return func(i *Issuer) { i.generate = g }
}

// WithJournal включает журналирование выдачи и погашения кодов.
func WithJournal(j repository.CredentialJournal) Option {
	return func(i *Issuer) { i.journal = j }
}

// WithTickInterval меняет шаг отсчёта.
func WithTickInterval(d time.Duration) Option {
	return func(i *Issuer) {
		if d > 0 {
			i.interval = d
		}
	}
}

func NewIssuer(opts ...Option) *Issuer {
	i := &Issuer{
		clock:     clock.Real(),
		generate:  RandomCode,
		ttl:       entity.CredentialTTL,
		interval:  TickInterval,
		live:      make(map[uuid.UUID]*slot),
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// IssueOption уточняет выдачу.
type IssueOption func(*slot)

// Owner помечает код продавцом (для журнала).
func Owner(sellerID uuid.UUID) IssueOption {
	return func(s *slot) { s.owner = sellerID }
}

// Issue выдаёт новый код для товара и запускает отсчёт.
// Предыдущий живой код товара перестаёт действовать.
func (i *Issuer) Issue(productID uuid.UUID, opts ...IssueOption) (entity.VerificationCredential, error) {
	if productID == uuid.Nil {
		return entity.VerificationCredential{}, fmt.Errorf("credential: не указан товар")
	}

	i.mu.Lock()
	prev := i.live[productID]

	code, err := i.freshCode(prev)
	if err != nil {
		i.mu.Unlock()
		return entity.VerificationCredential{}, err
	}

	now := i.clock.Now()
	cred := entity.NewVerificationCredential(productID, code, now)
	cred.TTL = i.ttl

	s := &slot{cred: cred}
	for _, opt := range opts {
		opt(s)
	}

	if prev != nil {
		prev.countdown.Stop()
	}

	s.countdown = StartCountdown(i.clock, cred.ExpiresAt(), i.interval,
		func(remaining int) { i.onTick(productID, cred, remaining) },
		func() { i.onExpire(productID, cred) },
	)
	i.live[productID] = s
	snapshot := *cred
	i.mu.Unlock()

	if prev != nil {
		i.journalClosed(prev.cred, repository.CredentialSuperseded, now)
	}
	i.journalIssued(s, code)

	i.log().WithFields(logrus.Fields{
		"product_id": productID,
		"expires_at": snapshot.ExpiresAt(),
	}).Info("credential: выдан код подтверждения")

	i.emit(Event{Type: EventIssued, ProductID: productID, RemainingSeconds: snapshot.RemainingSeconds(now), At: now})
	return snapshot, nil
}

// freshCode генерирует код, отличный от кода заменяемой выдачи.
func (i *Issuer) freshCode(prev *slot) (string, error) {
	for attempt := 0; attempt < 8; attempt++ {
		code, err := i.generate()
		if err != nil {
			return "", err
		}
		if prev == nil || prev.cred.Code != code {
			return code, nil
		}
	}
	return "", fmt.Errorf("credential: генератор повторяет предыдущий код")
}

// CurrentCode возвращает код, только пока он живой.
func (i *Issuer) CurrentCode(productID uuid.UUID) (string, bool) {
	d, ok := i.Display(productID)
	if !ok {
		return "", false
	}
	return d.Code, true
}

// Display возвращает код и остаток времени для отображения.
func (i *Issuer) Display(productID uuid.UUID) (Display, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()

	s, ok := i.live[productID]
	if !ok {
		return Display{}, false
	}
	now := i.clock.Now()
	if !s.cred.IsLive(now) {
		return Display{}, false
	}
	return Display{
		Code:             s.cred.Code,
		RemainingSeconds: s.cred.RemainingSeconds(now),
		ExpiresAt:        s.cred.ExpiresAt(),
	}, true
}

// Consume гасит код. true возвращается, только если для товара есть живой код
// и он совпадает с переданным; повторный вызов после успеха вернёт false.
// Живость проверяется здесь же под блокировкой, поэтому просроченный код
// не пройдёт, даже если уведомление таймера ещё не доставлено.
func (i *Issuer) Consume(productID uuid.UUID, supplied string) bool {
	i.mu.Lock()
	s, ok := i.live[productID]
	if !ok {
		i.mu.Unlock()
		return false
	}
	now := i.clock.Now()
	if !s.cred.IsLive(now) || subtle.ConstantTimeCompare([]byte(s.cred.Code), []byte(supplied)) != 1 {
		i.mu.Unlock()
		return false
	}
	s.cred.Consumed = true
	s.countdown.Stop()
	delete(i.live, productID)
	i.mu.Unlock()

	i.journalClosed(s.cred, repository.CredentialConsumed, now)
	i.log().WithField("product_id", productID).Info("credential: код погашен")
	i.emit(Event{Type: EventConsumed, ProductID: productID, At: now})
	return true
}

// Release снимает код без погашения (форма закрыта). Уведомление об истечении
// после этого не придёт.
func (i *Issuer) Release(productID uuid.UUID) {
	i.mu.Lock()
	s, ok := i.live[productID]
	if ok {
		s.countdown.Stop()
		delete(i.live, productID)
	}
	i.mu.Unlock()

	if !ok {
		return
	}
	now := i.clock.Now()
	i.journalClosed(s.cred, repository.CredentialReleased, now)
	i.emit(Event{Type: EventReleased, ProductID: productID, At: now})
}

// LiveCount - число товаров с незакрытым кодом.
func (i *Issuer) LiveCount() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.live)
}

// Close останавливает все таймеры без уведомлений (остановка сервиса).
func (i *Issuer) Close() {
	i.mu.Lock()
	defer i.mu.Unlock()
	for id, s := range i.live {
		s.countdown.Stop()
		delete(i.live, id)
	}
}

// Subscribe добавляет подписчика и возвращает функцию отписки.
func (i *Issuer) Subscribe(l Listener) func() {
	i.listenersMu.Lock()
	id := i.nextListenerID
	i.nextListenerID++
	i.listeners[id] = l
	i.listenersMu.Unlock()

	return func() {
		i.listenersMu.Lock()
		delete(i.listeners, id)
		i.listenersMu.Unlock()
	}
}

func (i *Issuer) onTick(productID uuid.UUID, cred *entity.VerificationCredential, remaining int) {
	i.mu.Lock()
	current := i.isCurrent(productID, cred)
	i.mu.Unlock()
	if !current {
		return
	}
	i.emit(Event{Type: EventTick, ProductID: productID, RemainingSeconds: remaining, At: i.clock.Now()})
}

func (i *Issuer) onExpire(productID uuid.UUID, cred *entity.VerificationCredential) {
	i.mu.Lock()
	if !i.isCurrent(productID, cred) {
		i.mu.Unlock()
		return
	}
	delete(i.live, productID)
	i.mu.Unlock()

	now := i.clock.Now()
	i.journalClosed(cred, repository.CredentialExpired, now)
	i.log().WithField("product_id", productID).Info("credential: срок действия кода истёк")
	i.emit(Event{Type: EventExpired, ProductID: productID, At: now})
}

// isCurrent вызывается под i.mu.
func (i *Issuer) isCurrent(productID uuid.UUID, cred *entity.VerificationCredential) bool {
	s, ok := i.live[productID]
	return ok && s.cred == cred && !cred.Consumed
}

func (i *Issuer) emit(ev Event) {
	i.listenersMu.RLock()
	listeners := make([]Listener, 0, len(i.listeners))
	for _, l := range i.listeners {
		listeners = append(listeners, l)
	}
	i.listenersMu.RUnlock()

	for _, l := range listeners {
		l(ev)
	}
}

func (i *Issuer) journalIssued(s *slot, code string) {
	if i.journal == nil {
		return
	}
	rec := repository.CredentialRecord{
		ProductID: s.cred.ProductID,
		SellerID:  s.owner,
		IssuedAt:  s.cred.IssuedAt,
		ExpiresAt: s.cred.ExpiresAt(),
	}
	journal := i.journal
	goroutine.SafeGo(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
		if err != nil {
			i.log().WithError(err).Warn("credential: не удалось захешировать код для журнала")
			return
		}
		rec.CodeHash = string(hash)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := journal.RecordIssued(ctx, rec); err != nil {
			i.log().WithError(err).WithField("product_id", rec.ProductID).Warn("credential: не удалось записать выдачу в журнал")
		}
	})
}

func (i *Issuer) journalClosed(cred *entity.VerificationCredential, kind repository.CredentialEventKind, at time.Time) {
	if i.journal == nil {
		return
	}
	journal := i.journal
	productID, issuedAt := cred.ProductID, cred.IssuedAt
	goroutine.SafeGo(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := journal.RecordClosed(ctx, productID, issuedAt, kind, at); err != nil {
			i.log().WithError(err).WithField("product_id", productID).Warn("credential: не удалось обновить журнал")
		}
	})
}

func (i *Issuer) log() *logrus.Logger {
	return logger.L()
}
