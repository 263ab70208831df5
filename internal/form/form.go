package form

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/marketplace-listings/internal/credential"
	"github.com/ignatzorin/marketplace-listings/internal/domain/entity"
	"github.com/ignatzorin/marketplace-listings/internal/logger"
	"github.com/ignatzorin/marketplace-listings/internal/pkg/apperror"
	"github.com/ignatzorin/marketplace-listings/internal/usecase/listing"
	"github.com/ignatzorin/marketplace-listings/internal/validation"
)

var errSubmitInProgress = apperror.New(apperror.ErrCodeConflict, "товар уже отправляется")

// Form - открытая продавцом форма размещения товара.
// productID выделяется при открытии: к нему привязывается код,
// и с ним же создаётся товар.
//
// Блокировка формы никогда не удерживается во время вызовов эмитента,
// которые рассылают события (Issue, Consume, Release).
type Form struct {
	mu sync.Mutex

	id        uuid.UUID
	sellerID  uuid.UUID
	productID uuid.UUID
	draft     entity.ListingDraft

	issuing          bool
	submitting       bool
	credentialActive bool
	closed           bool
	lastActivity     time.Time

	deps   Deps
	rebind func(f *Form, oldProductID, newProductID uuid.UUID)
}

func newForm(sellerID uuid.UUID, deps Deps) *Form {
	return &Form{
		id:           uuid.New(),
		sellerID:     sellerID,
		productID:    uuid.New(),
		deps:         deps,
		lastActivity: deps.Clock.Now(),
	}
}

func (f *Form) ID() uuid.UUID { return f.id }
func (f *Form) SellerID() uuid.UUID { return f.sellerID }

func (f *Form) ProductID() uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.productID
}

func (f *Form) touch() {
	f.lastActivity = f.deps.Clock.Now()
}

func (f *Form) ensureOpen() error {
	if f.closed {
		return apperror.ErrFormNotFound
	}
	return nil
}

// Apply меняет поля черновика; смена основной категории сбрасывает подкатегорию.
// code, если передан, заменяет введённый код.
func (f *Form) Apply(patch entity.ListingPatch, code *string) (State, error) {
	f.mu.Lock()
	if err := f.ensureOpen(); err != nil {
		f.mu.Unlock()
		return State{}, err
	}
	f.draft.Apply(patch)
	if code != nil {
		f.draft.EnteredCode = *code
	}
	f.touch()
	f.mu.Unlock()

	return f.State(), nil
}

// SelectPrimaryCategory выбирает основную категорию отдельно от остальных полей.
func (f *Form) SelectPrimaryCategory(primary string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.ensureOpen(); err != nil {
		return err
	}
	f.draft.SelectPrimaryCategory(primary)
	f.touch()
	return nil
}

// EnterCode запоминает код, введённый продавцом.
func (f *Form) EnterCode(code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.ensureOpen(); err != nil {
		return err
	}
	f.draft.EnteredCode = code
	f.touch()
	return nil
}

// AcknowledgePayment подтверждает оплату и выдаёт код для товара формы.
// Одновременно выполняется не больше одного подтверждения: повторный вызов
// получает конфликт. Пока товар отправляется, подтверждение тоже отклоняется.
// Если оплата не подтверждена, код не выдаётся.
func (f *Form) AcknowledgePayment(ctx context.Context) (credential.Display, error) {
	f.mu.Lock()
	if err := f.ensureOpen(); err != nil {
		f.mu.Unlock()
		return credential.Display{}, err
	}
	if f.issuing {
		f.mu.Unlock()
		return credential.Display{}, apperror.ErrIssuanceInProgress
	}
	if f.submitting {
		f.mu.Unlock()
		return credential.Display{}, errSubmitInProgress
	}
	f.issuing = true
	f.touch()
	productID := f.productID
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.issuing = false
		f.mu.Unlock()
	}()

	if err := f.deps.Payment.Acknowledge(ctx, f.sellerID, productID); err != nil {
		f.log().WithError(err).Warn("form: оплата не подтверждена")
		return credential.Display{}, apperror.Wrap(err, apperror.ErrCodeBadRequest, apperror.ErrPaymentNotConfirmed.Message)
	}

	f.mu.Lock()
	closed := f.closed
	f.mu.Unlock()
	if closed {
		return credential.Display{}, apperror.ErrFormNotFound
	}

	if _, err := f.deps.Issuer.Issue(productID, credential.Owner(f.sellerID)); err != nil {
		return credential.Display{}, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось выдать код подтверждения")
	}

	f.mu.Lock()
	f.credentialActive = true
	f.draft.EnteredCode = ""
	f.mu.Unlock()

	display, ok := f.deps.Issuer.Display(productID)
	if !ok {
		return credential.Display{}, apperror.ErrCredentialRejected
	}
	return display, nil
}

// Credential возвращает живой код и остаток времени.
func (f *Form) Credential() (credential.Display, bool) {
	return f.deps.Issuer.Display(f.ProductID())
}

// CanSubmit: поля валидны и введённый код совпадает с живым кодом товара.
// Окончательная проверка выполняется только в Submit через Consume.
func (f *Form) CanSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.canSubmitLocked()
}

func (f *Form) canSubmitLocked() bool {
	if f.closed || f.submitting || f.issuing || !f.credentialActive {
		return false
	}
	if !validation.IsCredentialCodeFormat(f.draft.EnteredCode) {
		return false
	}
	if len(f.draft.Validate(f.deps.Categories)) > 0 {
		return false
	}
	display, ok := f.deps.Issuer.Display(f.productID)
	return ok && subtle.ConstantTimeCompare([]byte(display.Code), []byte(f.draft.EnteredCode)) == 1
}

// Submit проверяет поля, гасит код и создаёт товар в статусе черновика.
// После успеха форма очищается и получает новый productID.
func (f *Form) Submit(ctx context.Context) (*entity.Product, error) {
	f.mu.Lock()
	if err := f.ensureOpen(); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	if f.submitting {
		f.mu.Unlock()
		return nil, errSubmitInProgress
	}
	if f.issuing {
		f.mu.Unlock()
		return nil, apperror.ErrIssuanceInProgress
	}

	if errs := f.draft.Validate(f.deps.Categories); len(errs) > 0 {
		f.mu.Unlock()
		return nil, apperror.Validation(errs)
	}
	if !validation.IsCredentialCodeFormat(f.draft.EnteredCode) {
		f.mu.Unlock()
		return nil, apperror.Validation(apperror.FieldErrors{entity.FieldCode: "введите шестизначный код"})
	}

	f.submitting = true
	f.touch()
	productID := f.productID
	fields := f.draft.ListingFields.Normalize()
	code := f.draft.EnteredCode
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.submitting = false
		f.mu.Unlock()
	}()

	if !f.deps.Issuer.Consume(productID, code) {
		return nil, apperror.ErrCredentialRejected
	}

	product, err := f.deps.Creator.Execute(ctx, listing.CreateProductInput{
		ProductID: productID,
		SellerID:  f.sellerID,
		Fields:    fields,
	})

	f.mu.Lock()
	f.credentialActive = false
	f.draft.EnteredCode = ""
	if err != nil {
		f.mu.Unlock()
		f.log().WithError(err).WithField("product_id", productID).Error("form: код погашен, но товар не создан")
		return nil, err
	}

	f.draft.Reset()
	f.productID = uuid.New()
	newProductID := f.productID
	rebind := f.rebind
	f.mu.Unlock()

	if rebind != nil {
		rebind(f, productID, newProductID)
	}

	f.log().WithField("product_id", product.ID).Info("form: товар создан")
	return product, nil
}

// onCredentialEvent обновляет форму по событию эмитента.
func (f *Form) onCredentialEvent(ev credential.Event) {
	if ev.Type != credential.EventExpired {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if ev.ProductID != f.productID {
		return
	}
	// Событие могло обогнать новую выдачу для того же товара.
	if _, live := f.deps.Issuer.Display(f.productID); live {
		return
	}
	f.draft.EnteredCode = ""
	f.credentialActive = false
}

// Close закрывает форму и снимает код без каких-либо изменений товаров.
func (f *Form) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	f.credentialActive = false
	productID := f.productID
	f.mu.Unlock()

	f.deps.Issuer.Release(productID)
}

func (f *Form) idleSince() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastActivity
}

func (f *Form) log() *logrus.Entry {
	return logger.L().WithFields(logrus.Fields{
		"form_id":   f.id,
		"seller_id": f.sellerID,
	})
}
