package form

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/marketplace-listings/internal/credential"
	"github.com/ignatzorin/marketplace-listings/internal/domain/entity"
	"github.com/ignatzorin/marketplace-listings/internal/payment"
	"github.com/ignatzorin/marketplace-listings/internal/pkg/clock"
	"github.com/ignatzorin/marketplace-listings/internal/usecase/listing"
)

// CredentialIssuer - часть эмитента кодов, нужная форме.
type CredentialIssuer interface {
	Issue(productID uuid.UUID, opts ...credential.IssueOption) (entity.VerificationCredential, error)
	Consume(productID uuid.UUID, code string) bool
	Display(productID uuid.UUID) (credential.Display, bool)
	Release(productID uuid.UUID)
	Subscribe(l credential.Listener) func()
}

// ProductCreator создаёт товар после погашения кода.
type ProductCreator interface {
	Execute(ctx context.Context, input listing.CreateProductInput) (*entity.Product, error)
}

// Categories - реестр категорий для валидации и списка подкатегорий.
type Categories interface {
	entity.CategoryChecker
	Subcategories(primary string) []string
}

// Notifier доставляет события формы продавцу (WebSocket).
type Notifier interface {
	PublishToSeller(sellerID uuid.UUID, event string, data any)
}

type Deps struct {
	Issuer     CredentialIssuer
	Payment    payment.Acknowledger
	Creator    ProductCreator
	Categories Categories
	Clock      clock.Clock
}
