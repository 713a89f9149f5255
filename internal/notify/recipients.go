package notify

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"chantierplus/internal/models"
)

// OwnerLister — владельцы компании в стабильном порядке.
type OwnerLister interface {
	Owners(ctx context.Context, companyID uuid.UUID) ([]models.UserProfile, error)
}

type Resolver struct {
	owners OwnerLister
}

func NewResolver(owners OwnerLister) *Resolver { return &Resolver{owners: owners} }

// Resolve: контакт объекта, автор, затем все OWNER компании; без повторов.
// Если список владельцев не получен, возвращает контакт и автора вместе с ошибкой.
func (r *Resolver) Resolve(ctx context.Context, c *models.Chantier, actor *models.UserProfile, company *models.Company) ([]string, error) {
	owners, err := r.owners.Owners(ctx, company.ID)
	list := make([]string, 0, len(owners)+2)
	list = append(list, c.ContactEmail, actor.Email)
	for _, o := range owners {
		list = append(list, o.Email)
	}
	return Unique(list...), err
}

// Unique убирает пустые и повторные адреса (без учёта регистра), сохраняя порядок.
func Unique(addrs ...string) []string {
	seen := make(map[string]struct{}, len(addrs))
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		k := strings.ToLower(a)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, a)
	}
	return out
}
