package usecase

import (
	"context"
	"sort"

	"coupon-sync/internal/pkg/errs"
)

var ErrUnknownProvider = errs.New("unknown provider")

type connectionTester interface {
	Name() string
	TestConnection(ctx context.Context) bool
}

// ProviderUseCase exposes connectivity probes for every configured provider,
// keyed by name.
type ProviderUseCase struct {
	testers map[string]connectionTester
}

func NewProviderUseCase(networks []AffiliateNetwork, generator TextGenerator, shortener LinkShortener) *ProviderUseCase {
	testers := make(map[string]connectionTester)
	for _, n := range networks {
		testers[n.Name()] = n
	}
	if generator != nil {
		testers[generator.Name()] = generator
	}
	if shortener != nil {
		testers[shortener.Name()] = shortener
	}
	return &ProviderUseCase{testers: testers}
}

func (u *ProviderUseCase) Names() []string {
	names := make([]string, 0, len(u.testers))
	for name := range u.testers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Test probes one provider. ok reflects reachability with the configured
// credentials; an unknown name is the only error case.
func (u *ProviderUseCase) Test(ctx context.Context, name string) (bool, error) {
	tester, found := u.testers[name]
	if !found {
		return false, ErrUnknownProvider
	}
	return tester.TestConnection(ctx), nil
}
