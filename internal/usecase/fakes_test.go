//go:build unit

package usecase_test

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"coupon-sync/internal/domain/brand"
	"coupon-sync/internal/domain/coupon"
	"coupon-sync/internal/domain/notification"
	"coupon-sync/internal/domain/offer"
	"coupon-sync/internal/domain/syncrun"
	"coupon-sync/internal/infra"

	"github.com/google/uuid"
)

// In-memory fakes implementing the usecase ports, mirroring the semantics of
// the Postgres repositories closely enough for behavioral tests.

type fakeBrandRepo struct {
	brands    []*brand.Brand
	createErr error
}

func (f *fakeBrandRepo) FindByName(_ context.Context, name string) (*brand.Brand, error) {
	for _, b := range f.brands {
		if strings.EqualFold(b.Name, name) {
			return b, nil
		}
	}
	return nil, infra.WrapRepoErr("brand not found", nil, infra.KindNotFound)
}

func (f *fakeBrandRepo) Create(_ context.Context, b *brand.Brand) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.brands = append(f.brands, b)
	return nil
}

func (f *fakeBrandRepo) UpdateContent(_ context.Context, id uuid.UUID, description, whyWeLove *string, hashtags []string) error {
	for _, b := range f.brands {
		if b.ID == id {
			if description != nil {
				b.Description = description
			}
			if whyWeLove != nil {
				b.WhyWeLove = whyWeLove
			}
			if len(hashtags) > 0 {
				b.Hashtags = hashtags
			}
			return nil
		}
	}
	return infra.WrapRepoErr("brand not found", nil, infra.KindNotFound)
}

func (f *fakeBrandRepo) needingContent() []*brand.Brand {
	var out []*brand.Brand
	for _, b := range f.brands {
		if b.NeedsContent() {
			out = append(out, b)
		}
	}
	return out
}

func (f *fakeBrandRepo) ListNeedingContent(_ context.Context, offset, limit int) ([]brand.Brand, error) {
	needing := f.needingContent()
	var out []brand.Brand
	for i := offset; i < len(needing) && len(out) < limit; i++ {
		out = append(out, *needing[i])
	}
	return out, nil
}

func (f *fakeBrandRepo) CountNeedingContent(_ context.Context) (int, error) {
	return len(f.needingContent()), nil
}

type fakeCouponRepo struct {
	coupons   []coupon.Coupon
	createdAt time.Time
}

func (f *fakeCouponRepo) add(c coupon.Coupon) {
	if f.createdAt.IsZero() {
		f.createdAt = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	}
	f.createdAt = f.createdAt.Add(time.Minute)
	c.CreatedAt = f.createdAt
	c.UpdatedAt = f.createdAt
	f.coupons = append(f.coupons, c)
}

func (f *fakeCouponRepo) FindBySource(_ context.Context, source, sourceID string) (*coupon.Coupon, error) {
	for i := range f.coupons {
		if f.coupons[i].Source == source && f.coupons[i].SourceID == sourceID {
			c := f.coupons[i]
			return &c, nil
		}
	}
	return nil, infra.WrapRepoErr("coupon not found", nil, infra.KindNotFound)
}

func (f *fakeCouponRepo) Create(_ context.Context, c *coupon.Coupon) error {
	for i := range f.coupons {
		if f.coupons[i].Source == c.Source && f.coupons[i].SourceID == c.SourceID {
			return infra.WrapRepoErr("coupon already exists", nil, infra.KindDuplicateKey)
		}
	}
	f.add(*c)
	return nil
}

func (f *fakeCouponRepo) UpdateDetails(_ context.Context, id uuid.UUID, terms string, expiresAt *time.Time) error {
	for i := range f.coupons {
		if f.coupons[i].ID == id {
			f.coupons[i].Terms = terms
			f.coupons[i].ExpiresAt = expiresAt
			return nil
		}
	}
	return infra.WrapRepoErr("coupon not found", nil, infra.KindNotFound)
}

func (f *fakeCouponRepo) UpdateURL(_ context.Context, id uuid.UUID, url string) error {
	for i := range f.coupons {
		if f.coupons[i].ID == id {
			f.coupons[i].URL = url
			return nil
		}
	}
	return infra.WrapRepoErr("coupon not found", nil, infra.KindNotFound)
}

func (f *fakeCouponRepo) ListAll(_ context.Context) ([]coupon.Coupon, error) {
	out := make([]coupon.Coupon, len(f.coupons))
	copy(out, f.coupons)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeCouponRepo) DeleteByIDs(_ context.Context, ids []uuid.UUID) (int64, error) {
	doomed := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		doomed[id] = true
	}

	var kept []coupon.Coupon
	var removed int64
	for _, c := range f.coupons {
		if doomed[c.ID] {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	f.coupons = kept
	return removed, nil
}

func (f *fakeCouponRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var kept []coupon.Coupon
	var removed int64
	for _, c := range f.coupons {
		if c.ExpiresAt != nil && c.ExpiresAt.Before(now) {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	f.coupons = kept
	return removed, nil
}

func (f *fakeCouponRepo) find(id uuid.UUID) *coupon.Coupon {
	for i := range f.coupons {
		if f.coupons[i].ID == id {
			return &f.coupons[i]
		}
	}
	return nil
}

// fakeRunStateRepo keeps the single guard row in memory with the same
// compare-and-set transitions the Postgres implementation uses. Setting
// stopAtProcessed makes UpdateProgress flip the status to stop_requested once
// the counter reaches it, simulating an operator stopping a run mid-flight.
type fakeRunStateRepo struct {
	state           syncrun.State
	stopAtProcessed int
}

func newFakeRunStateRepo() *fakeRunStateRepo {
	return &fakeRunStateRepo{state: syncrun.State{Status: syncrun.StatusIdle}}
}

func (f *fakeRunStateRepo) Get(_ context.Context) (*syncrun.State, error) {
	st := f.state
	return &st, nil
}

func (f *fakeRunStateRepo) TryAcquire(_ context.Context, runID uuid.UUID, actor syncrun.Actor, now time.Time) (bool, error) {
	if !f.state.Status.CanStart() {
		return false, nil
	}
	f.state.Status = syncrun.StatusRunning
	f.state.RunID = &runID
	f.state.Actor = actor
	f.state.StartedAt = &now
	if actor.IsSync() {
		f.state.Processed = 0
		f.state.Failed = 0
	}
	if actor == syncrun.ActorManual {
		f.state.LastManualAt = &now
	}
	return true, nil
}

func (f *fakeRunStateRepo) RequestStop(_ context.Context) (bool, error) {
	switch f.state.Status {
	case syncrun.StatusRunning, syncrun.StatusStopRequested:
		f.state.Status = syncrun.StatusStopRequested
		return true, nil
	default:
		return false, nil
	}
}

func (f *fakeRunStateRepo) Status(_ context.Context) (syncrun.Status, error) {
	return f.state.Status, nil
}

func (f *fakeRunStateRepo) UpdateProgress(_ context.Context, runID uuid.UUID, processed, failed int) error {
	if f.state.RunID == nil || *f.state.RunID != runID {
		return nil
	}
	if f.state.Actor.IsSync() {
		f.state.Processed = processed
		f.state.Failed = failed
	}
	if f.stopAtProcessed > 0 && processed >= f.stopAtProcessed && f.state.Status == syncrun.StatusRunning {
		f.state.Status = syncrun.StatusStopRequested
	}
	return nil
}

func (f *fakeRunStateRepo) Finish(_ context.Context, runID uuid.UUID, stats syncrun.Stats, now time.Time, completed bool) error {
	if f.state.RunID == nil || *f.state.RunID != runID {
		return nil
	}
	sync := f.state.Actor.IsSync()
	f.state.Status = syncrun.StatusIdle
	f.state.RunID = nil
	f.state.Actor = ""
	f.state.StartedAt = nil
	if sync {
		f.state.Processed = stats.Processed
		f.state.Failed = stats.Failed
		f.state.LastRunAt = &now
		if completed {
			f.state.LastSuccessAt = &now
		}
	}
	return nil
}

type fakeNotificationRepo struct {
	entries []notification.Notification
}

func (f *fakeNotificationRepo) Append(_ context.Context, kind notification.Kind, payload json.RawMessage) error {
	f.entries = append(f.entries, notification.Notification{
		ID:      uuid.New(),
		Kind:    kind,
		Payload: payload,
	})
	return nil
}

func (f *fakeNotificationRepo) ListRecent(_ context.Context, limit int) ([]notification.Notification, error) {
	out := make([]notification.Notification, len(f.entries))
	copy(out, f.entries)
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, id uuid.UUID) error {
	for i := range f.entries {
		if f.entries[i].ID == id {
			f.entries[i].Read = true
			return nil
		}
	}
	return infra.WrapRepoErr("notification not found", nil, infra.KindNotFound)
}

func (f *fakeNotificationRepo) kinds() []notification.Kind {
	out := make([]notification.Kind, 0, len(f.entries))
	for _, n := range f.entries {
		out = append(out, n.Kind)
	}
	return out
}

func (f *fakeNotificationRepo) countKind(kind notification.Kind) int {
	var n int
	for _, e := range f.entries {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

type fakeNetwork struct {
	name   string
	offers []offer.Raw
	err    error
	calls  int
}

func (f *fakeNetwork) Name() string { return f.name }

func (f *fakeNetwork) ListOffers(_ context.Context) ([]offer.Raw, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.offers, nil
}

func (f *fakeNetwork) TestConnection(_ context.Context) bool { return f.err == nil }

type fakeGenerator struct {
	text  string
	err   error
	calls int
}

func (f *fakeGenerator) Name() string { return "textgen" }

func (f *fakeGenerator) Generate(_ context.Context, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func (f *fakeGenerator) TestConnection(_ context.Context) bool { return f.err == nil }

type fakeShortener struct {
	err   error
	calls int
}

func (f *fakeShortener) Name() string { return "shortener" }

func (f *fakeShortener) Shorten(_ context.Context, longURL, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "https://sho.rt/" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(longURL)).String()[:8], nil
}

func (f *fakeShortener) TestConnection(_ context.Context) bool { return f.err == nil }
