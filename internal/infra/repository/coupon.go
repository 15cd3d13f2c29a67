package repository

import (
	"context"
	"errors"
	"time"

	"coupon-sync/internal/domain/coupon"
	"coupon-sync/internal/infra"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CouponRepository struct {
	db *pgxpool.Pool
}

func NewCouponRepository(db *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{db: db}
}

const couponColumns = `id, brand_id, title, code, terms, url, source, source_id, expires_at, created_at, updated_at`

func scanCoupon(row pgx.Row) (*coupon.Coupon, error) {
	var c coupon.Coupon
	err := row.Scan(
		&c.ID, &c.BrandID, &c.Title, &c.Code, &c.Terms, &c.URL,
		&c.Source, &c.SourceID, &c.ExpiresAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CouponRepository) FindBySource(ctx context.Context, source, sourceID string) (*coupon.Coupon, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+couponColumns+` FROM coupons WHERE source = $1 AND source_id = $2`,
		source, sourceID)

	c, err := scanCoupon(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("coupon not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find coupon by source", err)
	}
	return c, nil
}

// Create inserts a coupon. The unique (source, source_id) constraint is the
// idempotency backstop: a concurrent insert of the same pair surfaces as
// DUPLICATE_KEY instead of a second row.
func (r *CouponRepository) Create(ctx context.Context, c *coupon.Coupon) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO coupons (id, brand_id, title, code, terms, url, source, source_id, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())`,
		c.ID, c.BrandID, c.Title, c.Code, c.Terms, c.URL, c.Source, c.SourceID, c.ExpiresAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return infra.WrapRepoErr("coupon already exists for source id", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to create coupon", err)
	}
	return nil
}

func (r *CouponRepository) UpdateDetails(ctx context.Context, id uuid.UUID, terms string, expiresAt *time.Time) error {
	_, err := r.db.Exec(ctx,
		`UPDATE coupons SET terms = $2, expires_at = $3, updated_at = now() WHERE id = $1`,
		id, terms, expiresAt,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update coupon details", err)
	}
	return nil
}

func (r *CouponRepository) UpdateURL(ctx context.Context, id uuid.UUID, url string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE coupons SET url = $2, updated_at = now() WHERE id = $1`,
		id, url,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update coupon url", err)
	}
	return nil
}

// ListAll returns every coupon ordered by creation time; the dedup engine
// groups them in memory.
func (r *CouponRepository) ListAll(ctx context.Context) ([]coupon.Coupon, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+couponColumns+` FROM coupons ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list coupons", err)
	}
	defer rows.Close()

	var coupons []coupon.Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan coupon row", err)
		}
		coupons = append(coupons, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate coupon rows", err)
	}
	return coupons, nil
}

func (r *CouponRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM coupons WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to delete coupons", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteExpired removes coupons whose expiry is strictly before now. Rows
// with a NULL expiry are non-expiring and never touched.
func (r *CouponRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM coupons WHERE expires_at IS NOT NULL AND expires_at < $1`, now)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to delete expired coupons", err)
	}
	return tag.RowsAffected(), nil
}
