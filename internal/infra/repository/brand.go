package repository

import (
	"context"
	"errors"

	"coupon-sync/internal/domain/brand"
	"coupon-sync/internal/infra"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BrandRepository struct {
	db *pgxpool.Pool
}

func NewBrandRepository(db *pgxpool.Pool) *BrandRepository {
	return &BrandRepository{db: db}
}

const brandColumns = `id, name, description, why_we_love, hashtags, featured_image, affiliate_url, popular, created_at, updated_at`

func scanBrand(row pgx.Row) (*brand.Brand, error) {
	var b brand.Brand
	err := row.Scan(
		&b.ID, &b.Name, &b.Description, &b.WhyWeLove, &b.Hashtags,
		&b.FeaturedImage, &b.AffiliateURL, &b.Popular, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// FindByName matches case-insensitively; offer feeds are inconsistent about
// brand name casing.
func (r *BrandRepository) FindByName(ctx context.Context, name string) (*brand.Brand, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+brandColumns+` FROM brands WHERE lower(name) = lower($1)`, name)

	b, err := scanBrand(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("brand not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find brand by name", err)
	}
	return b, nil
}

func (r *BrandRepository) Create(ctx context.Context, b *brand.Brand) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO brands (id, name, description, why_we_love, hashtags, featured_image, affiliate_url, popular, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())`,
		b.ID, b.Name, b.Description, b.WhyWeLove, b.Hashtags, b.FeaturedImage, b.AffiliateURL, b.Popular,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create brand", err)
	}
	return nil
}

// UpdateContent stores generated enrichment fields. Nil pointers and empty
// slices leave the corresponding column untouched, so a partially failed
// generation keeps whatever succeeded.
func (r *BrandRepository) UpdateContent(ctx context.Context, id uuid.UUID, description, whyWeLove *string, hashtags []string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE brands SET
			description  = COALESCE($2, description),
			why_we_love  = COALESCE($3, why_we_love),
			hashtags     = CASE WHEN cardinality($4::text[]) > 0 THEN $4::text[] ELSE hashtags END,
			updated_at   = now()
		WHERE id = $1`,
		id, description, whyWeLove, hashtags,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update brand content", err)
	}
	return nil
}

const needsContentWhere = `description IS NULL OR why_we_love IS NULL OR cardinality(hashtags) = 0`

func (r *BrandRepository) ListNeedingContent(ctx context.Context, offset, limit int) ([]brand.Brand, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+brandColumns+` FROM brands
		WHERE `+needsContentWhere+`
		ORDER BY name ASC
		OFFSET $1 LIMIT $2`,
		offset, limit,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list brands needing content", err)
	}
	defer rows.Close()

	var brands []brand.Brand
	for rows.Next() {
		b, err := scanBrand(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan brand row", err)
		}
		brands = append(brands, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate brand rows", err)
	}
	return brands, nil
}

func (r *BrandRepository) CountNeedingContent(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM brands WHERE `+needsContentWhere).Scan(&count)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to count brands needing content", err)
	}
	return count, nil
}
