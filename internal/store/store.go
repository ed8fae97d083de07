// internal/store/store.go
//
// MySQL-backed catalog persistence.
//
// Context
// -------
// Store is the catalog.Source the storefront loads from, plus the write
// path the admin API uses.  Reads return rows in insertion order
// (created_at, then id), which is the order the resolver uses to break
// slug ties.
//
// Notes
// -----
// • Writes persist the effective slug, so the (category, slug) and slug
//   unique keys guard against a second entity claiming the same path.  A
//   duplicate-key error surfaces as catalog.ErrSlugTaken.
// • IDs are UUIDv4 strings assigned here when the caller leaves them empty.
// • Oxford commas, two spaces after periods.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/productpraat/internal/catalog"
)

// MySQL error numbers the store translates.
const (
	errDupEntry        = 1062
	errNoReferencedRow = 1452
)

// Store wraps a *sqlx.DB.  Safe for concurrent use.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// New returns a Store over db.
func New(db *sqlx.DB) *Store {
	return &Store{db: db, now: func() time.Time { return time.Now().UTC().Truncate(time.Second) }}
}

// Migrate applies Schema.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range Schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store: migrate: %w", err)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// Reads
// -----------------------------------------------------------------------------

const (
	productCols = `id, brand, model, category, score, price, slug, ean, summary,
	               images, pros, cons, affiliate_link, created_at, updated_at`
	articleCols = `id, title, category, type, slug, summary, body, author, image_url,
	               created_at, updated_at`
	reviewCols = `id, product_id, author, rating, title, body, created_at`
)

// ListProducts returns every product.
func (s *Store) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	var out []catalog.Product
	err := s.db.SelectContext(ctx, &out,
		`SELECT `+productCols+` FROM products ORDER BY created_at, id`)
	return out, err
}

// ListArticles returns every article.
func (s *Store) ListArticles(ctx context.Context) ([]catalog.Article, error) {
	var out []catalog.Article
	err := s.db.SelectContext(ctx, &out,
		`SELECT `+articleCols+` FROM articles ORDER BY created_at, id`)
	return out, err
}

// ListReviews returns every review.
func (s *Store) ListReviews(ctx context.Context) ([]catalog.Review, error) {
	var out []catalog.Review
	err := s.db.SelectContext(ctx, &out,
		`SELECT `+reviewCols+` FROM reviews ORDER BY created_at, id`)
	return out, err
}

// -----------------------------------------------------------------------------
// Writes
// -----------------------------------------------------------------------------

// AddProduct inserts p and returns it with id, slug, and timestamps set.
func (s *Store) AddProduct(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	if _, ok := catalog.LookupCategory(p.Category); !ok {
		return p, fmt.Errorf("%w: %q", catalog.ErrUnknownCategory, p.Category)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.Slug = p.EffectiveSlug()
	p.CreatedAt = s.now()
	p.UpdatedAt = p.CreatedAt

	_, err := s.db.NamedExecContext(ctx, `INSERT INTO products (`+productCols+`)
		VALUES (:id, :brand, :model, :category, :score, :price, :slug, :ean, :summary,
		        :images, :pros, :cons, :affiliate_link, :created_at, :updated_at)`, p)
	if err != nil {
		return p, translate("add product", err)
	}
	return p, nil
}

// RemoveProduct deletes a product; its reviews go with it.
func (s *Store) RemoveProduct(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM reviews WHERE product_id = ?`, id); err != nil {
		return translate("remove product reviews", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return translate("remove product", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("remove product %s: %w", id, catalog.ErrNotFound)
	}
	return tx.Commit()
}

// AddReview inserts r.  An unknown product yields catalog.ErrNotFound.
func (s *Store) AddReview(ctx context.Context, r catalog.Review) (catalog.Review, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.CreatedAt = s.now()
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO reviews (`+reviewCols+`)
		VALUES (:id, :product_id, :author, :rating, :title, :body, :created_at)`, r)
	if err != nil {
		return r, translate("add review", err)
	}
	return r, nil
}

// SaveArticle inserts a new article (empty ID) or updates an existing one.
func (s *Store) SaveArticle(ctx context.Context, a catalog.Article) (catalog.Article, error) {
	if _, err := catalog.ParseArticleType(string(a.Type)); err != nil {
		return a, err
	}
	now := s.now()
	a.UpdatedAt = now

	if a.ID == "" {
		a.ID = uuid.NewString()
		a.Slug = a.EffectiveSlug()
		a.CreatedAt = now
		_, err := s.db.NamedExecContext(ctx, `INSERT INTO articles (`+articleCols+`)
			VALUES (:id, :title, :category, :type, :slug, :summary, :body, :author, :image_url,
			        :created_at, :updated_at)`, a)
		if err != nil {
			return a, translate("insert article", err)
		}
		return a, nil
	}

	a.Slug = a.EffectiveSlug()
	_, err := s.db.NamedExecContext(ctx, `UPDATE articles
		   SET title = :title, category = :category, type = :type, slug = :slug,
		       summary = :summary, body = :body, author = :author, image_url = :image_url,
		       updated_at = :updated_at
		 WHERE id = :id`, a)
	if err != nil {
		return a, translate("update article", err)
	}
	return a, nil
}

// DeleteArticle removes an article.
func (s *Store) DeleteArticle(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, id)
	if err != nil {
		return translate("delete article", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete article %s: %w", id, catalog.ErrNotFound)
	}
	return nil
}

// RecordClick logs one outbound affiliate click.
func (s *Store) RecordClick(ctx context.Context, productID, source, country string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO affiliate_clicks (product_id, source, country, clicked_at) VALUES (?, ?, ?, ?)`,
		productID, source, country, s.now())
	if err != nil {
		return translate("record click", err)
	}
	return nil
}

// ClickCounts returns clicks per product at or after since.
func (s *Store) ClickCounts(ctx context.Context, since time.Time) (map[string]int, error) {
	rows, err := s.db.QueryxContext(ctx,
		`SELECT product_id, COUNT(*) FROM affiliate_clicks WHERE clicked_at >= ? GROUP BY product_id`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}

// translate maps driver errors onto catalog sentinels.
func translate(op string, err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case errDupEntry:
			return fmt.Errorf("%s: %w", op, catalog.ErrSlugTaken)
		case errNoReferencedRow:
			return fmt.Errorf("%s: %w", op, catalog.ErrNotFound)
		}
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, catalog.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
