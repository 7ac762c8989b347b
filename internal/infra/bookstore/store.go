// Package bookstore persists book records in the local SQLite store.
package bookstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"booklister/internal/domain/book"
	"booklister/internal/infra"
	"booklister/internal/pkg/errs"
)

type Store struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func New(db *sqlx.DB, logger *slog.Logger) *Store {
	return &Store{db: db, logger: logger}
}

type bookRow struct {
	ID             string  `db:"id"`
	Title          string  `db:"title"`
	AITitle        string  `db:"ai_title"`
	Description    string  `db:"description"`
	Author         string  `db:"author"`
	Publisher      string  `db:"publisher"`
	Year           string  `db:"year"`
	Language       string  `db:"language"`
	Edition        string  `db:"edition"`
	Format         string  `db:"format"`
	Series         string  `db:"series"`
	ConditionGrade string  `db:"condition_grade"`
	Price          string  `db:"price"`
	Quantity       int     `db:"quantity"`
	Specifics      string  `db:"specifics"`
	WeightPounds   float64 `db:"weight_pounds"`
	WeightOunces   float64 `db:"weight_ounces"`
	EbayCategoryID string  `db:"ebay_category_id"`
	SKU            string  `db:"sku"`
	EbayOfferID    string  `db:"ebay_offer_id"`
	EbayListingID  string  `db:"ebay_listing_id"`
	PublishStatus  string  `db:"publish_status"`
}

const bookColumns = `id, title, ai_title, description, author, publisher, year, language,
	edition, format, series, condition_grade, price, quantity, specifics,
	weight_pounds, weight_ounces, ebay_category_id, sku, ebay_offer_id,
	ebay_listing_id, publish_status`

func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*book.BookRecord, error) {
	var row bookRow
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = ?`
	if err := s.db.GetContext(ctx, &row, query, id.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.Wrap(errs.ErrBookNotFound, id.String())
		}
		return nil, infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to load book", err)
	}

	var paths []string
	imgQuery := `SELECT path FROM book_images WHERE book_id = ? ORDER BY position`
	if err := s.db.SelectContext(ctx, &paths, imgQuery, id.String()); err != nil {
		return nil, infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to load book images", err)
	}

	return rowToDomain(&row, paths)
}

// Save upserts a full book record, replacing its image list.
func (s *Store) Save(ctx context.Context, b *book.BookRecord) error {
	specifics, err := json.Marshal(b.Specifics)
	if err != nil {
		return errs.Wrap(err, "failed to encode specifics")
	}
	if b.Specifics == nil {
		specifics = []byte("{}")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to begin transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO books (id, title, ai_title, description, author, publisher, year, language,
			edition, format, series, condition_grade, price, quantity, specifics,
			weight_pounds, weight_ounces, ebay_category_id, sku, ebay_offer_id,
			ebay_listing_id, publish_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title, ai_title = excluded.ai_title,
			description = excluded.description, author = excluded.author,
			publisher = excluded.publisher, year = excluded.year,
			language = excluded.language, edition = excluded.edition,
			format = excluded.format, series = excluded.series,
			condition_grade = excluded.condition_grade, price = excluded.price,
			quantity = excluded.quantity, specifics = excluded.specifics,
			weight_pounds = excluded.weight_pounds, weight_ounces = excluded.weight_ounces,
			ebay_category_id = excluded.ebay_category_id, sku = excluded.sku,
			ebay_offer_id = excluded.ebay_offer_id, ebay_listing_id = excluded.ebay_listing_id,
			publish_status = excluded.publish_status,
			updated_at = datetime('now')`,
		b.ID.String(), b.Title, b.AITitle, b.Description, b.Author, b.Publisher, b.Year,
		b.Language, b.Edition, b.Format, b.Series, b.Condition.String(), b.Price, b.Quantity,
		string(specifics), b.WeightPounds, b.WeightOunces, b.CategoryID, b.SKU,
		b.OfferID, b.ListingID, b.PublishStatus.String())
	if err != nil {
		return infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to upsert book", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM book_images WHERE book_id = ?`, b.ID.String()); err != nil {
		return infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to clear book images", err)
	}
	for i, path := range b.ImagePaths {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO book_images (book_id, position, path) VALUES (?, ?, ?)`,
			b.ID.String(), i, path)
		if err != nil {
			return infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to insert book image", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to commit book save", err)
	}
	return nil
}

// SavePublishState records the marketplace identifiers without touching
// the rest of the record.
func (s *Store) SavePublishState(ctx context.Context, id uuid.UUID, state book.PublishState) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE books SET
			sku = ?, ebay_category_id = ?, ebay_offer_id = ?, ebay_listing_id = ?,
			publish_status = ?, updated_at = datetime('now')
		WHERE id = ?`,
		state.SKU, state.CategoryID, state.OfferID, state.ListingID,
		state.Status.String(), id.String())
	if err != nil {
		return infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to save publish state", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to read affected rows", err)
	}
	if affected == 0 {
		return errs.Wrap(errs.ErrBookNotFound, id.String())
	}
	return nil
}

func rowToDomain(row *bookRow, imagePaths []string) (*book.BookRecord, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, errs.Wrap(err, "invalid book id in store")
	}

	var specifics map[string]any
	if row.Specifics != "" {
		if err := json.Unmarshal([]byte(row.Specifics), &specifics); err != nil {
			return nil, errs.Wrap(err, "invalid specifics json in store")
		}
	}

	return &book.BookRecord{
		ID:            id,
		Title:         row.Title,
		AITitle:       row.AITitle,
		Description:   row.Description,
		Author:        row.Author,
		Publisher:     row.Publisher,
		Year:          row.Year,
		Language:      row.Language,
		Edition:       row.Edition,
		Format:        row.Format,
		Series:        row.Series,
		Condition:     book.ConditionGrade(row.ConditionGrade),
		Price:         row.Price,
		Quantity:      row.Quantity,
		Specifics:     specifics,
		WeightPounds:  row.WeightPounds,
		WeightOunces:  row.WeightOunces,
		CategoryID:    row.EbayCategoryID,
		ImagePaths:    imagePaths,
		SKU:           row.SKU,
		OfferID:       row.EbayOfferID,
		ListingID:     row.EbayListingID,
		PublishStatus: book.PublishStatus(row.PublishStatus),
	}, nil
}
