package upload

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/talkincode/storebuilder/internal/domain"
)

// Service applies submitted forms to the product repository.
type Service struct {
	repo     ProductRepository
	pageSize int
	nextID   func() int64
}

// NewService creates an upload service. pageSize <= 0 selects DefaultPageSize.
func NewService(repo ProductRepository, pageSize int, nextID func() int64) *Service {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Service{repo: repo, pageSize: pageSize, nextID: nextID}
}

// PageSize is the listing page size.
func (s *Service) PageSize() int {
	return s.pageSize
}

// Submit creates a record from the form, or replaces the edited record in
// place. The form is reset only when the record was saved.
func (s *Service) Submit(ctx context.Context, sessionID string, f *Form) (*domain.UploadProduct, error) {
	rec, err := f.Build()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	p := &domain.UploadProduct{
		SessionID:   sessionID,
		Name:        rec.Name,
		Price:       rec.Price,
		Image:       rec.Image,
		Description: rec.Description,
		Stock:       rec.Stock,
		Supplier:    rec.Supplier,
		Variations:  rec.Variations,
		UpdatedAt:   now,
	}
	if id := f.EditingID(); id != 0 {
		existing, err := s.repo.Get(ctx, sessionID, id)
		if err != nil {
			return nil, err
		}
		p.ID = id
		p.CreatedAt = existing.CreatedAt
		if err := s.repo.Update(ctx, p); err != nil {
			return nil, errors.Wrap(err, "update product")
		}
		zap.L().Debug("upload product updated", zap.String("session", sessionID), zap.Int64("id", id))
	} else {
		p.ID = s.nextID()
		p.CreatedAt = now
		if err := s.repo.Create(ctx, p); err != nil {
			return nil, errors.Wrap(err, "create product")
		}
		zap.L().Debug("upload product created", zap.String("session", sessionID), zap.Int64("id", p.ID))
	}
	f.Reset()
	return p, nil
}

// Edit loads a stored record into the form.
func (s *Service) Edit(ctx context.Context, sessionID string, id int64, f *Form) (*domain.UploadProduct, error) {
	p, err := s.repo.Get(ctx, sessionID, id)
	if err != nil {
		return nil, err
	}
	f.Load(*p)
	return p, nil
}

// CancelEdit drops the edit and clears the form.
func (s *Service) CancelEdit(f *Form) error {
	if f.EditingID() == 0 {
		return ErrNotEditing
	}
	f.Reset()
	return nil
}

// Delete removes a record. A form editing that record is reset.
func (s *Service) Delete(ctx context.Context, sessionID string, id int64, f *Form) error {
	if err := s.repo.Delete(ctx, sessionID, id); err != nil {
		return err
	}
	if f != nil && f.EditingID() == id {
		f.Reset()
	}
	return nil
}

// List returns one page of the session's records; out-of-range pages are
// clamped.
func (s *Service) List(ctx context.Context, sessionID string, page int) ([]domain.UploadProduct, Page, error) {
	total, err := s.repo.Count(ctx, sessionID)
	if err != nil {
		return nil, Page{}, errors.Wrap(err, "count products")
	}
	pg := Paginate(total, page, s.pageSize)
	rows, err := s.repo.List(ctx, sessionID, pg.Offset(), pg.PageSize)
	if err != nil {
		return nil, Page{}, errors.Wrap(err, "list products")
	}
	return rows, pg, nil
}

// Purge removes every record of a session.
func (s *Service) Purge(ctx context.Context, sessionID string) error {
	return s.repo.DeleteSession(ctx, sessionID)
}

type csvProduct struct {
	ID          int64   `csv:"id"`
	Name        string  `csv:"name"`
	Price       float64 `csv:"price"`
	Image       string  `csv:"image"`
	Description string  `csv:"description"`
	Stock       int     `csv:"stock"`
	Supplier    string  `csv:"supplier"`
	Variations  string  `csv:"variations"`
}

// ExportCSV writes every record of the session as CSV.
func (s *Service) ExportCSV(ctx context.Context, sessionID string, w io.Writer) error {
	total, err := s.repo.Count(ctx, sessionID)
	if err != nil {
		return errors.Wrap(err, "count products")
	}
	rows, err := s.repo.List(ctx, sessionID, 0, int(total))
	if err != nil {
		return errors.Wrap(err, "list products")
	}
	out := make([]*csvProduct, 0, len(rows))
	for _, p := range rows {
		out = append(out, &csvProduct{
			ID:          p.ID,
			Name:        p.Name,
			Price:       p.Price,
			Image:       p.Image,
			Description: p.Description,
			Stock:       p.Stock,
			Supplier:    p.Supplier,
			Variations:  strings.Join(p.Variations, "|"),
		})
	}
	return gocsv.Marshal(out, w)
}
