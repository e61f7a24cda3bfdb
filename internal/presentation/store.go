// Package presentation is the durable side of the system: presentations
// and their per-slide text and embeddings, kept in postgres with a
// qdrant mirror of the embedding vectors for similarity queries.
package presentation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"github.com/sunum-ai/copilot-backend/internal/shared"
	"gorm.io/gorm"
)

const slidesCollection = "slides"

type Store struct {
	db     *gorm.DB
	qdrant *qdrant.Client
}

func NewStore(db *gorm.DB, qdrantClient *qdrant.Client) *Store {
	return &Store{
		db:     db,
		qdrant: qdrantClient,
	}
}

func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&Presentation{}, &Slide{})
}

func (s *Store) Create(ctx context.Context, p *Presentation) error {
	if p.ID == "" {
		p.ID = shared.NewID("pres_")
	}
	return s.db.WithContext(ctx).Create(p).Error
}

func (s *Store) GetByID(ctx context.Context, id string) (*Presentation, error) {
	var p Presentation
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	return &p, err
}

func (s *Store) GetByOwner(ctx context.Context, ownerID string) ([]*Presentation, error) {
	var presentations []*Presentation
	err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).
		Order("created_at DESC").Find(&presentations).Error
	return presentations, err
}

// CanAccess reports whether a caller may open a presentation. Owners
// always can; guests only when the presentation allows them.
func (s *Store) CanAccess(ctx context.Context, id, userID string, isGuest bool) (bool, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if isGuest {
		return p.AllowGuests, nil
	}
	return p.OwnerID == userID, nil
}

// SaveSlides replaces a presentation's slide set and mirrors the
// embeddings into qdrant.
func (s *Store) SaveSlides(ctx context.Context, presentationID string, slides []*Slide) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&Slide{}, "presentation_id = ?", presentationID).Error; err != nil {
			return err
		}
		for _, slide := range slides {
			if slide.ID == "" {
				// Slide ids double as qdrant point ids, which must
				// be UUIDs.
				slide.ID = uuid.NewString()
			}
			slide.PresentationID = presentationID
			if err := tx.Create(slide).Error; err != nil {
				return err
			}
		}
		return tx.Model(&Presentation{}).Where("id = ?", presentationID).
			Update("slide_count", len(slides)).Error
	})
	if err != nil {
		return err
	}
	return s.mirrorEmbeddings(ctx, presentationID, slides)
}

// LoadSlides returns a presentation's slides ordered by page number.
// Embeddings come from the relational column; qdrant is only the
// queryable mirror.
func (s *Store) LoadSlides(ctx context.Context, presentationID string) ([]*Slide, error) {
	var slides []*Slide
	err := s.db.WithContext(ctx).Where("presentation_id = ?", presentationID).
		Order("page_number ASC").Find(&slides).Error
	return slides, err
}

func (s *Store) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&Presentation{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	if err := s.db.WithContext(ctx).Delete(&Slide{}, "presentation_id = ?", id).Error; err != nil {
		return err
	}
	return s.dropEmbeddings(ctx, id)
}

func (s *Store) mirrorEmbeddings(ctx context.Context, presentationID string, slides []*Slide) error {
	if s.qdrant == nil {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(slides))
	for _, slide := range slides {
		if len(slide.Embedding) == 0 {
			continue
		}
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(slide.ID),
			Vectors: qdrant.NewVectors(slide.Embedding...),
			Payload: qdrant.NewValueMap(map[string]any{
				"presentation_id": presentationID,
				"page_number":     int64(slide.PageNumber),
			}),
		})
	}
	if len(points) == 0 {
		return nil
	}

	_, err := s.qdrant.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: slidesCollection,
		Points:         points,
	})
	return err
}

func (s *Store) dropEmbeddings(ctx context.Context, presentationID string) error {
	if s.qdrant == nil {
		return nil
	}

	_, err := s.qdrant.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: slidesCollection,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("presentation_id", presentationID),
			},
		}),
	})
	return err
}

// SearchSimilarSlides queries the qdrant mirror for slides close to the
// given embedding within one presentation.
func (s *Store) SearchSimilarSlides(ctx context.Context, presentationID string, embedding []float32, limit int) ([]*Slide, error) {
	if s.qdrant == nil {
		return nil, errors.New("qdrant client not configured")
	}

	results, err := s.qdrant.Query(ctx, &qdrant.QueryPoints{
		CollectionName: slidesCollection,
		Query:          qdrant.NewQuery(embedding...),
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("presentation_id", presentationID),
			},
		},
		Limit:       qdrant.PtrOf(uint64(limit)),
		WithPayload: qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(results))
	for _, r := range results {
		if r.Id != nil {
			if uuid := r.Id.GetUuid(); uuid != "" {
				ids = append(ids, uuid)
			}
		}
	}
	if len(ids) == 0 {
		return []*Slide{}, nil
	}

	var slides []*Slide
	err = s.db.WithContext(ctx).Where("id IN ?", ids).
		Order("page_number ASC").Find(&slides).Error
	return slides, err
}
