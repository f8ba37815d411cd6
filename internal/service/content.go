package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/contactdesk/admin-server/internal/database"
	apperrors "github.com/contactdesk/admin-server/internal/errors"
	"github.com/contactdesk/admin-server/internal/imaging"
	"github.com/contactdesk/admin-server/internal/metrics"
	"github.com/contactdesk/admin-server/internal/model"
	"github.com/contactdesk/admin-server/internal/repository"
)

// normalizeImage runs an upload through the imaging pipeline. A missing upload
// yields a nil image.
func normalizeImage(upload *imaging.Upload) (*model.Image, error) {
	start := time.Now()
	result, err := imaging.Process(upload)
	if result == nil && err == nil {
		return nil, nil
	}

	metrics.ImagesProcessed.WithLabelValues(metrics.Outcome(err)).Inc()
	if err != nil {
		return nil, err
	}
	metrics.ImageProcessingDuration.Observe(time.Since(start).Seconds())

	log.Debug().
		Str("mime", result.MIME).
		Int("width", result.Width).
		Int("height", result.Height).
		Int("bytes", len(result.Data)).
		Msg("image normalized")

	return &model.Image{Data: result.Data, MIME: result.MIME}, nil
}

func storageError(err error, resource string) error {
	if database.IsUniqueViolation(err) {
		return apperrors.Conflict("A " + resource + " with this slug already exists").WithCause(err)
	}
	return apperrors.Database(err)
}

func requireTitleAndSlug(title, slug string) error {
	if strings.TrimSpace(title) == "" {
		return apperrors.MissingRequired("title")
	}
	if strings.TrimSpace(slug) == "" {
		return apperrors.MissingRequired("slug")
	}
	return nil
}

// OfferInput is the admin form for creating or editing an offer.
type OfferInput struct {
	model.OfferFields
	Image *imaging.Upload
	// KeepExistingImage applies to updates without a new file.
	KeepExistingImage bool
}

type OfferService struct {
	offers repository.OfferRepository
	now    func() time.Time
}

func NewOfferService(offers repository.OfferRepository) *OfferService {
	return &OfferService{offers: offers, now: time.Now}
}

func (s *OfferService) List(ctx context.Context) ([]model.Offer, error) {
	offers, err := s.offers.List(ctx)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return offers, nil
}

func (s *OfferService) Create(ctx context.Context, in OfferInput) (*model.Offer, error) {
	if err := requireTitleAndSlug(in.Title, in.Slug); err != nil {
		return nil, err
	}

	img, err := normalizeImage(in.Image)
	if err != nil {
		return nil, err
	}

	offer, err := s.offers.Create(ctx, model.CreateOfferParams{
		OfferFields: in.OfferFields,
		Image:       img,
		CreatedAt:   s.now().UTC(),
	})
	if err != nil {
		return nil, storageError(err, "offer")
	}

	log.Info().Int64("offerId", offer.ID).Str("slug", offer.Slug).Msg("offer created")
	return offer, nil
}

func (s *OfferService) Update(ctx context.Context, id int64, in OfferInput) (*model.Offer, error) {
	if err := requireTitleAndSlug(in.Title, in.Slug); err != nil {
		return nil, err
	}

	img, err := normalizeImage(in.Image)
	if err != nil {
		return nil, err
	}

	update := model.ImageRemove
	switch {
	case img != nil:
		update = model.ImageReplace
	case in.KeepExistingImage:
		update = model.ImageKeep
	}

	offer, err := s.offers.Update(ctx, id, model.UpdateOfferParams{
		OfferFields: in.OfferFields,
		ImageUpdate: update,
		Image:       img,
	})
	if err != nil {
		return nil, storageError(err, "offer")
	}
	if offer == nil {
		return nil, apperrors.NotFound("Offer")
	}

	log.Info().Int64("offerId", id).Msg("offer updated")
	return offer, nil
}

func (s *OfferService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.offers.Delete(ctx, id)
	if err != nil {
		return apperrors.Database(err)
	}
	if deleted == 0 {
		return apperrors.NotFound("Offer")
	}
	log.Info().Int64("offerId", id).Msg("offer deleted")
	return nil
}

func (s *OfferService) Image(ctx context.Context, id int64) (*model.Image, error) {
	img, err := s.offers.FindImage(ctx, id)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if img == nil {
		return nil, apperrors.NotFound("Image")
	}
	return img, nil
}

// BlogPostInput is the admin form for creating or editing a post. An update
// without a new file keeps the current image.
type BlogPostInput struct {
	model.BlogPostFields
	Image *imaging.Upload
}

type BlogService struct {
	posts repository.BlogPostRepository
	now   func() time.Time
}

func NewBlogService(posts repository.BlogPostRepository) *BlogService {
	return &BlogService{posts: posts, now: time.Now}
}

func (s *BlogService) ListAll(ctx context.Context) ([]model.BlogPost, error) {
	posts, err := s.posts.ListAll(ctx)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return posts, nil
}

func (s *BlogService) ListPublished(ctx context.Context) ([]model.BlogPost, error) {
	posts, err := s.posts.ListPublished(ctx)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return posts, nil
}

func (s *BlogService) GetPublished(ctx context.Context, slug string) (*model.BlogPost, error) {
	post, err := s.posts.FindPublishedBySlug(ctx, slug)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if post == nil {
		return nil, apperrors.NotFound("Post")
	}
	return post, nil
}

func (s *BlogService) Create(ctx context.Context, in BlogPostInput) (*model.BlogPost, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}

	img, err := normalizeImage(in.Image)
	if err != nil {
		return nil, err
	}

	post, err := s.posts.Create(ctx, model.CreateBlogPostParams{
		BlogPostFields: in.BlogPostFields,
		Image:          img,
		CreatedAt:      s.now().UTC(),
	})
	if err != nil {
		return nil, storageError(err, "post")
	}

	log.Info().Int64("postId", post.ID).Str("slug", post.Slug).Msg("blog post created")
	return post, nil
}

func (s *BlogService) Update(ctx context.Context, id int64, in BlogPostInput) (*model.BlogPost, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}

	img, err := normalizeImage(in.Image)
	if err != nil {
		return nil, err
	}

	update := model.ImageKeep
	if img != nil {
		update = model.ImageReplace
	}

	post, err := s.posts.Update(ctx, id, model.UpdateBlogPostParams{
		BlogPostFields: in.BlogPostFields,
		ImageUpdate:    update,
		Image:          img,
		UpdatedAt:      s.now().UTC(),
	})
	if err != nil {
		return nil, storageError(err, "post")
	}
	if post == nil {
		return nil, apperrors.NotFound("Post")
	}

	log.Info().Int64("postId", id).Msg("blog post updated")
	return post, nil
}

func (s *BlogService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.posts.Delete(ctx, id)
	if err != nil {
		return apperrors.Database(err)
	}
	if deleted == 0 {
		return apperrors.NotFound("Post")
	}
	log.Info().Int64("postId", id).Msg("blog post deleted")
	return nil
}

func (s *BlogService) Image(ctx context.Context, id int64) (*model.Image, error) {
	img, err := s.posts.FindImage(ctx, id)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if img == nil {
		return nil, apperrors.NotFound("Image")
	}
	return img, nil
}

func (s *BlogService) validate(in BlogPostInput) error {
	if err := requireTitleAndSlug(in.Title, in.Slug); err != nil {
		return err
	}
	if strings.TrimSpace(in.Content) == "" {
		return apperrors.MissingRequired("content")
	}
	return nil
}
