package publish

import (
	"context"
	"log/slog"

	"github.com/colereed/showrunner/internal/bundle"
)

// CMS is the draft-post surface of the WordPress client, narrowed for tests.
type CMS interface {
	CategoryID(ctx context.Context) (int, error)
	UploadImage(ctx context.Context, imageURL, title string) (int, error)
	CreateDraft(ctx context.Context, title, html string, categoryID, mediaID int) (*PostInfo, error)
}

// Service turns a finished episode bundle into a CMS draft post.
type Service struct {
	cms    CMS
	videos VideoFinder
	log    *slog.Logger
}

func NewService(cms CMS, videos VideoFinder, log *slog.Logger) *Service {
	return &Service{cms: cms, videos: videos, log: log}
}

// Run reads the selected title and article from bundleDir, resolves the
// episode video, substitutes its link, and creates a draft post with the
// category and video thumbnail attached. Category and thumbnail failures
// degrade to an uncategorized draft without a featured image.
func (s *Service) Run(ctx context.Context, bundleDir string) (*PostInfo, error) {
	title, err := bundle.ReadTitle(bundleDir)
	if err != nil {
		return nil, &PublishError{Op: "read bundle", Err: err}
	}
	article, err := bundle.ReadArticle(bundleDir)
	if err != nil {
		return nil, &PublishError{Op: "read bundle", Err: err}
	}

	videoURL := ""
	thumbnailURL := ""
	if s.videos != nil {
		video, err := s.videos.MostRecent(ctx, title)
		if err != nil {
			s.log.Warn("video lookup failed, publishing without link", "error", err)
		} else {
			videoURL = video.ShareURL
			thumbnailURL = video.ThumbnailURL
			s.log.Info("resolved episode video", "video", video.ShareURL)
		}
	}
	article = substituteVideoURL(article, videoURL)

	categoryID, err := s.cms.CategoryID(ctx)
	if err != nil {
		s.log.Warn("category lookup failed, draft will be uncategorized", "error", err)
		categoryID = 0
	}

	mediaID := 0
	if thumbnailURL != "" {
		mediaID, err = s.cms.UploadImage(ctx, thumbnailURL, title)
		if err != nil {
			s.log.Warn("thumbnail upload failed, draft will have no featured image", "error", err)
			mediaID = 0
		}
	}

	post, err := s.cms.CreateDraft(ctx, title, markdownToHTML(article), categoryID, mediaID)
	if err != nil {
		return nil, err
	}
	post.Title = title
	post.VideoURL = videoURL
	s.log.Info("created draft post", "post_id", post.ID, "edit_url", post.EditURL)
	return post, nil
}
