package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"doccompare/internal/model"
	"doccompare/internal/report"
	"doccompare/internal/storage"
)

// ErrStorageDisabled is returned by Publish when no object store is configured.
var ErrStorageDisabled = errors.New("report storage is not configured")

// ReportService renders comparison reports and optionally publishes them.
type ReportService interface {
	// Render produces the report file for download.
	Render(ctx context.Context, req model.ReportRequest) (*report.Document, error)

	// Publish uploads the rendered report under reports/<uuid>.<ext> and returns a
	// presigned link. The object is removed again if the link cannot be signed.
	Publish(ctx context.Context, req model.ReportRequest) (*model.PublishedReport, error)
}

type reportService struct {
	store   storage.Storage
	linkTTL time.Duration
	loc     *time.Location
	now     func() time.Time
}

// NewReportService constructs a ReportService. store may be nil, in which case
// Publish fails with ErrStorageDisabled. The generation time printed in the report
// is rendered in loc (UTC when nil).
func NewReportService(store storage.Storage, linkTTL time.Duration, loc *time.Location) ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &reportService{store: store, linkTTL: linkTTL, loc: loc, now: time.Now}
}

func (s *reportService) Render(_ context.Context, req model.ReportRequest) (*report.Document, error) {
	return report.Render(req.Result, req.Format, report.Options{
		Doc1Name: req.Doc1Name,
		Doc2Name: req.Doc2Name,
		Now:      s.now().In(s.loc),
	})
}

func (s *reportService) Publish(ctx context.Context, req model.ReportRequest) (*model.PublishedReport, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}
	doc, err := s.Render(ctx, req)
	if err != nil {
		return nil, err
	}

	key := path.Join("reports", uuid.New().String()+"."+strings.ToLower(req.Format))
	size := int64(len(doc.Body))
	if _, err := s.store.Put(ctx, key, bytes.NewReader(doc.Body), storage.PutObjectOptions{
		Size:               size,
		ContentType:        doc.ContentType,
		ContentDisposition: mime.FormatMediaType("attachment", map[string]string{"filename": doc.Filename}),
		Metadata:           map[string]string{"original-filename": doc.Filename},
	}); err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	expiresAt := s.now().Add(s.linkTTL)
	url, err := s.store.PresignGet(ctx, key, s.linkTTL)
	if err != nil {
		// Rollback: an unreachable object is useless
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("presign failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("presign failed: %w", err)
	}

	return &model.PublishedReport{
		Key:       key,
		Filename:  doc.Filename,
		URL:       url,
		Size:      size,
		ExpiresAt: expiresAt.UTC(),
	}, nil
}
