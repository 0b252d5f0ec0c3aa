package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"github.com/navisol/werf/internal/model/entity"
	"github.com/navisol/werf/internal/repository"
)

// DocumentService manages the append-only, versioned project documents.
// Adding a new version never touches earlier ones; only finalizing a document
// supersedes the previous FINAL of the same type.
type DocumentService struct {
	docRepo     *repository.DocumentRepository
	projectRepo *repository.ProjectRepository
	eqRepo      *repository.EquipmentRepository
	seqRepo     *repository.SequenceRepository
	renderer    *QuotationRenderer
	export      *ExportService
	minioClient *minio.Client
	bucketName  string
}

// NewDocumentService creates the document service.
func NewDocumentService(
	docRepo *repository.DocumentRepository,
	projectRepo *repository.ProjectRepository,
	eqRepo *repository.EquipmentRepository,
	seqRepo *repository.SequenceRepository,
	renderer *QuotationRenderer,
	export *ExportService,
	minioClient *minio.Client,
	bucketName string,
) *DocumentService {
	return &DocumentService{
		docRepo:     docRepo,
		projectRepo: projectRepo,
		eqRepo:      eqRepo,
		seqRepo:     seqRepo,
		renderer:    renderer,
		export:      export,
		minioClient: minioClient,
		bucketName:  bucketName,
	}
}

// CreateQuotationRequest carries quotation-specific fields.
type CreateQuotationRequest struct {
	Title      string     `json:"title"`
	ValidUntil *time.Time `json:"valid_until"`
}

// List returns a project's documents, optionally filtered by type.
func (s *DocumentService) List(ctx context.Context, projectID, docType string) ([]entity.ProjectDocument, error) {
	return s.docRepo.ListByProject(ctx, projectID, docType)
}

// Get returns a document by id.
func (s *DocumentService) Get(ctx context.Context, id string) (*entity.ProjectDocument, error) {
	return s.docRepo.FindByID(ctx, id)
}

// Latest returns the highest-version document of a type.
func (s *DocumentService) Latest(ctx context.Context, projectID, docType string) (*entity.ProjectDocument, error) {
	return s.docRepo.LatestByType(ctx, projectID, docType)
}

// CreateQuotation snapshots the equipment totals into a new DRAFT quotation,
// renders the PDF and stores it. Version is count-of-type plus one; earlier
// quotations keep their status untouched.
func (s *DocumentService) CreateQuotation(ctx context.Context, projectID, userID string, req *CreateQuotationRequest) (*entity.ProjectDocument, error) {
	return s.createPriced(ctx, projectID, userID, entity.DocumentTypeQuotation, entity.SequenceQuotation, req)
}

// CreateInvoice snapshots the equipment totals into a new DRAFT invoice.
func (s *DocumentService) CreateInvoice(ctx context.Context, projectID, userID string, req *CreateQuotationRequest) (*entity.ProjectDocument, error) {
	return s.createPriced(ctx, projectID, userID, entity.DocumentTypeInvoice, entity.SequenceInvoice, req)
}

func (s *DocumentService) createPriced(ctx context.Context, projectID, userID, docType, seqType string, req *CreateQuotationRequest) (*entity.ProjectDocument, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("find project: %w", err)
	}
	eq, err := s.eqRepo.FindByProjectID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("find equipment: %w", err)
	}

	count, err := s.docRepo.CountByType(ctx, projectID, docType)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	number, err := s.seqRepo.Next(ctx, seqType)
	if err != nil {
		return nil, fmt.Errorf("allocate document number: %w", err)
	}

	title := req.Title
	if title == "" {
		title = fmt.Sprintf("%s %s", docType, number)
	}
	validUntil := req.ValidUntil
	if validUntil == nil && docType == entity.DocumentTypeQuotation {
		v := time.Now().AddDate(0, 0, 30)
		validUntil = &v
	}

	now := time.Now()
	doc := &entity.ProjectDocument{
		ID:               uuid.New().String()[:32],
		ProjectID:        projectID,
		Type:             docType,
		Version:          int(count) + 1,
		Status:           entity.DocumentStatusDraft,
		Title:            title,
		QuoteNumber:      number,
		ValidUntil:       validUntil,
		SubtotalExclVat:  eq.SubtotalExclVat,
		VatRate:          eq.VatRate,
		VatAmount:        eq.VatAmount,
		TotalInclVat:     eq.TotalInclVat,
		EquipmentVersion: eq.Version,
		CreatedBy:        userID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	html, err := s.renderer.RenderHTML(project, project.Client, eq.Items, doc)
	if err != nil {
		return nil, err
	}

	if s.minioClient != nil {
		pdf, err := s.renderer.RenderPDF(html)
		if err != nil {
			return nil, err
		}
		doc.FileName = s.renderer.FileName(doc)
		doc.FilePath = fmt.Sprintf("documents/%s/%s", projectID, doc.FileName)
		doc.FileSize = int64(len(pdf))
		doc.MimeType = "application/pdf"

		_, err = s.minioClient.PutObject(ctx, s.bucketName, doc.FilePath,
			bytes.NewReader(pdf), doc.FileSize, minio.PutObjectOptions{ContentType: doc.MimeType})
		if err != nil {
			return nil, fmt.Errorf("store pdf: %w", err)
		}
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}

	return doc, nil
}

// CreateBOM snapshots the equipment list into a new DRAFT bill of materials,
// exported as an Excel workbook.
func (s *DocumentService) CreateBOM(ctx context.Context, projectID, userID string) (*entity.ProjectDocument, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("find project: %w", err)
	}
	eq, err := s.eqRepo.FindByProjectID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("find equipment: %w", err)
	}

	count, err := s.docRepo.CountByType(ctx, projectID, entity.DocumentTypeBOM)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	now := time.Now()
	doc := &entity.ProjectDocument{
		ID:               uuid.New().String()[:32],
		ProjectID:        projectID,
		Type:             entity.DocumentTypeBOM,
		Version:          int(count) + 1,
		Status:           entity.DocumentStatusDraft,
		Title:            fmt.Sprintf("BOM %s v%d", project.ProjectNumber, int(count)+1),
		SubtotalExclVat:  eq.SubtotalExclVat,
		VatRate:          eq.VatRate,
		VatAmount:        eq.VatAmount,
		TotalInclVat:     eq.TotalInclVat,
		EquipmentVersion: eq.Version,
		CreatedBy:        userID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if s.minioClient != nil {
		f, err := s.export.BuildEquipmentWorkbook(project, eq)
		if err != nil {
			return nil, err
		}
		buf, err := f.WriteToBuffer()
		if err != nil {
			return nil, fmt.Errorf("write workbook: %w", err)
		}
		doc.FileName = fmt.Sprintf("%s-BOM-v%d.xlsx", project.ProjectNumber, doc.Version)
		doc.FilePath = fmt.Sprintf("documents/%s/%s", projectID, doc.FileName)
		doc.FileSize = int64(buf.Len())
		doc.MimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

		_, err = s.minioClient.PutObject(ctx, s.bucketName, doc.FilePath,
			bytes.NewReader(buf.Bytes()), doc.FileSize, minio.PutObjectOptions{ContentType: doc.MimeType})
		if err != nil {
			return nil, fmt.Errorf("store workbook: %w", err)
		}
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}

	return doc, nil
}

// Finalize moves a DRAFT document to FINAL and supersedes every other FINAL
// document of the same type on the project.
func (s *DocumentService) Finalize(ctx context.Context, id, userID string) (*entity.ProjectDocument, error) {
	doc, err := s.docRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.Status != entity.DocumentStatusDraft {
		return nil, fmt.Errorf("document is not in draft status")
	}

	now := time.Now()
	doc.Status = entity.DocumentStatusFinal
	doc.FinalizedBy = userID
	doc.FinalizedAt = &now
	doc.UpdatedAt = now

	if err := s.docRepo.Update(ctx, doc); err != nil {
		return nil, fmt.Errorf("finalize document: %w", err)
	}
	if err := s.docRepo.SupersedeFinals(ctx, doc.ProjectID, doc.Type, doc.ID); err != nil {
		return nil, fmt.Errorf("supersede documents: %w", err)
	}

	return doc, nil
}

// MarkSuperseded manually retires a FINAL document.
func (s *DocumentService) MarkSuperseded(ctx context.Context, id string) (*entity.ProjectDocument, error) {
	doc, err := s.docRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.Status != entity.DocumentStatusFinal {
		return nil, fmt.Errorf("only final documents can be superseded")
	}

	doc.Status = entity.DocumentStatusSuperseded
	doc.UpdatedAt = time.Now()

	if err := s.docRepo.Update(ctx, doc); err != nil {
		return nil, fmt.Errorf("supersede document: %w", err)
	}
	return doc, nil
}

// Download streams the stored file of a document.
func (s *DocumentService) Download(ctx context.Context, id string) (io.ReadCloser, *entity.ProjectDocument, error) {
	doc, err := s.docRepo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if s.minioClient == nil || doc.FilePath == "" {
		return nil, doc, fmt.Errorf("storage not configured")
	}

	object, err := s.minioClient.GetObject(ctx, s.bucketName, doc.FilePath, minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("get object: %w", err)
	}

	return object, doc, nil
}

// RenderPreview renders the on-screen HTML of a priced document.
func (s *DocumentService) RenderPreview(ctx context.Context, id string) (string, error) {
	doc, err := s.docRepo.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	project, err := s.projectRepo.FindByID(ctx, doc.ProjectID)
	if err != nil {
		return "", err
	}
	eq, err := s.eqRepo.FindByProjectID(ctx, doc.ProjectID)
	if err != nil {
		return "", err
	}
	return s.renderer.RenderHTML(project, project.Client, eq.Items, doc)
}
