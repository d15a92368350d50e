// Package ingest runs an uploaded file through reader, header resolution and
// normalization, or a price-list PDF through extraction and parsing.
package ingest

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"GtnPortal/internal/apperr"
	"GtnPortal/internal/checksum"
	"GtnPortal/internal/headers"
	"GtnPortal/internal/normalize"
	"GtnPortal/internal/pdftext"
	"GtnPortal/internal/pricelist"
	"GtnPortal/internal/tabular"
)

// Upload is one normalized spreadsheet upload.
type Upload struct {
	BatchID    uuid.UUID                  `json:"batchId"`
	FileName   string                     `json:"fileName"`
	FileHash   string                     `json:"fileHash"`
	Schema     string                     `json:"schema"`
	Format     tabular.Format             `json:"format"`
	Delimiter  string                     `json:"delimiter,omitempty"`
	Headers    []string                   `json:"headers"`
	Resolution headers.Resolution         `json:"resolution"`
	Rows       []normalize.CanonicalRow   `json:"rows"`
	Report     normalize.ValidationReport `json:"report"`
	ReceivedAt time.Time                  `json:"receivedAt"`
}

// PriceListUpload is one parsed price-ceiling document.
type PriceListUpload struct {
	BatchID    uuid.UUID                   `json:"batchId"`
	FileName   string                      `json:"fileName"`
	FileHash   string                      `json:"fileHash"`
	Rows       []pricelist.PriceCeilingRow `json:"rows"`
	Report     pricelist.Report            `json:"report"`
	TextLength int                         `json:"textLength"`
	ReceivedAt time.Time                   `json:"receivedAt"`
}

// Service holds the shared, read-only collaborators of the pipeline.
type Service struct {
	resolver *headers.Resolver
	parser   *pricelist.Parser
	now      func() time.Time
}

func NewService(resolver *headers.Resolver, parser *pricelist.Parser) *Service {
	if resolver == nil {
		resolver = headers.Default()
	}
	if parser == nil {
		parser = pricelist.NewParser(pricelist.Rules{})
	}
	return &Service{resolver: resolver, parser: parser, now: time.Now}
}

// Normalize reads a .csv/.xlsx/.xls upload and validates it against schema.
// Structural failures are returned as errors. A schema failure is not an
// error: the upload carries a report with Errors and no rows.
func (s *Service) Normalize(fileName string, data []byte, schema normalize.Schema) (*Upload, error) {
	tbl, err := tabular.ReadFile(fileName, data)
	if err != nil {
		return nil, err
	}
	res := s.resolver.Resolve(tbl.Headers, schema.Fields())
	out := normalize.Normalize(tbl, res, schema)
	return &Upload{
		BatchID:    uuid.New(),
		FileName:   filepath.Base(fileName),
		FileHash:   checksum.Sum(data),
		Schema:     schema.Name,
		Format:     tbl.Format,
		Delimiter:  tbl.Delimiter,
		Headers:    tbl.Headers,
		Resolution: res,
		Rows:       out.Rows,
		Report:     out.Report,
		ReceivedAt: s.now().UTC(),
	}, nil
}

// ParsePriceList extracts a price-ceiling document. A .txt file is taken as
// already extracted text.
func (s *Service) ParsePriceList(fileName string, data []byte) (*PriceListUpload, error) {
	var text string
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		t, err := pdftext.Extract(data)
		if err != nil {
			return nil, err
		}
		text = t
	case ".txt":
		text = string(data)
		if strings.TrimSpace(text) == "" {
			return nil, pdftext.ErrNoExtractableText
		}
	default:
		return nil, apperr.Newf(apperr.KindUnsupportedFormat, "unsupported price list format %q", filepath.Ext(fileName))
	}

	res := s.parser.Parse(text)
	return &PriceListUpload{
		BatchID:    uuid.New(),
		FileName:   filepath.Base(fileName),
		FileHash:   checksum.Sum(data),
		Rows:       res.Rows,
		Report:     res.Report,
		TextLength: len(text),
		ReceivedAt: s.now().UTC(),
	}, nil
}
