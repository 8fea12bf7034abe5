package images

import (
	"fmt"
	"io"

	"restaurant-orders/internal/domain"
)

type SourceKind int

const (
	KindSVG SourceKind = iota + 1
	KindBase64
	KindUpload
)

func (k SourceKind) String() string {
	switch k {
	case KindSVG:
		return "svg"
	case KindBase64:
		return "base64"
	case KindUpload:
		return "upload"
	}
	return fmt.Sprintf("SourceKind(%d)", int(k))
}

// Upload is a pending binary upload. Open may be called once.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// Source is one image input. Exactly one arm is populated, matching Kind:
// Text for KindSVG and KindBase64, Upload for KindUpload.
type Source struct {
	Kind   SourceKind
	Text   string
	Upload *Upload
}

func SVG(text string) Source { return Source{Kind: KindSVG, Text: text} }

func Base64(text string) Source { return Source{Kind: KindBase64, Text: text} }

func FromUpload(u *Upload) Source { return Source{Kind: KindUpload, Upload: u} }

func (s Source) Validate() error {
	switch s.Kind {
	case KindSVG, KindBase64:
		if s.Text == "" || s.Upload != nil {
			return fmt.Errorf("%w: %s source needs text only", domain.ErrInvalidInput, s.Kind)
		}
	case KindUpload:
		if s.Upload == nil || s.Upload.Open == nil || s.Text != "" {
			return fmt.Errorf("%w: upload source needs a file only", domain.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unknown image source %s", domain.ErrInvalidInput, s.Kind)
	}
	return nil
}

// Collect flattens the three input lists into sources ordered vector,
// base64, uploads, each list keeping its own order.
func Collect(svgList, b64List []string, uploads []*Upload) []Source {
	sources := make([]Source, 0, len(svgList)+len(b64List)+len(uploads))
	for _, s := range svgList {
		sources = append(sources, SVG(s))
	}
	for _, s := range b64List {
		sources = append(sources, Base64(s))
	}
	for _, u := range uploads {
		sources = append(sources, FromUpload(u))
	}
	return sources
}
